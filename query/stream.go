package query

import "io"

// RowStream is a lazy, single-pass sequence of rows. Next returns io.EOF
// once the stream is exhausted; any other error terminates the stream and is
// returned again by later calls.
type RowStream interface {
	Next() (Row, error)
}

// RowStreamFunc adapts a function to RowStream
type RowStreamFunc func() (Row, error)

// Next calls f
func (f RowStreamFunc) Next() (Row, error) {
	return f()
}

type sliceStream struct {
	rows []Row
	pos  int
}

// NewSliceStream streams the given rows in order
func NewSliceStream(rows []Row) RowStream {
	return &sliceStream{rows: rows}
}

func (s *sliceStream) Next() (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

// errorStream yields err forever
type errorStream struct {
	err error
}

func (s errorStream) Next() (Row, error) {
	return nil, s.err
}

// stickyStream remembers the first error of the wrapped stream
type stickyStream struct {
	next func() (Row, error)
	err  error
}

func (s *stickyStream) Next() (Row, error) {
	if s.err != nil {
		return nil, s.err
	}
	row, err := s.next()
	if err != nil {
		s.err = err
		return nil, err
	}
	return row, nil
}

// Collect drains a stream into a slice. On error the rows read so far are
// returned with it.
func Collect(stream RowStream) ([]Row, error) {
	var rows []Row
	for {
		row, err := stream.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// Limit stops a stream after n rows. A negative n means no limit.
func Limit(stream RowStream, n int) RowStream {
	if n < 0 {
		return stream
	}
	seen := 0
	return RowStreamFunc(func() (Row, error) {
		if seen >= n {
			return nil, io.EOF
		}
		row, err := stream.Next()
		if err != nil {
			return nil, err
		}
		seen++
		return row, nil
	})
}
