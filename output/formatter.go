package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/vegasq/rql/query"
)

// Formatter defines the interface for output formatters.
//
// Format consumes rows until the stream ends, writing columns in the given
// order. A stream error stops formatting and is returned; rows already
// written stay written.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(columns []string, rows query.RowStream) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Formats lists the supported format names
var Formats = []string{"jsonl", "json", "csv", "table"}

// New returns the formatter for a format name
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case "json", "jsonl":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "table":
		return NewTableFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format '%s', supported formats: %v", format, Formats)
	}
}

// each calls fn for every row of the stream
func each(rows query.RowStream, fn func(query.Row) error) error {
	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
