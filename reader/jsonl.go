package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/segmentio/encoding/json"

	"github.com/vegasq/rql/query"
)

// JSONLinesTable is a table backed by a file of JSON objects, one per line.
//
// The schema is inferred when the file is opened: columns are sorted by
// name and typed by their first non-null value. A column whose values
// disagree on type is rejected, and a column that only ever holds null has
// type null.
type JSONLinesTable struct {
	path   string
	schema query.TableDef
}

// OpenJSONLines opens a JSON lines file and infers its schema
func OpenJSONLines(path string) (*JSONLinesTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	types := make(map[string]query.DataType)
	dec := json.NewDecoder(bufio.NewReader(file))
	for record := 1; ; record++ {
		row, err := decodeRecord(dec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", path, record, err)
		}

		for name, v := range row {
			t := query.TypeOf(v)
			seen, ok := types[name]
			switch {
			case !ok || seen == query.TypeNull:
				types[name] = t
			case t != query.TypeNull && t != seen:
				return nil, fmt.Errorf("%s: record %d: column %q holds %s, earlier records hold %s", path, record, name, t, seen)
			}
		}
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([]query.Column, len(names))
	for i, name := range names {
		columns[i] = query.Column{Name: name, Type: types[name]}
	}

	return &JSONLinesTable{path: path, schema: query.NewTableDef(columns...)}, nil
}

// Schema returns the inferred schema
func (t *JSONLinesTable) Schema() query.TableDef {
	return t.schema
}

// Rows reopens the file and streams its records. The file is opened on the
// first call to Next and closed once the stream ends.
func (t *JSONLinesTable) Rows() query.RowStream {
	var (
		file *os.File
		dec  *json.Decoder
		done bool
	)
	return query.RowStreamFunc(func() (query.Row, error) {
		if done {
			return nil, io.EOF
		}
		if file == nil {
			var err error
			file, err = os.Open(t.path)
			if err != nil {
				done = true
				return nil, fmt.Errorf("failed to open file: %w", err)
			}
			dec = json.NewDecoder(bufio.NewReader(file))
		}

		row, err := decodeRecord(dec)
		if err != nil {
			done = true
			_ = file.Close()
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%s: %w", t.path, err)
		}
		return row, nil
	})
}

// Close is a no-op; files are only held open while a stream is read
func (t *JSONLinesTable) Close() error {
	return nil
}

func decodeRecord(dec *json.Decoder) (query.Row, error) {
	var record map[string]interface{}
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.New("record is not a JSON object")
	}
	return query.NormalizeRow(record), nil
}
