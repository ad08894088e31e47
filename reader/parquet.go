package reader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"github.com/segmentio/encoding/json"

	"github.com/vegasq/rql/query"
)

const (
	// FileColumn names the column that tags rows with their source file when
	// a table is read from a glob pattern
	FileColumn = "_file"

	// maxFiles bounds how many files a glob pattern may expand to
	maxFiles = 1000

	// batchSize is the number of rows read from a file at a time
	batchSize = 128

	secondsPerDay = 24 * 60 * 60
)

// parquetFile holds both an OS file handle and a parquet file handle to
// enable proper resource cleanup.
type parquetFile struct {
	path   string
	file   *os.File
	pqFile *parquet.File
	leaves []leafColumn
}

func openParquetFile(path string) (*parquetFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	leaves, err := leafColumns(pqFile.Schema())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read schema of %s: %w", path, err)
	}

	return &parquetFile{
		path:   path,
		file:   file,
		pqFile: pqFile,
		leaves: leaves,
	}, nil
}

func (f *parquetFile) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// ParquetTable is a table backed by one parquet file or by every file
// matching a glob pattern. Each call to Rows reads the files again.
type ParquetTable struct {
	files    []*parquetFile
	schema   query.TableDef
	tagFiles bool
}

// OpenParquet opens a parquet file, or all files matching a glob pattern.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// Files matched by a pattern must share one schema; their rows are tagged
// with a "_file" column holding the source file path. A plain path adds no
// column.
func OpenParquet(pattern string) (*ParquetTable, error) {
	if !strings.ContainsAny(pattern, "*?[]") {
		f, err := openParquetFile(pattern)
		if err != nil {
			return nil, err
		}
		return &ParquetTable{
			files:  []*parquetFile{f},
			schema: tableDef(f.leaves),
		}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}

	t := &ParquetTable{tagFiles: true}
	for _, path := range matches {
		f, err := openParquetFile(path)
		if err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		t.files = append(t.files, f)

		schema := tableDef(f.leaves)
		if len(t.files) == 1 {
			t.schema = schema
			continue
		}
		if !slices.Equal(schema.Columns, t.schema.Columns) {
			_ = t.Close()
			return nil, fmt.Errorf("schema of %s differs from %s", path, t.files[0].path)
		}
	}

	if _, exists := t.schema.Lookup(FileColumn); exists {
		_ = t.Close()
		return nil, fmt.Errorf("column %s already exists in %s", FileColumn, pattern)
	}
	t.schema = query.NewTableDef(append(slices.Clone(t.schema.Columns),
		query.Column{Name: FileColumn, Type: query.TypeString})...)
	return t, nil
}

// Schema returns the RQL schema of the table
func (t *ParquetTable) Schema() query.TableDef {
	return t.schema
}

// SchemaInfo describes the parquet columns of the table. The _file column
// of a globbed table is not a parquet column and is not listed.
func (t *ParquetTable) SchemaInfo() ([]SchemaInfo, error) {
	if len(t.files) == 0 {
		return nil, errors.New("table has no files")
	}
	return schemaInfos(t.files[0].leaves), nil
}

// Rows streams the rows of every file in order. Nothing is read until the
// first call to Next.
func (t *ParquetTable) Rows() query.RowStream {
	i := 0
	var current *fileStream
	return query.RowStreamFunc(func() (query.Row, error) {
		for {
			if current == nil {
				if i >= len(t.files) {
					return nil, io.EOF
				}
				current = &fileStream{file: t.files[i], tag: t.tagFiles}
				i++
			}
			row, err := current.Next()
			if errors.Is(err, io.EOF) {
				current = nil
				continue
			}
			return row, err
		}
	})
}

// Close closes every underlying file. It is safe to call Close multiple
// times.
func (t *ParquetTable) Close() error {
	var errs []error
	for _, f := range t.files {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fileStream reads one parquet file in batches
type fileStream struct {
	file   *parquetFile
	tag    bool
	reader *parquet.Reader
	buf    []parquet.Row
	n, pos int
	done   bool
}

func (s *fileStream) Next() (query.Row, error) {
	for s.pos >= s.n {
		if s.done {
			return nil, io.EOF
		}
		if s.reader == nil {
			s.reader = parquet.NewReader(s.file.pqFile)
			s.buf = make([]parquet.Row, batchSize)
		}

		n, err := s.reader.ReadRows(s.buf)
		s.n, s.pos = n, 0
		if err != nil {
			if !errors.Is(err, io.EOF) {
				_ = s.reader.Close()
				return nil, fmt.Errorf("failed to read row from %s: %w", s.file.path, err)
			}
			s.done = true
			_ = s.reader.Close()
		}
	}

	row := s.file.convertRow(s.buf[s.pos])
	s.pos++
	if s.tag {
		row[FileColumn] = s.file.path
	}
	return row, nil
}

// convertRow turns a parquet row into an RQL row. Values of repeated
// columns are collected into a list.
func (f *parquetFile) convertRow(values parquet.Row) query.Row {
	row := make(query.Row, len(f.leaves))
	lists := make(map[int][]interface{})

	for _, v := range values {
		col := v.Column()
		if col < 0 || col >= len(f.leaves) {
			continue
		}
		leaf := f.leaves[col]
		if !leaf.repeated {
			row[leaf.name] = convertValue(leaf.node, v)
			continue
		}
		if _, seen := lists[col]; !seen {
			lists[col] = []interface{}{}
		}
		if !v.IsNull() {
			lists[col] = append(lists[col], convertValue(leaf.node, v))
		}
	}

	for col, list := range lists {
		row[f.leaves[col].name] = query.NormalizeValue(list)
	}
	return row
}

// convertValue converts one parquet value per its column's logical type
func convertValue(node parquet.Node, v parquet.Value) interface{} {
	if v.IsNull() {
		return nil
	}

	var lt *format.LogicalType
	if t := node.Type(); t != nil {
		lt = t.LogicalType()
	}

	if lt != nil {
		switch {
		case lt.Date != nil:
			return time.Unix(int64(v.Int32())*secondsPerDay, 0).UTC()
		case lt.Timestamp != nil:
			return timestamp(v.Int64(), lt.Timestamp.Unit).Format(time.RFC3339Nano)
		case lt.Time != nil:
			return timeOfDay(v, lt.Time.Unit)
		case lt.UUID != nil:
			if id, err := uuid.FromBytes(v.ByteArray()); err == nil {
				return id.String()
			}
		case lt.Json != nil:
			return decodeJSON(v.ByteArray())
		case lt.Decimal != nil:
			switch v.Kind() {
			case parquet.Int32:
				return float64(v.Int32()) / math.Pow10(decimalScale(lt))
			case parquet.Int64:
				return float64(v.Int64()) / math.Pow10(decimalScale(lt))
			}
		}
	}

	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return float64(v.Int32())
	case parquet.Int64:
		return float64(v.Int64())
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

func timestamp(n int64, unit format.TimeUnit) time.Time {
	switch {
	case unit.Millis != nil:
		return time.UnixMilli(n).UTC()
	case unit.Micros != nil:
		return time.UnixMicro(n).UTC()
	default:
		return time.Unix(0, n).UTC()
	}
}

func timeOfDay(v parquet.Value, unit format.TimeUnit) string {
	var d time.Duration
	switch {
	case unit.Millis != nil:
		d = time.Duration(v.Int32()) * time.Millisecond
	case unit.Micros != nil:
		d = time.Duration(v.Int64()) * time.Microsecond
	default:
		d = time.Duration(v.Int64())
	}
	return time.Time{}.Add(d).Format("15:04:05.999999999")
}

// decodeJSON parses a JSON column value into an object. Values that are not
// objects are wrapped as {"value": v}; invalid JSON is kept as text.
func decodeJSON(b []byte) interface{} {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return map[string]interface{}{"value": string(b)}
	}
	v = query.NormalizeValue(v)
	if obj, ok := v.(map[string]interface{}); ok {
		return obj
	}
	return map[string]interface{}{"value": v}
}
