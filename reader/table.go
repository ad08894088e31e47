package reader

import (
	"path/filepath"
	"strings"

	"github.com/vegasq/rql/query"
)

// Table is a host table the CLI can register with a query environment
type Table interface {
	Schema() query.TableDef
	Rows() query.RowStream
	Close() error
}

// Open opens a table by file extension: .jsonl, .ndjson and .json files are
// read as JSON lines, anything else as parquet.
func Open(path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return OpenJSONLines(path)
	default:
		return OpenParquet(path)
	}
}

// Source returns a fresh table source for one query run. A non-nil
// prefilter is applied to the rows.
func Source(t Table, prefilter *Prefilter) query.TableSource {
	rows := t.Rows()
	if prefilter != nil {
		rows = prefilter.Apply(rows)
	}
	return query.TableSource{Schema: t.Schema(), Rows: rows}
}
