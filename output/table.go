package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/rql/query"
)

// TableFormatter renders rows as an aligned text table followed by a row
// count. Rows are buffered until the stream ends.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new text table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes the table. Nothing is written when the stream fails.
func (t *TableFormatter) Format(columns []string, rows query.RowStream) error {
	var records [][]string
	err := each(rows, func(row query.Row) error {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = query.FormatValue(row[col])
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(records)
	table.Render()

	_, err = fmt.Fprintf(t.writer, "(%d rows)\n", len(records))
	return err
}
