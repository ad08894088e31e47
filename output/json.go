package output

import (
	"bufio"
	"io"
	"math"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/vegasq/rql/query"
)

// JSONFormatter outputs rows as JSON Lines format. Keys follow the column
// order, dates are written as "YYYY-MM-DD" strings and non-finite numbers as
// their text form.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as JSON Lines (one JSON object per line)
func (j *JSONFormatter) Format(columns []string, rows query.RowStream) error {
	w := bufio.NewWriter(j.writer)
	err := each(rows, func(row query.Row) error {
		line, err := encodeRow(columns, row)
		if err != nil {
			return err
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
		return w.Flush()
	})
	if err != nil {
		return err
	}
	return w.Flush()
}

func encodeRow(columns []string, row query.Row) ([]byte, error) {
	buf := []byte{'{'}
	for i, col := range columns {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(jsonValue(row[col]))
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, value...)
	}
	return append(buf, '}', '\n'), nil
}

// jsonValue maps engine values onto JSON encodable ones
func jsonValue(v interface{}) interface{} {
	switch val := v.(type) {
	case time.Time:
		return query.FormatValue(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return query.FormatValue(val)
		}
		return val
	case map[string]interface{}:
		obj := make(map[string]interface{}, len(val))
		for k, item := range val {
			obj[k] = jsonValue(item)
		}
		return obj
	default:
		return val
	}
}
