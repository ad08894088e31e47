package query

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// dateLayout is the layout of date literals
const dateLayout = "2006-01-02"

// TypeOf returns the DataType of a normalized value
func TypeOf(v interface{}) DataType {
	switch v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case float64:
		return TypeNumber
	case string:
		return TypeString
	case time.Time:
		return TypeDate
	default:
		return TypeObject
	}
}

// NormalizeValue converts a host value into one of the value shapes the
// engine works with: nil, bool, float64, string, time.Time or
// map[string]interface{}.
func NormalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil, bool, float64, string, time.Time:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case []byte:
		return string(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	case Row:
		return normalizeMap(val)
	case map[string]interface{}:
		return normalizeMap(val)
	case []interface{}:
		obj := make(map[string]interface{}, len(val))
		for i, item := range val {
			obj[strconv.Itoa(i)] = NormalizeValue(item)
		}
		return obj
	default:
		return fmt.Sprint(val)
	}
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	obj := make(map[string]interface{}, len(m))
	for k, item := range m {
		obj[k] = NormalizeValue(item)
	}
	return obj
}

// NormalizeRow normalizes every value of a host row
func NormalizeRow(row map[string]interface{}) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = NormalizeValue(v)
	}
	return out
}

// formatNumber renders a number the way it is stringified by "+"
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatValue renders a value as display text
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatNumber(val)
	case string:
		return val
	case time.Time:
		return val.Format(dateLayout)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// valuesEqual is structural equality without coercion
func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// valueComparator orders values. Strings collate when collator is set and
// compare bytewise otherwise.
type valueComparator struct {
	collator *collate.Collator
}

// newValueComparator orders strings by locale, for order by
func newValueComparator() *valueComparator {
	return &valueComparator{collator: collate.New(language.Und)}
}

// newOperatorComparator orders strings bytewise, for <, <=, > and >=, so
// that strings both <= and >= each other are equal
func newOperatorComparator() *valueComparator {
	return &valueComparator{}
}

// compare compares two values and returns:
// -1 if a < b
//
//	0 if a == b
//
// +1 if a > b
//
// null sorts before everything else; values of different types are ordered
// by type.
func (c *valueComparator) compare(a, b interface{}) int {
	ta, tb := TypeOf(a), TypeOf(b)
	if ta != tb {
		return cmp.Compare(ta, tb)
	}

	switch av := a.(type) {
	case nil:
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1 // false < true
		default:
			return 1
		}
	case float64:
		return cmp.Compare(av, b.(float64))
	case string:
		if c.collator == nil {
			return strings.Compare(av, b.(string))
		}
		return c.collator.CompareString(av, b.(string))
	case time.Time:
		return av.Compare(b.(time.Time))
	default:
		// No structural order exists for objects, their JSON text is used
		return strings.Compare(FormatValue(a), FormatValue(b))
	}
}

// groupKeyPart stringifies a value for group-by keys, keeping values of
// different types apart
func groupKeyPart(v interface{}) string {
	switch val := v.(type) {
	case time.Time:
		return "date:" + val.UTC().Format(time.RFC3339Nano)
	case float64:
		if val == 0 {
			val = 0 // -0 groups with 0
		}
		return fmt.Sprintf("%#v", val)
	}
	return fmt.Sprintf("%#v", v)
}

// parseDateLiteral converts a validated YYYY-MM-DD literal to a UTC date
func parseDateLiteral(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
