package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Type Conversion Functions

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

func conversionFunctions() []*FunctionDef {
	return []*FunctionDef{
		scalar("parse_int", TypeNumber, []Param{{"s", TypeString}}, parseInt),
		scalar("parse_float", TypeNumber, []Param{{"s", TypeString}}, parseFloat),
		scalar("to_string", TypeString, []Param{{"x", TypeNumber}}, toString),
		scalar("new_guid", TypeString, nil, newGUID),
	}
}

// parseInt reads the leading integer of a string; null when there is none
func parseInt(args ...interface{}) (interface{}, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	m := leadingInt.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil, nil
	}
	return f, nil
}

// parseFloat reads the leading decimal number of a string; null when there
// is none
func parseFloat(args ...interface{}) (interface{}, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil, nil
	}
	return f, nil
}

func toString(args ...interface{}) (interface{}, error) {
	x, err := argNumber(args, 0)
	if err != nil {
		return nil, err
	}
	return formatNumber(x), nil
}

// newGUID returns a random (version 4) UUID
func newGUID(args ...interface{}) (interface{}, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return id.String(), nil
}
