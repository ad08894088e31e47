package query

import (
	"strings"
	"unicode/utf8"
)

// String Functions

func stringFunctions() []*FunctionDef {
	return []*FunctionDef{
		scalar("to_upper", TypeString, []Param{{"s", TypeString}}, toUpper),
		scalar("to_lower", TypeString, []Param{{"s", TypeString}}, toLower),
		scalar("trim", TypeString, []Param{{"s", TypeString}}, trim),
		scalar("length", TypeNumber, []Param{{"s", TypeString}}, length),
		scalar("starts_with", TypeBoolean, []Param{{"s", TypeString}, {"prefix", TypeString}}, startsWith),
		scalar("ends_with", TypeBoolean, []Param{{"s", TypeString}, {"suffix", TypeString}}, endsWith),
		scalar("substring", TypeString, []Param{{"s", TypeString}, {"start", TypeNumber}, {"length", TypeNumber}}, substring),
		scalar("replace", TypeString, []Param{{"s", TypeString}, {"old", TypeString}, {"new", TypeString}}, replace),
	}
}

// toUpper converts a string to uppercase
func toUpper(args ...interface{}) (interface{}, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(s), nil
}

// toLower converts a string to lowercase
func toLower(args ...interface{}) (interface{}, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	return strings.ToLower(s), nil
}

func trim(args ...interface{}) (interface{}, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(s), nil
}

// length counts characters, not bytes
func length(args ...interface{}) (interface{}, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	return float64(utf8.RuneCountInString(s)), nil
}

func startsWith(args ...interface{}) (interface{}, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	prefix, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	return strings.HasPrefix(s, prefix), nil
}

func endsWith(args ...interface{}) (interface{}, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	suffix, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	return strings.HasSuffix(s, suffix), nil
}

// substring extracts length characters starting at the 0-based start.
// Out of range bounds are clamped to the string.
func substring(args ...interface{}) (interface{}, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	start, err := argNumber(args, 1)
	if err != nil {
		return nil, err
	}
	n, err := argNumber(args, 2)
	if err != nil {
		return nil, err
	}

	runes := []rune(s)
	from := clampIndex(start, len(runes))
	to := clampIndex(start+n, len(runes))
	if to <= from {
		return "", nil
	}
	return string(runes[from:to]), nil
}

func clampIndex(f float64, n int) int {
	switch {
	case f != f || f <= 0: // NaN or negative
		return 0
	case f >= float64(n):
		return n
	default:
		return int(f)
	}
}

// replace replaces every occurrence of old with new
func replace(args ...interface{}) (interface{}, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	old, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	repl, err := argString(args, 2)
	if err != nil {
		return nil, err
	}
	return strings.ReplaceAll(s, old, repl), nil
}
