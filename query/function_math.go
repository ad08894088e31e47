package query

import "math"

// Math Functions

func mathFunctions() []*FunctionDef {
	return []*FunctionDef{
		scalar("abs", TypeNumber, []Param{{"x", TypeNumber}}, mathFunc(math.Abs)),
		scalar("floor", TypeNumber, []Param{{"x", TypeNumber}}, mathFunc(math.Floor)),
		scalar("ceil", TypeNumber, []Param{{"x", TypeNumber}}, mathFunc(math.Ceil)),
		scalar("round", TypeNumber, []Param{{"x", TypeNumber}}, mathFunc(roundHalfUp)),
		scalar("sqrt", TypeNumber, []Param{{"x", TypeNumber}}, mathFunc(math.Sqrt)),
		scalar("pow", TypeNumber, []Param{{"base", TypeNumber}, {"exponent", TypeNumber}}, pow),
	}
}

// mathFunc lifts a float64 function into a one-argument builtin
func mathFunc(fn func(float64) float64) func(args ...interface{}) (interface{}, error) {
	return func(args ...interface{}) (interface{}, error) {
		x, err := argNumber(args, 0)
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

// roundHalfUp rounds halves towards positive infinity, so round(-2.5) is -2
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func pow(args ...interface{}) (interface{}, error) {
	base, err := argNumber(args, 0)
	if err != nil {
		return nil, err
	}
	exp, err := argNumber(args, 1)
	if err != nil {
		return nil, err
	}
	return math.Pow(base, exp), nil
}
