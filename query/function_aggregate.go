package query

import "fmt"

// Aggregate Functions
//
// Each takes the accumulator as its first parameter. Null inputs leave the
// accumulator unchanged.

func aggregateFunctions() []*FunctionDef {
	return []*FunctionDef{
		{
			Name:       "count",
			Params:     []Param{{"acc", TypeNumber}},
			ReturnType: TypeNumber,
			Impl:       countAgg,
			Aggregate:  &AggregateDef{InitialValue: 0.0},
		},
		{
			Name:       "sum",
			Params:     []Param{{"acc", TypeNumber}, {"x", TypeNumber}},
			ReturnType: TypeNumber,
			Impl:       sumAgg,
			Aggregate:  &AggregateDef{InitialValue: 0.0},
		},
		{
			Name:       "min",
			Params:     []Param{{"acc", TypeNumber}, {"x", TypeNumber}},
			ReturnType: TypeNumber,
			Impl:       extremeAgg(func(x, acc float64) bool { return x < acc }),
			Aggregate:  &AggregateDef{InitialValue: nil},
		},
		{
			Name:       "max",
			Params:     []Param{{"acc", TypeNumber}, {"x", TypeNumber}},
			ReturnType: TypeNumber,
			Impl:       extremeAgg(func(x, acc float64) bool { return x > acc }),
			Aggregate:  &AggregateDef{InitialValue: nil},
		},
		{
			Name:       "avg",
			Params:     []Param{{"acc", TypeNumber}, {"x", TypeNumber}},
			ReturnType: TypeNumber,
			Impl:       sumAgg,
			Aggregate:  &AggregateDef{InitialValue: 0.0, FinalPass: average},
		},
	}
}

func countAgg(args ...interface{}) (interface{}, error) {
	acc, err := argNumber(args, 0)
	if err != nil {
		return nil, err
	}
	return acc + 1, nil
}

func sumAgg(args ...interface{}) (interface{}, error) {
	if args[1] == nil {
		return args[0], nil
	}
	acc, err := argNumber(args, 0)
	if err != nil {
		return nil, err
	}
	x, err := argNumber(args, 1)
	if err != nil {
		return nil, err
	}
	return acc + x, nil
}

// extremeAgg keeps x when better(x, acc); a null accumulator takes any x
func extremeAgg(better func(x, acc float64) bool) func(args ...interface{}) (interface{}, error) {
	return func(args ...interface{}) (interface{}, error) {
		if args[1] == nil {
			return args[0], nil
		}
		x, err := argNumber(args, 1)
		if err != nil {
			return nil, err
		}
		if args[0] == nil {
			return x, nil
		}
		acc, err := argNumber(args, 0)
		if err != nil {
			return nil, err
		}
		if better(x, acc) {
			return x, nil
		}
		return acc, nil
	}
}

// average divides the sum by the row count; null over no rows
func average(acc interface{}, n int) (interface{}, error) {
	if n == 0 {
		return nil, nil
	}
	sum, ok := acc.(float64)
	if !ok {
		return nil, fmt.Errorf("avg: accumulator is %s, not number", TypeOf(acc))
	}
	return sum / float64(n), nil
}
