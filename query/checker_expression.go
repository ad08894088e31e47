package query

import (
	"strconv"
	"strings"
)

func constant(t DataType, v interface{}) CheckedExpr {
	return CheckedExpr{Type: t, Eval: func(Row) (interface{}, error) { return v, nil }}
}

// checkExpr resolves the type and evaluator of an expression
func (c *Checker) checkExpr(input TableDef, expr Expr) (CheckedExpr, error) {
	switch e := expr.(type) {
	case *ColumnExpr:
		col, ok := input.Lookup(e.Name)
		if !ok {
			return CheckedExpr{}, semanticError(e.Pos, "No such column as '%s' found", e.Name)
		}
		name := col.Name
		return CheckedExpr{Type: col.Type, Eval: func(row Row) (interface{}, error) {
			return row[name], nil
		}}, nil
	case *NullLit:
		return constant(TypeNull, nil), nil
	case *TrueLit:
		return constant(TypeBoolean, true), nil
	case *FalseLit:
		return constant(TypeBoolean, false), nil
	case *StringLit:
		return constant(TypeString, e.Value), nil
	case *NumberLit:
		f, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			return CheckedExpr{}, semanticError(e.Pos, "Invalid number '%s'", e.Value)
		}
		return constant(TypeNumber, f), nil
	case *DateLit:
		t, err := parseDateLiteral(e.Value)
		if err != nil {
			return CheckedExpr{}, semanticError(e.Pos, "Invalid date '%s'", e.Value)
		}
		return constant(TypeDate, t), nil
	case *UnaryExpr:
		return c.checkUnary(input, e)
	case *BinaryExpr:
		return c.checkBinary(input, e)
	case *FunctionCall:
		return c.checkCall(input, e)
	default:
		return CheckedExpr{}, semanticError(expr.Position(), "Unsupported expression %T", expr)
	}
}

// checkArgs checks call arguments against declared parameters
func (c *Checker) checkArgs(input TableDef, f *FunctionDef, params []Param, args []Expr) ([]Evaluator, error) {
	evals := make([]Evaluator, len(args))
	for i, arg := range args {
		checked, err := c.checkExpr(input, arg)
		if err != nil {
			return nil, err
		}
		param := params[i]
		if checked.Type != param.Type {
			return nil, semanticError(arg.Position(),
				"Function '%s' parameter '%s' has type %s, cannot pass argument of type %s",
				f.Name, param.Name, param.Type, checked.Type)
		}
		evals[i] = checked.Eval
	}
	return evals, nil
}

func (c *Checker) checkCall(input TableDef, call *FunctionCall) (CheckedExpr, error) {
	name := call.Name.Name
	f, ok := c.function(name)
	if !ok {
		return CheckedExpr{}, semanticError(call.Pos, "No such function as '%s' found", name)
	}
	if len(call.Args) != len(f.Params) {
		return CheckedExpr{}, semanticError(call.Pos,
			"Function '%s' takes %d arguments, %d were given", name, len(f.Params), len(call.Args))
	}
	args, err := c.checkArgs(input, f, f.Params, call.Args)
	if err != nil {
		return CheckedExpr{}, err
	}

	return CheckedExpr{Type: f.ReturnType, Eval: func(row Row) (interface{}, error) {
		values := make([]interface{}, len(args))
		for i, arg := range args {
			v, err := arg(row)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		result, err := f.call(values)
		if err != nil {
			return nil, functionFailure(call, err)
		}
		return result, nil
	}}, nil
}

func (c *Checker) checkUnary(input TableDef, e *UnaryExpr) (CheckedExpr, error) {
	operand, err := c.checkExpr(input, e.Operand)
	if err != nil {
		return CheckedExpr{}, err
	}

	switch e.Op {
	case UnaryNot:
		if operand.Type != TypeBoolean {
			return CheckedExpr{}, semanticError(e.Pos, "Cannot use unary ! on %s", operand.Type)
		}
		return CheckedExpr{Type: TypeBoolean, Eval: unarySafe(operand.Eval, func(v interface{}) interface{} {
			return !v.(bool)
		})}, nil
	case UnaryMinus:
		if operand.Type != TypeNumber {
			return CheckedExpr{}, semanticError(e.Pos, "Cannot use unary - on %s", operand.Type)
		}
		return CheckedExpr{Type: TypeNumber, Eval: unarySafe(operand.Eval, func(v interface{}) interface{} {
			return -v.(float64)
		})}, nil
	default:
		if operand.Type != TypeNumber {
			return CheckedExpr{}, semanticError(e.Pos, "Cannot use unary + on %s", operand.Type)
		}
		return CheckedExpr{Type: TypeNumber, Eval: unarySafe(operand.Eval, func(v interface{}) interface{} {
			return v
		})}, nil
	}
}

// unarySafe propagates a null operand to a null result
func unarySafe(operand Evaluator, then func(v interface{}) interface{}) Evaluator {
	return func(row Row) (interface{}, error) {
		v, err := operand(row)
		if err != nil || v == nil {
			return nil, err
		}
		return then(v), nil
	}
}

// binarySafe evaluates both operands, propagating a null on either side to
// a null result
func binarySafe(left, right Evaluator, then func(a, b interface{}) interface{}) Evaluator {
	return func(row Row) (interface{}, error) {
		a, err := left(row)
		if err != nil {
			return nil, err
		}
		b, err := right(row)
		if err != nil {
			return nil, err
		}
		if a == nil || b == nil {
			return nil, nil
		}
		return then(a, b), nil
	}
}

// binary evaluates both operands and hands them over as they are
func binary(left, right Evaluator, then func(a, b interface{}) interface{}) Evaluator {
	return func(row Row) (interface{}, error) {
		a, err := left(row)
		if err != nil {
			return nil, err
		}
		b, err := right(row)
		if err != nil {
			return nil, err
		}
		return then(a, b), nil
	}
}

// asText stringifies a string or number operand of a mixed "+"
func asText(v interface{}) string {
	if f, ok := v.(float64); ok {
		return formatNumber(f)
	}
	return v.(string)
}

func isComparable(t DataType) bool {
	switch t {
	case TypeNumber, TypeString, TypeDate, TypeBoolean:
		return true
	default:
		return false
	}
}

func isBooleanOrNull(t DataType) bool {
	return t == TypeBoolean || t == TypeNull
}

func (c *Checker) checkBinary(input TableDef, e *BinaryExpr) (CheckedExpr, error) {
	left, err := c.checkExpr(input, e.Left)
	if err != nil {
		return CheckedExpr{}, err
	}
	right, err := c.checkExpr(input, e.Right)
	if err != nil {
		return CheckedExpr{}, err
	}
	a, b := left.Type, right.Type

	switch e.Op {
	case OpPlus:
		switch {
		case a == TypeNumber && b == TypeNumber:
			return CheckedExpr{Type: TypeNumber, Eval: binarySafe(left.Eval, right.Eval, func(x, y interface{}) interface{} {
				return x.(float64) + y.(float64)
			})}, nil
		case (a == TypeNumber || a == TypeString) && (b == TypeNumber || b == TypeString):
			return CheckedExpr{Type: TypeString, Eval: binarySafe(left.Eval, right.Eval, func(x, y interface{}) interface{} {
				return asText(x) + asText(y)
			})}, nil
		}
		return CheckedExpr{}, semanticError(e.Pos, "Cannot add '%s' and '%s'", a, b)

	case OpMinus, OpMultiply, OpDivide:
		if a != TypeNumber || b != TypeNumber {
			switch e.Op {
			case OpMinus:
				return CheckedExpr{}, semanticError(e.Pos, "Cannot subtract '%s' from '%s'", b, a)
			case OpMultiply:
				return CheckedExpr{}, semanticError(e.Pos, "Cannot multiply '%s' and '%s'", a, b)
			default:
				return CheckedExpr{}, semanticError(e.Pos, "Cannot divide '%s' with '%s'", a, b)
			}
		}
		op := e.Op
		return CheckedExpr{Type: TypeNumber, Eval: binarySafe(left.Eval, right.Eval, func(x, y interface{}) interface{} {
			fx, fy := x.(float64), y.(float64)
			switch op {
			case OpMinus:
				return fx - fy
			case OpMultiply:
				return fx * fy
			default:
				return fx / fy
			}
		})}, nil

	case OpContains, OpNotContains:
		if a != TypeString || b != TypeString {
			return CheckedExpr{}, semanticError(e.Pos, "Cannot use %s with '%s' and '%s'", e.Op, a, b)
		}
		negate := e.Op == OpNotContains
		return CheckedExpr{Type: TypeBoolean, Eval: binarySafe(left.Eval, right.Eval, func(x, y interface{}) interface{} {
			return strings.Contains(x.(string), y.(string)) != negate
		})}, nil

	case OpEqual, OpNotEqual:
		if a != b && a != TypeNull && b != TypeNull {
			return CheckedExpr{}, semanticError(e.Pos, "Cannot compare '%s' with '%s'", a, b)
		}
		negate := e.Op == OpNotEqual
		return CheckedExpr{Type: TypeBoolean, Eval: binary(left.Eval, right.Eval, func(x, y interface{}) interface{} {
			return valuesEqual(x, y) != negate
		})}, nil

	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		if a != b || !isComparable(a) {
			return CheckedExpr{}, semanticError(e.Pos, "Cannot compare '%s' with '%s'", a, b)
		}
		op := e.Op
		cmp := c.comparator
		return CheckedExpr{Type: TypeBoolean, Eval: binarySafe(left.Eval, right.Eval, func(x, y interface{}) interface{} {
			r := cmp.compare(x, y)
			switch op {
			case OpLess:
				return r < 0
			case OpLessEqual:
				return r <= 0
			case OpGreater:
				return r > 0
			default:
				return r >= 0
			}
		})}, nil

	case OpAnd:
		if !isBooleanOrNull(a) || !isBooleanOrNull(b) {
			return CheckedExpr{}, semanticError(e.Pos, "And expects boolean operands, got '%s' and '%s'", a, b)
		}
		return CheckedExpr{Type: TypeBoolean, Eval: andEval(left.Eval, right.Eval)}, nil

	case OpOr:
		if !isBooleanOrNull(a) || !isBooleanOrNull(b) {
			return CheckedExpr{}, semanticError(e.Pos, "Or expects boolean operands, got '%s' and '%s'", a, b)
		}
		return CheckedExpr{Type: TypeBoolean, Eval: orEval(left.Eval, right.Eval)}, nil
	}

	return CheckedExpr{}, semanticError(e.Pos, "Unsupported operator %s", e.Op)
}

// andEval is false whenever either side is null
func andEval(left, right Evaluator) Evaluator {
	return func(row Row) (interface{}, error) {
		a, err := left(row)
		if err != nil {
			return nil, err
		}
		if a == false {
			return false, nil
		}
		b, err := right(row)
		if err != nil {
			return nil, err
		}
		if a == nil || b == nil {
			return false, nil
		}
		return b.(bool), nil
	}
}

// orEval treats a null side as absent: null or x is x, null or null is false
func orEval(left, right Evaluator) Evaluator {
	return func(row Row) (interface{}, error) {
		a, err := left(row)
		if err != nil {
			return nil, err
		}
		if a == true {
			return true, nil
		}
		b, err := right(row)
		if err != nil {
			return nil, err
		}
		switch {
		case a == nil && b == nil:
			return false, nil
		case a == nil:
			return b.(bool), nil
		default:
			// a is false
			return b == true, nil
		}
	}
}
