package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Schemas(t *testing.T) {
	tests := []struct {
		query string
		want  []Column
	}{
		{
			query: "T",
			want:  typesSchema().Columns,
		},
		{
			query: "T | project b, a",
			want:  []Column{{"b", TypeString}, {"a", TypeNumber}},
		},
		{
			query: "T | where a > 1",
			want:  typesSchema().Columns,
		},
		{
			query: "T | project a | extend x = a + 'k'",
			want:  []Column{{"a", TypeNumber}, {"x", TypeString}},
		},
		{
			query: "T | project a, flag | extend x = a == null",
			want:  []Column{{"a", TypeNumber}, {"flag", TypeBoolean}, {"x", TypeBoolean}},
		},
		{
			query: "T | project d | extend y = year(d)",
			want:  []Column{{"d", TypeDate}, {"y", TypeNumber}},
		},
		{
			query: "T | project a | extend n = null",
			want:  []Column{{"a", TypeNumber}, {"n", TypeNull}},
		},
		{
			query: "T | summarize n = count(), s = sum(a) by flag, b",
			want:  []Column{{"n", TypeNumber}, {"s", TypeNumber}, {"b", TypeString}, {"flag", TypeBoolean}},
		},
		{
			query: "T | summarize n = count() by b, b",
			want:  []Column{{"n", TypeNumber}, {"b", TypeString}},
		},
		{
			query: "T | order by b, a desc | project a",
			want:  []Column{{"a", TypeNumber}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			result, err := Compile(tt.query, typesEnv())
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Schema().Columns)
		})
	}
}

func TestCheck_Errors(t *testing.T) {
	tests := []struct {
		query   string
		message string
		col     int
	}{
		{"Nope", "No such table as 'Nope' found", 1},
		{"T | project a, x, y", "Columns 'x', 'y' not found from the source table", 5},
		{"T | project x", "Column 'x' not found from the source table", 5},
		{"T | project a, a", "Column 'a' is projected more than once", 16},
		{"T | extend a = 1", "Column 'a' already exists", 12},
		{"T | where zz > 1", "No such column as 'zz' found", 11},
		{"T | where a", "Where clause expression must be boolean, got 'number'", 11},
		{"T | where null", "Where clause expression must be boolean, got 'null'", 11},
		{"T | where a + 1 > 'x'", "Cannot compare 'number' with 'string'", 17},
		{"T | where a == b", "Cannot compare 'number' with 'string'", 13},
		{"T | where obj < obj", "Cannot compare 'object' with 'object'", 15},
		{"T | where null < a", "Cannot compare 'null' with 'number'", 16},
		{"T | extend x = a - b", "Cannot subtract 'string' from 'number'", 18},
		{"T | extend x = flag + 1", "Cannot add 'boolean' and 'number'", 21},
		{"T | extend x = a * b", "Cannot multiply 'number' and 'string'", 18},
		{"T | extend x = b / a", "Cannot divide 'string' with 'number'", 18},
		{"T | where a contains 'x'", "Cannot use contains with 'number' and 'string'", 13},
		{"T | where b !contains a", "Cannot use !contains with 'string' and 'number'", 13},
		{"T | where flag and a", "And expects boolean operands, got 'boolean' and 'number'", 16},
		{"T | where b or flag", "Or expects boolean operands, got 'string' and 'boolean'", 13},
		{"T | where !a", "Cannot use unary ! on number", 11},
		{"T | extend x = -b", "Cannot use unary - on string", 16},
		{"T | extend x = +flag", "Cannot use unary + on boolean", 16},
		{"T | extend x = nosuch(a)", "No such function as 'nosuch' found", 16},
		{"T | extend x = to_upper(a)", "Function 'to_upper' parameter 's' has type string, cannot pass argument of type number", 25},
		{"T | extend x = to_upper()", "Function 'to_upper' takes 1 arguments, 0 were given", 16},
		{"T | extend x = sum(a)", "Function 'sum' takes 2 arguments, 1 were given", 16},
		{"T | summarize x = to_upper(b)", "Function 'to_upper' cannot be used as aggregation function, as it does not have initial value defined", 19},
		{"T | summarize x = nosuch(a)", "No such function as 'nosuch' found", 19},
		{"T | summarize x = sum()", "Aggregation function 'sum' takes 1 arguments, 0 were given", 19},
		{"T | summarize x = sum(b)", "Function 'sum' parameter 'x' has type number, cannot pass argument of type string", 23},
		{"T | summarize x = count() by zz", "No such column as 'zz' found", 5},
		{"T | summarize x = count(), x = sum(a)", "Duplicate output column 'x' in summarize", 28},
		{"T | summarize a = count() by a", "Duplicate output column 'a' in summarize", 5},
		{"T | order by zz", "No such column as 'zz' found", 5},
		{"T | order by a, zz desc", "No such column as 'zz' found", 5},
		{"T | project a | where b == 'x'", "No such column as 'b' found", 23},
		{"T | summarize n = count() | where a > 1", "No such column as 'a' found", 35},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			qerr := compileError(t, tt.query, typesEnv())
			assert.Equal(t, SemanticError, qerr.Kind)
			assert.Equal(t, tt.message, qerr.Message)
			assert.Equal(t, 1, qerr.Line)
			assert.Equal(t, tt.col, qerr.Col)
		})
	}
}

func TestCheck_AggregateDefinitions(t *testing.T) {
	env := typesEnv()
	env.AddFunction(&FunctionDef{
		Name:       "mismatched",
		Params:     []Param{{"acc", TypeString}, {"x", TypeNumber}},
		ReturnType: TypeNumber,
		Impl:       func(args ...interface{}) (interface{}, error) { return 0.0, nil },
		Aggregate:  &AggregateDef{InitialValue: ""},
	})
	env.AddFunction(&FunctionDef{
		Name:       "noparams",
		ReturnType: TypeNumber,
		Impl:       func(args ...interface{}) (interface{}, error) { return 0.0, nil },
		Aggregate:  &AggregateDef{InitialValue: 0.0},
	})

	qerr := compileError(t, "T | summarize x = mismatched(a)", env)
	assert.Equal(t, "Invalid aggregation function 'mismatched'. Accumulator 'acc' type is 'string' and return type is 'number'", qerr.Message)

	qerr = compileError(t, "T | summarize x = noparams()", env)
	assert.Equal(t, "Aggregation function must have at least the accumulator parameter, 'noparams' has none", qerr.Message)
}

func TestCheck_HostFunctionsOverrideBuiltins(t *testing.T) {
	env := typesEnv(Row{"a": 1.0, "b": "abc"})
	env.AddFunction(&FunctionDef{
		Name:       "to_upper",
		Params:     []Param{{"s", TypeString}},
		ReturnType: TypeNumber,
		Impl: func(args ...interface{}) (interface{}, error) {
			return float64(len(args[0].(string))), nil
		},
	})

	result, err := Compile("T | project b | extend u = to_upper(b)", env)
	require.NoError(t, err)
	col, ok := result.Schema().Lookup("u")
	require.True(t, ok)
	assert.Equal(t, TypeNumber, col.Type)

	rows, err := Collect(result.Program(env))
	require.NoError(t, err)
	assert.Equal(t, []Row{{"b": "abc", "u": 3.0}}, rows)
}

func TestCheck_StagesStopAtFirstError(t *testing.T) {
	// The lexical error wins over the unknown table and the syntax error
	qerr := compileError(t, "Nope | where $", typesEnv())
	assert.Equal(t, LexicalError, qerr.Kind)

	// The syntax error wins over the unknown table
	qerr = compileError(t, "Nope | select", typesEnv())
	assert.Equal(t, SyntaxError, qerr.Kind)
}

func TestCheck_MultilinePositions(t *testing.T) {
	qerr := compileError(t, "T\n| where a > 1\n| project zz", typesEnv())
	assert.Equal(t, SemanticError, qerr.Kind)
	assert.Equal(t, 3, qerr.Line)
	assert.Equal(t, 3, qerr.Col)
	assert.Equal(t, "Semantic error at 3:3: Column 'zz' not found from the source table", qerr.Error())
}

func TestCheck_NilEnv(t *testing.T) {
	ast, err := ParseQuery("T")
	require.NoError(t, err)
	_, err = Check(ast, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such table as 'T' found")
}

func TestCheck_NilAST(t *testing.T) {
	var err error
	require.NotPanics(t, func() { _, err = Check(nil, NewEnv()) })
	var qerr *Error
	require.True(t, errors.As(err, &qerr), "expected *Error, got %T", err)
	assert.Equal(t, SemanticError, qerr.Kind)
}
