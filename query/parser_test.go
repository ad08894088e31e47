package query

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Pipeline(t *testing.T) {
	ast, err := ParseQuery("Rows | where a > 1")
	require.NoError(t, err)

	want := &Cont{
		Source: &Table{Name: Ident{Name: "Rows", Pos: 0}, Pos: 0},
		Op: &Where{
			Expr: &BinaryExpr{
				Op:    OpGreater,
				Left:  &ColumnExpr{Name: "a", Pos: 13},
				Right: &NumberLit{Value: "1", Pos: 17},
				Pos:   15,
			},
			Pos: 7,
		},
		Pos: 5,
	}
	assert.Equal(t, want, ast)
}

func TestParse_TableOnly(t *testing.T) {
	ast, err := ParseQuery("Rows")
	require.NoError(t, err)
	assert.Equal(t, &Table{Name: Ident{Name: "Rows"}}, ast)
}

func TestParse_ChainsLeftToRight(t *testing.T) {
	ast, err := ParseQuery("T | project a | order by a | where a > 0")
	require.NoError(t, err)

	outer, ok := ast.(*Cont)
	require.True(t, ok)
	assert.IsType(t, &Where{}, outer.Op)

	middle, ok := outer.Source.(*Cont)
	require.True(t, ok)
	assert.IsType(t, &OrderBy{}, middle.Op)

	inner, ok := middle.Source.(*Cont)
	require.True(t, ok)
	assert.IsType(t, &Project{}, inner.Op)
	assert.IsType(t, &Table{}, inner.Source)
}

func TestParse_Operators(t *testing.T) {
	t.Run("project", func(t *testing.T) {
		ast, err := ParseQuery("T | project b, a")
		require.NoError(t, err)
		op := ast.(*Cont).Op.(*Project)
		assert.Equal(t, []Ident{{Name: "b", Pos: 12}, {Name: "a", Pos: 15}}, op.Names)
	})

	t.Run("extend", func(t *testing.T) {
		ast, err := ParseQuery("T | extend c = a * 2")
		require.NoError(t, err)
		op := ast.(*Cont).Op.(*Extend)
		assert.Equal(t, "c", op.Name.Name)
		assert.Equal(t, "(* a 2)", sexpr(op.Expr))
	})

	t.Run("summarize with group by", func(t *testing.T) {
		ast, err := ParseQuery("T | summarize total = sum(a), n = count() by b, c")
		require.NoError(t, err)
		op := ast.(*Cont).Op.(*Summarize)
		require.Len(t, op.Aggregations, 2)
		assert.Equal(t, "total", op.Aggregations[0].Name.Name)
		assert.Equal(t, "(sum a)", sexpr(op.Aggregations[0].Call))
		assert.Equal(t, "n", op.Aggregations[1].Name.Name)
		assert.Equal(t, "(count)", sexpr(op.Aggregations[1].Call))

		var groupBy []string
		for _, g := range op.GroupBy {
			groupBy = append(groupBy, g.Name)
		}
		assert.Equal(t, []string{"b", "c"}, groupBy)
	})

	t.Run("summarize without group by", func(t *testing.T) {
		ast, err := ParseQuery("T | summarize n = count()")
		require.NoError(t, err)
		op := ast.(*Cont).Op.(*Summarize)
		assert.Empty(t, op.GroupBy)
	})

	tests := []struct {
		query     string
		names     []string
		direction SortDirection
	}{
		{"T | order by a", []string{"a"}, Ascending},
		{"T | order by a asc", []string{"a"}, Ascending},
		{"T | order by a desc", []string{"a"}, Descending},
		{"T | order by a, b desc", []string{"a", "b"}, Descending},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ast, err := ParseQuery(tt.query)
			require.NoError(t, err)
			op := ast.(*Cont).Op.(*OrderBy)

			var names []string
			for _, n := range op.Names {
				names = append(names, n.Name)
			}
			assert.Equal(t, tt.names, names)
			assert.Equal(t, tt.direction, op.Direction)
		})
	}
}

func TestParse_Expressions(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"a", "a"},
		{"null", "null"},
		{"true", "true"},
		{"false", "false"},
		{"'s'", `"s"`},
		{"2024-01-01", "2024-01-01"},
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"1 * 2 + 3", "(+ (* 1 2) 3)"},
		{"10 - 3 - 2", "(- 10 (- 3 2))"},
		{"8 / 4 / 2", "(/ 8 (/ 4 2))"},
		{"(10 - 3) - 2", "(- (- 10 3) 2)"},
		{"a or b and c", "(or a (and b c))"},
		{"a and b or c", "(and a (or b c))"},
		{"a == 1 and b != 2", "(and (== a 1) (!= b 2))"},
		{"a + b < c", "(< (+ a b) c)"},
		{"x contains 'a' == true", `(== (contains x "a") true)`},
		{"x !contains 'a'", `(!contains x "a")`},
		{"!a == b", "(== (! a) b)"},
		{"-a * b", "(* (- a) b)"},
		{"- -a", "(- (- a))"},
		{"+a", "(+ a)"},
		{"f()", "(f)"},
		{"f(a, 1 + 2)", "(f a (+ 1 2))"},
		{"f(g(a), (b))", "(f (g a) b)"},
		{"d >= 2024-01-01", "(>= d 2024-01-01)"},
		{"a <= b", "(<= a b)"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			ast, err := ParseQuery("T | where " + tt.expr)
			require.NoError(t, err)
			where := ast.(*Cont).Op.(*Where)
			assert.Equal(t, tt.want, sexpr(where.Expr))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		query   string
		message string
		col     int
	}{
		{"", "Expected table name, got end of input", 1},
		{"| where a", "Expected table name, got '|'", 1},
		{"T |", "Expected one of where, project, extend, summarize or order by, got end of input", 4},
		{"T | select a", "Expected one of where, project, extend, summarize or order by, got identifier 'select'", 5},
		{"T | where", "Expected expression, got end of input", 10},
		{"T | where a >", "Expected expression, got end of input", 14},
		{"T | where (a", "Expected ')', got end of input", 13},
		{"T | where f(a b)", "Expected ')', got identifier 'b'", 15},
		{"T | project", "Expected column name, got end of input", 12},
		{"T | project a,", "Expected column name, got end of input", 15},
		{"T | project 1", "Expected column name, got number '1'", 13},
		{"T | extend x 1", "Expected '=', got number '1'", 14},
		{"T | extend = 1", "Expected column name, got '='", 12},
		{"T | summarize x = a", "Expected aggregate function call, got identifier 'a'", 19},
		{"T | summarize x = sum(a) by", "Expected group by column, got end of input", 28},
		{"T | order a", "Expected 'by' after 'order', got identifier 'a'", 11},
		{"T | order by", "Expected column name, got end of input", 13},
		{"T T", "Unexpected identifier 'T' after end of query", 3},
		{"T | where a > 1 1", "Unexpected number '1' after end of query", 17},
		{"T | where a | | b", "Expected one of where, project, extend, summarize or order by, got '|'", 15},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := ParseQuery(tt.query)
			require.Error(t, err)

			var qerr *Error
			require.True(t, errors.As(err, &qerr))
			assert.Equal(t, SyntaxError, qerr.Kind)
			assert.Equal(t, tt.message, qerr.Message)
			assert.Equal(t, 1, qerr.Line)
			assert.Equal(t, tt.col, qerr.Col)
		})
	}
}

func TestParse_ExpressionDepth(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"parentheses", strings.Repeat("(", MaxExpressionDepth+1) + "1" + strings.Repeat(")", MaxExpressionDepth+1)},
		{"unary", strings.Repeat("!", MaxExpressionDepth+1) + "true"},
		{"nested calls", strings.Repeat("f(", MaxExpressionDepth+1) + "1" + strings.Repeat(")", MaxExpressionDepth+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuery("T | where " + tt.expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrExpressionTooDeep))

			var qerr *Error
			require.True(t, errors.As(err, &qerr))
			assert.Equal(t, SyntaxError, qerr.Kind)
		})
	}

	t.Run("operator chains do not nest", func(t *testing.T) {
		terms := make([]string, 3*MaxExpressionDepth)
		for i := range terms {
			terms[i] = fmt.Sprintf("a == %d", i)
		}
		_, err := ParseQuery("T | where " + strings.Join(terms, " or "))
		require.NoError(t, err)

		_, err = ParseQuery("T | extend b = 1" + strings.Repeat(" + 1", 3*MaxExpressionDepth))
		require.NoError(t, err)
	})

	t.Run("within limit", func(t *testing.T) {
		depth := MaxExpressionDepth / 2
		_, err := ParseQuery("T | where " + strings.Repeat("(", depth) + "true" + strings.Repeat(")", depth))
		require.NoError(t, err)
	})
}

func TestParse_Deterministic(t *testing.T) {
	queries := []string{
		"Rows | where a > 1 and b contains 'x' | extend c = a * 2 - 1",
		"Rows | summarize total = sum(a), n = count() by b | order by total desc",
		"Rows | project b, a | where !(a == null) or b != \"y\"",
	}

	for _, q := range queries {
		first, err := ParseQuery(q)
		require.NoError(t, err)
		second, err := ParseQuery(q)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestParse_TokensWithoutEOF(t *testing.T) {
	ast, err := Parse([]Token{{Type: TokenIdent, Value: "T", Pos: 0}})
	require.NoError(t, err)
	assert.Equal(t, &Table{Name: Ident{Name: "T"}}, ast)

	_, err = Parse([]Token{
		{Type: TokenIdent, Value: "T", Pos: 0},
		{Type: TokenBar, Value: "|", Pos: 2},
	})
	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, 3, qerr.Pos)
}
