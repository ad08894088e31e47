package query

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// rowsSchema is the schema of the Rows table: a number, b string
func rowsSchema() TableDef {
	return NewTableDef(
		Column{Name: "a", Type: TypeNumber},
		Column{Name: "b", Type: TypeString},
	)
}

func scenarioRows() []Row {
	return []Row{
		{"a": 1.0, "b": "x"},
		{"a": 2.0, "b": "y"},
		{"a": 3.0, "b": "x"},
	}
}

// scenarioEnv returns an environment with a fresh Rows table
func scenarioEnv() *Env {
	env := NewEnv()
	env.AddTable("Rows", rowsSchema(), NewSliceStream(scenarioRows()))
	return env
}

// typesSchema covers every column type
func typesSchema() TableDef {
	return NewTableDef(
		Column{Name: "a", Type: TypeNumber},
		Column{Name: "b", Type: TypeString},
		Column{Name: "flag", Type: TypeBoolean},
		Column{Name: "d", Type: TypeDate},
		Column{Name: "obj", Type: TypeObject},
	)
}

func typesEnv(rows ...Row) *Env {
	env := NewEnv()
	env.AddTable("T", typesSchema(), NewSliceStream(rows))
	return env
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// runQuery compiles and drains a query, failing the test on any error
func runQuery(t *testing.T, input string, env *Env) []Row {
	t.Helper()
	stream, err := Run(input, env)
	require.NoError(t, err)
	rows, err := Collect(stream)
	require.NoError(t, err)
	return rows
}

// compileError compiles a query that must fail and returns its *Error
func compileError(t *testing.T, input string, env *Env) *Error {
	t.Helper()
	_, err := Compile(input, env)
	require.Error(t, err)
	var qerr *Error
	require.True(t, errors.As(err, &qerr), "expected *Error, got %T", err)
	return qerr
}

// countingStream counts how many rows were pulled from it
type countingStream struct {
	rows   []Row
	pulled int
}

func (s *countingStream) Next() (Row, error) {
	if s.pulled >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pulled]
	s.pulled++
	return row, nil
}

func numberRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{"a": float64(i + 1), "b": fmt.Sprintf("r%d", i+1)}
	}
	return rows
}

// sexpr renders an expression as an s-expression
func sexpr(e Expr) string {
	switch n := e.(type) {
	case *ColumnExpr:
		return n.Name
	case *NullLit:
		return "null"
	case *TrueLit:
		return "true"
	case *FalseLit:
		return "false"
	case *StringLit:
		return fmt.Sprintf("%q", n.Value)
	case *NumberLit:
		return n.Value
	case *DateLit:
		return n.Value
	case *UnaryExpr:
		return "(" + n.Op.String() + " " + sexpr(n.Operand) + ")"
	case *BinaryExpr:
		return "(" + n.Op.String() + " " + sexpr(n.Left) + " " + sexpr(n.Right) + ")"
	case *FunctionCall:
		parts := []string{n.Name.Name}
		for _, a := range n.Args {
			parts = append(parts, sexpr(a))
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}
