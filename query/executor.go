package query

import (
	"fmt"
	"io"
)

// Program produces the result rows of a compiled query for an environment.
// Calling a Program does no work; rows are computed as the returned stream
// is consumed.
type Program func(env *Env) RowStream

// operator transforms an upstream row stream
type operator func(input RowStream) RowStream

// CompileChecked translates a checked query into a Program
func CompileChecked(q Checked) Program {
	switch n := q.(type) {
	case *CheckedTable:
		return compileTable(n)
	case *CheckedCont:
		source := CompileChecked(n.Source)
		op := compileOperator(n.Op)
		return func(env *Env) RowStream {
			return op(source(env))
		}
	default:
		err := runtimeError(0, nil, "cannot compile %T as a query", q)
		return func(*Env) RowStream { return errorStream{err: err} }
	}
}

func compileOperator(q Checked) operator {
	switch n := q.(type) {
	case *CheckedWhere:
		return compileWhere(n)
	case *CheckedProject:
		return compileProject(n)
	case *CheckedExtend:
		return compileExtend(n)
	case *CheckedSummarize:
		return compileSummarize(n)
	case *CheckedOrderBy:
		return compileOrderBy(n)
	default:
		err := runtimeError(0, nil, "cannot compile %T as an operator", q)
		return func(RowStream) RowStream { return errorStream{err: err} }
	}
}

// compileTable streams the environment's table, normalizing host values
func compileTable(n *CheckedTable) Program {
	name := n.Name
	return func(env *Env) RowStream {
		var source TableSource
		var ok bool
		if env != nil {
			source, ok = env.Tables[name]
		}
		if !ok {
			return errorStream{err: runtimeError(0, nil, "No such table as '%s' found", name)}
		}
		if source.Rows == nil {
			return NewSliceStream(nil)
		}
		return &stickyStream{next: func() (Row, error) {
			row, err := source.Rows.Next()
			if err != nil {
				if err == io.EOF {
					return nil, err
				}
				return nil, runtimeError(0, err, "reading table '%s': %v", name, err)
			}
			return NormalizeRow(row), nil
		}}
	}
}

// evaluate runs an evaluator, turning a panic into a runtime error
func evaluate(eval Evaluator, row Row) (v interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = runtimeError(0, nil, "evaluation failed: %v", r)
		}
	}()
	return eval(row)
}

func compileWhere(n *CheckedWhere) operator {
	expr := n.Expr
	return func(input RowStream) RowStream {
		return &stickyStream{next: func() (Row, error) {
			for {
				row, err := input.Next()
				if err != nil {
					return nil, err
				}
				v, err := evaluate(expr.Eval, row)
				if err != nil {
					return nil, err
				}
				if v == true {
					return row, nil
				}
			}
		}}
	}
}

func compileProject(n *CheckedProject) operator {
	names := n.Names
	return func(input RowStream) RowStream {
		return &stickyStream{next: func() (Row, error) {
			row, err := input.Next()
			if err != nil {
				return nil, err
			}
			out := make(Row, len(names))
			for _, name := range names {
				out[name] = row[name]
			}
			return out, nil
		}}
	}
}

func compileExtend(n *CheckedExtend) operator {
	name, expr := n.Name, n.Expr
	return func(input RowStream) RowStream {
		return &stickyStream{next: func() (Row, error) {
			row, err := input.Next()
			if err != nil {
				return nil, err
			}
			v, err := evaluate(expr.Eval, row)
			if err != nil {
				return nil, err
			}
			out := make(Row, len(row)+1)
			for k, val := range row {
				out[k] = val
			}
			out[name] = v
			return out, nil
		}}
	}
}

// barrier drains the input on the first pull, then streams the rows that
// produce returns
func barrier(input RowStream, produce func(rows RowStream) ([]Row, error)) RowStream {
	var rows RowStream
	return &stickyStream{next: func() (Row, error) {
		if rows == nil {
			out, err := produce(input)
			if err != nil {
				return nil, err
			}
			rows = NewSliceStream(out)
		}
		return rows.Next()
	}}
}

func compileOrderBy(n *CheckedOrderBy) operator {
	sorter := newRowSorter(n.Names, n.Direction)
	return func(input RowStream) RowStream {
		return barrier(input, func(rows RowStream) ([]Row, error) {
			all, err := Collect(rows)
			if err != nil {
				return nil, err
			}
			return sorter.sort(all), nil
		})
	}
}

func compileSummarize(n *CheckedSummarize) operator {
	return func(input RowStream) RowStream {
		return barrier(input, func(rows RowStream) ([]Row, error) {
			return summarize(n, rows)
		})
	}
}

// Explain renders a checked plan one stage per line
func Explain(q Checked) string {
	switch n := q.(type) {
	case *CheckedTable:
		return fmt.Sprintf("table %s %s", n.Name, describeSchema(n.Output))
	case *CheckedCont:
		return Explain(n.Source) + "\n" + Explain(n.Op)
	case *CheckedWhere:
		return "where " + describeSchema(n.Output)
	case *CheckedProject:
		return fmt.Sprintf("project %v %s", n.Names, describeSchema(n.Output))
	case *CheckedExtend:
		return fmt.Sprintf("extend %s: %s %s", n.Name, n.Expr.Type, describeSchema(n.Output))
	case *CheckedSummarize:
		names := make([]string, len(n.Aggregations))
		for i, a := range n.Aggregations {
			names[i] = a.Name
		}
		return fmt.Sprintf("summarize %v by %v %s", names, n.GroupBy, describeSchema(n.Output))
	case *CheckedOrderBy:
		return fmt.Sprintf("order by %v %s %s", n.Names, n.Direction, describeSchema(n.Output))
	default:
		return fmt.Sprintf("%T", q)
	}
}

func describeSchema(t TableDef) string {
	s := "["
	for i, c := range t.Columns {
		if i > 0 {
			s += ", "
		}
		s += c.Name + ": " + c.Type.String()
	}
	return s + "]"
}
