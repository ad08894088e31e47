package query

import (
	"errors"
	"strings"
)

// Checked is a type-checked pipeline node. Every node knows the schema of
// the rows it produces. The set of implementations is closed.
type Checked interface {
	Schema() TableDef
	checked()
}

// Evaluator computes an expression for one row
type Evaluator func(row Row) (interface{}, error)

// CheckedExpr is a type-checked expression with its bound evaluator
type CheckedExpr struct {
	Type DataType
	Eval Evaluator
}

// CheckedAggregation is one aggregation of a summarize stage, bound to its
// function. Step folds one row into the accumulator.
type CheckedAggregation struct {
	Name         string
	Type         DataType
	InitialValue interface{}
	Step         func(acc interface{}, row Row) (interface{}, error)
	FinalPass    func(acc interface{}, n int) (interface{}, error)
	Pos          int
}

// CheckedTable reads a table from the environment
type CheckedTable struct {
	Name   string
	Output TableDef
}

// CheckedCont applies Op to the rows of Source
type CheckedCont struct {
	Source Checked
	Op     Checked
}

// CheckedWhere keeps rows for which Expr is exactly true
type CheckedWhere struct {
	Expr   CheckedExpr
	Output TableDef
}

// CheckedProject keeps the named columns
type CheckedProject struct {
	Names  []string
	Output TableDef
}

// CheckedExtend adds the column Name computed by Expr
type CheckedExtend struct {
	Name   string
	Expr   CheckedExpr
	Output TableDef
}

// CheckedSummarize folds rows into one row per group
type CheckedSummarize struct {
	Aggregations []CheckedAggregation
	GroupBy      []string // in input schema order
	Output       TableDef
}

// CheckedOrderBy sorts rows by Names
type CheckedOrderBy struct {
	Names     []string
	Direction SortDirection
	Output    TableDef
}

func (c *CheckedTable) Schema() TableDef     { return c.Output }
func (c *CheckedCont) Schema() TableDef      { return c.Op.Schema() }
func (c *CheckedWhere) Schema() TableDef     { return c.Output }
func (c *CheckedProject) Schema() TableDef   { return c.Output }
func (c *CheckedExtend) Schema() TableDef    { return c.Output }
func (c *CheckedSummarize) Schema() TableDef { return c.Output }
func (c *CheckedOrderBy) Schema() TableDef   { return c.Output }

func (*CheckedTable) checked()     {}
func (*CheckedCont) checked()      {}
func (*CheckedWhere) checked()     {}
func (*CheckedProject) checked()   {}
func (*CheckedExtend) checked()    {}
func (*CheckedSummarize) checked() {}
func (*CheckedOrderBy) checked()   {}

// Checker resolves names and types of a parsed query against an environment
type Checker struct {
	env        *Env
	comparator *valueComparator
}

// NewChecker creates a checker for env
func NewChecker(env *Env) *Checker {
	if env == nil {
		env = &Env{}
	}
	return &Checker{env: env, comparator: newOperatorComparator()}
}

// Check type-checks a parsed query. Positions in a returned *Error are byte
// offsets; line and column are not resolved.
func Check(ast Node, env *Env) (Checked, error) {
	return NewChecker(env).Check(ast)
}

// Check type-checks a parsed query
func (c *Checker) Check(ast Node) (Checked, error) {
	switch n := ast.(type) {
	case *Table:
		return c.checkTable(n)
	case *Cont:
		return c.checkCont(n)
	case nil:
		return nil, semanticError(0, "Expected a table or a pipeline, got nothing")
	default:
		return nil, semanticError(ast.Position(), "Expected a table or a pipeline, got %T", ast)
	}
}

// function resolves a function name, host functions first
func (c *Checker) function(name string) (*FunctionDef, bool) {
	if f, ok := c.env.Functions[name]; ok && f != nil {
		return f, true
	}
	return GetGlobalRegistry().Get(name)
}

func (c *Checker) checkTable(n *Table) (Checked, error) {
	source, ok := c.env.Tables[n.Name.Name]
	if !ok {
		return nil, semanticError(n.Pos, "No such table as '%s' found", n.Name.Name)
	}
	return &CheckedTable{Name: n.Name.Name, Output: source.Schema}, nil
}

func (c *Checker) checkCont(n *Cont) (Checked, error) {
	source, err := c.Check(n.Source)
	if err != nil {
		return nil, err
	}

	input := source.Schema()
	var op Checked
	switch o := n.Op.(type) {
	case *Where:
		op, err = c.checkWhere(input, o)
	case *Project:
		op, err = c.checkProject(input, o)
	case *Extend:
		op, err = c.checkExtend(input, o)
	case *Summarize:
		op, err = c.checkSummarize(input, o)
	case *OrderBy:
		op, err = c.checkOrderBy(input, o)
	default:
		return nil, semanticError(n.Op.Position(), "Expected an operator, got %T", n.Op)
	}
	if err != nil {
		return nil, err
	}
	return &CheckedCont{Source: source, Op: op}, nil
}

func (c *Checker) checkWhere(input TableDef, n *Where) (Checked, error) {
	expr, err := c.checkExpr(input, n.Expr)
	if err != nil {
		return nil, err
	}
	if expr.Type != TypeBoolean {
		return nil, semanticError(n.Expr.Position(), "Where clause expression must be boolean, got '%s'", expr.Type)
	}
	return &CheckedWhere{Expr: expr, Output: input}, nil
}

func (c *Checker) checkProject(input TableDef, n *Project) (Checked, error) {
	var missing []string
	seen := make(map[string]bool, len(n.Names))
	for _, name := range n.Names {
		if seen[name.Name] {
			return nil, semanticError(name.Pos, "Column '%s' is projected more than once", name.Name)
		}
		seen[name.Name] = true
		if _, ok := input.Lookup(name.Name); !ok {
			missing = append(missing, "'"+name.Name+"'")
		}
	}
	switch {
	case len(missing) > 1:
		return nil, semanticError(n.Pos, "Columns %s not found from the source table", strings.Join(missing, ", "))
	case len(missing) == 1:
		return nil, semanticError(n.Pos, "Column %s not found from the source table", missing[0])
	}

	names := make([]string, len(n.Names))
	columns := make([]Column, len(n.Names))
	for i, name := range n.Names {
		col, _ := input.Lookup(name.Name)
		names[i] = name.Name
		columns[i] = col
	}
	return &CheckedProject{Names: names, Output: NewTableDef(columns...)}, nil
}

func (c *Checker) checkExtend(input TableDef, n *Extend) (Checked, error) {
	expr, err := c.checkExpr(input, n.Expr)
	if err != nil {
		return nil, err
	}
	if _, exists := input.Lookup(n.Name.Name); exists {
		return nil, semanticError(n.Name.Pos, "Column '%s' already exists", n.Name.Name)
	}

	columns := append(append([]Column(nil), input.Columns...), Column{Name: n.Name.Name, Type: expr.Type})
	return &CheckedExtend{Name: n.Name.Name, Expr: expr, Output: NewTableDef(columns...)}, nil
}

func (c *Checker) checkSummarize(input TableDef, n *Summarize) (Checked, error) {
	aggregations := make([]CheckedAggregation, 0, len(n.Aggregations))
	for _, aggr := range n.Aggregations {
		checked, err := c.checkAggregation(input, aggr)
		if err != nil {
			return nil, err
		}
		aggregations = append(aggregations, checked)
	}

	groupBy := make(map[string]bool, len(n.GroupBy))
	for _, name := range n.GroupBy {
		if _, ok := input.Lookup(name.Name); !ok {
			return nil, semanticError(n.Pos, "No such column as '%s' found", name.Name)
		}
		groupBy[name.Name] = true
	}

	// Aggregation columns first, then group columns in input schema order
	var columns []Column
	var groupNames []string
	outputs := make(map[string]bool)
	for _, aggr := range aggregations {
		if outputs[aggr.Name] {
			return nil, semanticError(aggr.Pos, "Duplicate output column '%s' in summarize", aggr.Name)
		}
		outputs[aggr.Name] = true
		columns = append(columns, Column{Name: aggr.Name, Type: aggr.Type})
	}
	for _, col := range input.Columns {
		if !groupBy[col.Name] {
			continue
		}
		if outputs[col.Name] {
			return nil, semanticError(n.Pos, "Duplicate output column '%s' in summarize", col.Name)
		}
		outputs[col.Name] = true
		columns = append(columns, col)
		groupNames = append(groupNames, col.Name)
	}

	return &CheckedSummarize{Aggregations: aggregations, GroupBy: groupNames, Output: NewTableDef(columns...)}, nil
}

func (c *Checker) checkAggregation(input TableDef, aggr Aggregation) (CheckedAggregation, error) {
	call := aggr.Call
	name := call.Name.Name
	f, ok := c.function(name)
	if !ok {
		return CheckedAggregation{}, semanticError(call.Pos, "No such function as '%s' found", name)
	}
	if !f.IsAggregate() {
		return CheckedAggregation{}, semanticError(call.Pos,
			"Function '%s' cannot be used as aggregation function, as it does not have initial value defined", name)
	}
	if len(f.Params) == 0 {
		return CheckedAggregation{}, semanticError(call.Pos,
			"Aggregation function must have at least the accumulator parameter, '%s' has none", name)
	}
	acc := f.Params[0]
	if acc.Type != f.ReturnType {
		return CheckedAggregation{}, semanticError(call.Pos,
			"Invalid aggregation function '%s'. Accumulator '%s' type is '%s' and return type is '%s'",
			name, acc.Name, acc.Type, f.ReturnType)
	}

	// f(b, c) is called as f(acc, b, c)
	if len(call.Args)+1 != len(f.Params) {
		return CheckedAggregation{}, semanticError(call.Pos,
			"Aggregation function '%s' takes %d arguments, %d were given", name, len(f.Params)-1, len(call.Args))
	}
	args, err := c.checkArgs(input, f, f.Params[1:], call.Args)
	if err != nil {
		return CheckedAggregation{}, err
	}

	step := func(accumulator interface{}, row Row) (interface{}, error) {
		values := make([]interface{}, 0, len(args)+1)
		values = append(values, accumulator)
		for _, arg := range args {
			v, err := arg(row)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		result, err := f.call(values)
		if err != nil {
			return nil, functionFailure(call, err)
		}
		return result, nil
	}

	return CheckedAggregation{
		Name:         aggr.Name.Name,
		Type:         f.ReturnType,
		InitialValue: NormalizeValue(f.Aggregate.InitialValue),
		Step:         step,
		FinalPass:    f.Aggregate.FinalPass,
		Pos:          aggr.Name.Pos,
	}, nil
}

func (c *Checker) checkOrderBy(input TableDef, n *OrderBy) (Checked, error) {
	names := make([]string, len(n.Names))
	for i, name := range n.Names {
		if _, ok := input.Lookup(name.Name); !ok {
			return nil, semanticError(n.Pos, "No such column as '%s' found", name.Name)
		}
		names[i] = name.Name
	}
	return &CheckedOrderBy{Names: names, Direction: n.Direction, Output: input}, nil
}

// functionFailure reports an error raised by a function at runtime
func functionFailure(call *FunctionCall, err error) error {
	var qerr *Error
	if errors.As(err, &qerr) {
		return err
	}
	return runtimeError(call.Pos, err, "Function '%s' failed: %v", call.Name.Name, err)
}
