package query

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Literals
	TokenIdent TokenType = iota
	TokenString
	TokenNumber
	TokenDate

	// Literal keywords
	TokenNull
	TokenTrue
	TokenFalse

	// Delimiters
	TokenBar        // |
	TokenLeftParen  // (
	TokenRightParen // )
	TokenComma      // ,

	// Operators
	TokenNot          // !
	TokenPlus         // +
	TokenMinus        // -
	TokenTimes        // *
	TokenDivide       // /
	TokenAssign       // =
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenContains     // contains
	TokenNotContains  // !contains
	TokenAnd          // and
	TokenOr           // or

	// Special
	TokenEOF
)

var tokenNames = map[TokenType]string{
	TokenIdent:        "identifier",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenDate:         "date",
	TokenNull:         "null",
	TokenTrue:         "true",
	TokenFalse:        "false",
	TokenBar:          "'|'",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenComma:        "','",
	TokenNot:          "'!'",
	TokenPlus:         "'+'",
	TokenMinus:        "'-'",
	TokenTimes:        "'*'",
	TokenDivide:       "'/'",
	TokenAssign:       "'='",
	TokenEqual:        "'=='",
	TokenNotEqual:     "'!='",
	TokenLess:         "'<'",
	TokenLessEqual:    "'<='",
	TokenGreater:      "'>'",
	TokenGreaterEqual: "'>='",
	TokenContains:     "'contains'",
	TokenNotContains:  "'!contains'",
	TokenAnd:          "'and'",
	TokenOr:           "'or'",
	TokenEOF:          "end of input",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset into the query text
}

// DataType is the static type of an expression or column
type DataType int

const (
	TypeNull DataType = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeDate
	TypeObject
)

func (d DataType) String() string {
	switch d {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeDate:
		return "date"
	case TypeObject:
		return "object"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// ParseDataType maps a type name ("number", "string", ...) to its DataType
func ParseDataType(name string) (DataType, error) {
	for _, d := range []DataType{TypeNull, TypeBoolean, TypeNumber, TypeString, TypeDate, TypeObject} {
		if d.String() == name {
			return d, nil
		}
	}
	return TypeNull, fmt.Errorf("unknown data type %q", name)
}

// Row maps column names to values for one record
type Row map[string]interface{}

// Column is a single named, typed column of a table schema
type Column struct {
	Name string
	Type DataType
}

// TableDef is the ordered schema of a table or of an operator's output
type TableDef struct {
	Columns []Column
}

// NewTableDef builds a schema from columns in order
func NewTableDef(columns ...Column) TableDef {
	return TableDef{Columns: columns}
}

// Lookup returns the column with the given name
func (t TableDef) Lookup(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in schema order
func (t TableDef) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Node is a pipeline-level AST node: a table reference, a continuation or an
// operator stage. The set of implementations is closed.
type Node interface {
	Position() int
	node()
}

// Expr is an expression AST node. The set of implementations is closed.
type Expr interface {
	Position() int
	expr()
}

// Ident is a name as written in the query, with its position
type Ident struct {
	Name string
	Pos  int
}

// Table references a source table by name
type Table struct {
	Name Ident
	Pos  int
}

// Cont chains the operator Op onto Source
type Cont struct {
	Source Node
	Op     Node
	Pos    int
}

// Where keeps the rows for which Expr is true
type Where struct {
	Expr Expr
	Pos  int
}

// Project keeps only the listed columns, in the listed order
type Project struct {
	Names []Ident
	Pos   int
}

// Extend appends a computed column
type Extend struct {
	Name Ident
	Expr Expr
	Pos  int
}

// Aggregation is one "name = func(args...)" item of a summarize stage
type Aggregation struct {
	Name Ident
	Call *FunctionCall
}

// Summarize folds rows into aggregates, optionally per group
type Summarize struct {
	Aggregations []Aggregation
	GroupBy      []Ident
	Pos          int
}

// SortDirection is the direction of an order by stage
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// OrderBy sorts rows by the listed columns
type OrderBy struct {
	Names     []Ident
	Direction SortDirection
	Pos       int
}

// UnaryOperator is a prefix operator
type UnaryOperator int

const (
	UnaryNot UnaryOperator = iota
	UnaryPlus
	UnaryMinus
)

func (o UnaryOperator) String() string {
	switch o {
	case UnaryNot:
		return "!"
	case UnaryPlus:
		return "+"
	default:
		return "-"
	}
}

// BinaryOperator is an infix operator
type BinaryOperator int

const (
	OpPlus BinaryOperator = iota
	OpMinus
	OpMultiply
	OpDivide
	OpContains
	OpNotContains
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
)

var binaryOperatorNames = [...]string{
	OpPlus:         "+",
	OpMinus:        "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpContains:     "contains",
	OpNotContains:  "!contains",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpAnd:          "and",
	OpOr:           "or",
}

func (o BinaryOperator) String() string {
	if int(o) < len(binaryOperatorNames) {
		return binaryOperatorNames[o]
	}
	return fmt.Sprintf("BinaryOperator(%d)", int(o))
}

// ColumnExpr references a column of the input row
type ColumnExpr struct {
	Name string
	Pos  int
}

// NullLit is the null literal
type NullLit struct{ Pos int }

// TrueLit is the true literal
type TrueLit struct{ Pos int }

// FalseLit is the false literal
type FalseLit struct{ Pos int }

// StringLit is a string literal, already unescaped
type StringLit struct {
	Value string
	Pos   int
}

// NumberLit is a number literal as written
type NumberLit struct {
	Value string
	Pos   int
}

// DateLit is a YYYY-MM-DD literal as written
type DateLit struct {
	Value string
	Pos   int
}

// UnaryExpr applies a prefix operator
type UnaryExpr struct {
	Op      UnaryOperator
	Operand Expr
	Pos     int
}

// BinaryExpr applies an infix operator
type BinaryExpr struct {
	Op    BinaryOperator
	Left  Expr
	Right Expr
	Pos   int
}

// FunctionCall invokes a builtin or user function
type FunctionCall struct {
	Name Ident
	Args []Expr
	Pos  int
}

func (n *Table) Position() int     { return n.Pos }
func (n *Cont) Position() int      { return n.Pos }
func (n *Where) Position() int     { return n.Pos }
func (n *Project) Position() int   { return n.Pos }
func (n *Extend) Position() int    { return n.Pos }
func (n *Summarize) Position() int { return n.Pos }
func (n *OrderBy) Position() int   { return n.Pos }

func (*Table) node()     {}
func (*Cont) node()      {}
func (*Where) node()     {}
func (*Project) node()   {}
func (*Extend) node()    {}
func (*Summarize) node() {}
func (*OrderBy) node()   {}

func (e *ColumnExpr) Position() int   { return e.Pos }
func (e *NullLit) Position() int      { return e.Pos }
func (e *TrueLit) Position() int      { return e.Pos }
func (e *FalseLit) Position() int     { return e.Pos }
func (e *StringLit) Position() int    { return e.Pos }
func (e *NumberLit) Position() int    { return e.Pos }
func (e *DateLit) Position() int      { return e.Pos }
func (e *UnaryExpr) Position() int    { return e.Pos }
func (e *BinaryExpr) Position() int   { return e.Pos }
func (e *FunctionCall) Position() int { return e.Pos }

func (*ColumnExpr) expr()   {}
func (*NullLit) expr()      {}
func (*TrueLit) expr()      {}
func (*FalseLit) expr()     {}
func (*StringLit) expr()    {}
func (*NumberLit) expr()    {}
func (*DateLit) expr()      {}
func (*UnaryExpr) expr()    {}
func (*BinaryExpr) expr()   {}
func (*FunctionCall) expr() {}
