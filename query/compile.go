package query

import (
	"errors"
	"io"
)

// TableSource is a named table supplied by the host
type TableSource struct {
	Schema TableDef
	Rows   RowStream
}

// Env holds the tables and host functions a query runs against. Host
// functions take precedence over builtins of the same name.
type Env struct {
	Tables    map[string]TableSource
	Functions map[string]*FunctionDef
}

// NewEnv creates an empty environment
func NewEnv() *Env {
	return &Env{
		Tables:    make(map[string]TableSource),
		Functions: make(map[string]*FunctionDef),
	}
}

// AddTable registers a table, replacing any table of the same name
func (e *Env) AddTable(name string, schema TableDef, rows RowStream) {
	if e.Tables == nil {
		e.Tables = make(map[string]TableSource)
	}
	e.Tables[name] = TableSource{Schema: schema, Rows: rows}
}

// AddFunction registers a host function
func (e *Env) AddFunction(f *FunctionDef) {
	if e.Functions == nil {
		e.Functions = make(map[string]*FunctionDef)
	}
	e.Functions[f.Name] = f
}

// CompileResult holds the output of every compile stage
type CompileResult struct {
	Input   string
	Tokens  []Token
	AST     Node
	Checked Checked
	Program Program
}

// Schema returns the schema of the query's result rows
func (r *CompileResult) Schema() TableDef {
	return r.Checked.Schema()
}

// Compile runs the lexer, parser and checker over input and builds the
// Program. The first failing stage stops compilation; its *Error is
// returned with line and column resolved against input.
func Compile(input string, env *Env) (*CompileResult, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	ast, err := Parse(tokens)
	if err != nil {
		return nil, locate(err, input)
	}

	checked, err := Check(ast, env)
	if err != nil {
		return nil, locate(err, input)
	}

	return &CompileResult{
		Input:   input,
		Tokens:  tokens,
		AST:     ast,
		Checked: checked,
		Program: CompileChecked(checked),
	}, nil
}

// Run compiles input and starts the query against env. Errors raised while
// the returned stream is consumed are *Error values of kind RuntimeError.
func Run(input string, env *Env) (RowStream, error) {
	result, err := Compile(input, env)
	if err != nil {
		return nil, err
	}
	return result.Rows(env), nil
}

// Rows starts the compiled query against env. A result can be run any number
// of times as long as env supplies fresh table streams for each run.
func (r *CompileResult) Rows(env *Env) RowStream {
	return locateStream(r.Program(env), r.Input)
}

// locateStream resolves positions of runtime errors against input
func locateStream(stream RowStream, input string) RowStream {
	return RowStreamFunc(func() (Row, error) {
		row, err := stream.Next()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, locate(err, input)
		}
		return row, err
	})
}
