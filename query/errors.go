package query

import (
	"fmt"
	"strings"
)

// ErrorKind identifies the stage that produced an Error
type ErrorKind int

const (
	LexicalError ErrorKind = iota
	SyntaxError
	SemanticError
	RuntimeError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "Lexical error"
	case SyntaxError:
		return "Syntax error"
	case SemanticError:
		return "Semantic error"
	default:
		return "Runtime error"
	}
}

// Error is the single error surfaced by a compile attempt, or the error that
// terminated a row stream.
//
// Pos is a byte offset into the query text. Line and Col are 1-based and are
// filled in once the error is located against the query text (Tokenize,
// Compile and Run do this; Parse and Check only know offsets).
type Error struct {
	Kind    ErrorKind
	Message string
	Pos     int
	Line    int
	Col     int
	Err     error // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Col, e.Message)
	}
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Locate resolves Line and Col from Pos against the query text
func (e *Error) Locate(input string) *Error {
	e.Line, e.Col = SourcePosition(input, e.Pos)
	return e
}

// SourcePosition converts a byte offset into a 1-based line and column
func SourcePosition(input string, pos int) (line, col int) {
	if pos > len(input) {
		pos = len(input)
	}
	if pos < 0 {
		pos = 0
	}
	before := input[:pos]
	line = strings.Count(before, "\n") + 1
	col = pos - (strings.LastIndexByte(before, '\n') + 1) + 1
	return line, col
}

func lexError(input string, pos int, format string, args ...interface{}) *Error {
	e := &Error{Kind: LexicalError, Message: fmt.Sprintf(format, args...), Pos: pos}
	return e.Locate(input)
}

func syntaxError(pos int, format string, args ...interface{}) *Error {
	return &Error{Kind: SyntaxError, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func semanticError(pos int, format string, args ...interface{}) *Error {
	return &Error{Kind: SemanticError, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func runtimeError(pos int, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: RuntimeError, Message: fmt.Sprintf(format, args...), Pos: pos, Err: err}
}

func (e *Error) wrap(err error) *Error {
	e.Err = err
	return e
}
