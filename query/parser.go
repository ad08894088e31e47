package query

import "errors"

// Parser parses RQL token streams into an AST
type Parser struct {
	tokens       []Token
	pos          int
	depthCounter *ExpressionDepthCounter
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens:       tokens,
		pos:          0,
		depthCounter: NewExpressionDepthCounter(),
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) eof() Token {
	if n := len(p.tokens); n > 0 && p.tokens[n-1].Type == TokenEOF {
		return p.tokens[n-1]
	}
	end := 0
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		end = last.Pos + len(last.Value)
	}
	return Token{Type: TokenEOF, Pos: end}
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) (Token, error) {
	tok := p.current()
	if tok.Type != tokType {
		return tok, syntaxError(tok.Pos, "Expected %v, got %s", tokType, describeToken(tok))
	}
	p.advance()
	return tok, nil
}

// expectIdent consumes an identifier token
func (p *Parser) expectIdent(what string) (Ident, error) {
	tok := p.current()
	if tok.Type != TokenIdent {
		return Ident{}, syntaxError(tok.Pos, "Expected %s, got %s", what, describeToken(tok))
	}
	p.advance()
	return Ident{Name: tok.Value, Pos: tok.Pos}, nil
}

// atWord reports whether the current token is the identifier word
func (p *Parser) atWord(word string) bool {
	tok := p.current()
	return tok.Type == TokenIdent && tok.Value == word
}

func describeToken(tok Token) string {
	switch tok.Type {
	case TokenIdent:
		return "identifier '" + tok.Value + "'"
	case TokenString:
		return "string literal"
	case TokenNumber, TokenDate:
		return tok.Type.String() + " '" + tok.Value + "'"
	default:
		return tok.Type.String()
	}
}

// Parse parses a token stream produced by Tokenize. Positions in a returned
// *Error are byte offsets; line and column are not resolved.
func Parse(tokens []Token) (Node, error) {
	parser := NewParser(tokens)
	q, err := parser.parseQuery()
	if err != nil {
		return nil, err
	}

	// Validate that we consumed all tokens (should be at EOF)
	if tok := parser.current(); tok.Type != TokenEOF {
		return nil, syntaxError(tok.Pos, "Unexpected %s after end of query", describeToken(tok))
	}
	return q, nil
}

// ParseQuery tokenizes and parses query text, resolving error positions
// against it
func ParseQuery(input string) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	node, err := Parse(tokens)
	if err != nil {
		return nil, locate(err, input)
	}
	return node, nil
}

// locate resolves the line and column of an *Error against the query text
func locate(err error, input string) error {
	var qerr *Error
	if errors.As(err, &qerr) && qerr.Line == 0 {
		qerr.Locate(input)
	}
	return err
}

// parseQuery parses: table ( '|' op )*
func (p *Parser) parseQuery() (Node, error) {
	name, err := p.expectIdent("table name")
	if err != nil {
		return nil, err
	}

	var node Node = &Table{Name: name, Pos: name.Pos}
	for p.current().Type == TokenBar {
		bar := p.current()
		p.advance()

		op, err := p.parseOperator()
		if err != nil {
			return nil, err
		}
		node = &Cont{Source: node, Op: op, Pos: bar.Pos}
	}
	return node, nil
}

// parseOperator dispatches on the operator word following a '|'
func (p *Parser) parseOperator() (Node, error) {
	tok := p.current()
	if tok.Type == TokenIdent {
		switch tok.Value {
		case "where":
			return p.parseWhere()
		case "project":
			return p.parseProject()
		case "extend":
			return p.parseExtend()
		case "summarize":
			return p.parseSummarize()
		case "order":
			return p.parseOrderBy()
		}
	}
	return nil, syntaxError(tok.Pos, "Expected one of where, project, extend, summarize or order by, got %s", describeToken(tok))
}

// parseWhere parses: where expr
func (p *Parser) parseWhere() (Node, error) {
	start := p.current().Pos
	p.advance() // skip 'where'

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Where{Expr: expr, Pos: start}, nil
}

// parseProject parses: project name (',' name)*
func (p *Parser) parseProject() (Node, error) {
	start := p.current().Pos
	p.advance() // skip 'project'

	names, err := p.parseIdentList("column name")
	if err != nil {
		return nil, err
	}
	return &Project{Names: names, Pos: start}, nil
}

// parseExtend parses: extend name '=' expr
func (p *Parser) parseExtend() (Node, error) {
	start := p.current().Pos
	p.advance() // skip 'extend'

	name, err := p.expectIdent("column name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenAssign); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Extend{Name: name, Expr: expr, Pos: start}, nil
}

// parseSummarize parses: summarize name '=' call (',' name '=' call)* [by name (',' name)*]
func (p *Parser) parseSummarize() (Node, error) {
	start := p.current().Pos
	p.advance() // skip 'summarize'

	var aggregations []Aggregation
	for {
		name, err := p.expectIdent("aggregation name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenAssign); err != nil {
			return nil, err
		}

		tok := p.current()
		if tok.Type != TokenIdent || p.peek().Type != TokenLeftParen {
			return nil, syntaxError(tok.Pos, "Expected aggregate function call, got %s", describeToken(tok))
		}
		call, err := p.parseFunctionCall()
		if err != nil {
			return nil, err
		}
		aggregations = append(aggregations, Aggregation{Name: name, Call: call})

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	var groupBy []Ident
	if p.atWord("by") {
		p.advance()
		names, err := p.parseIdentList("group by column")
		if err != nil {
			return nil, err
		}
		groupBy = names
	}

	return &Summarize{Aggregations: aggregations, GroupBy: groupBy, Pos: start}, nil
}

// parseOrderBy parses: order by name (',' name)* [asc | desc]
func (p *Parser) parseOrderBy() (Node, error) {
	start := p.current().Pos
	p.advance() // skip 'order'

	if !p.atWord("by") {
		tok := p.current()
		return nil, syntaxError(tok.Pos, "Expected 'by' after 'order', got %s", describeToken(tok))
	}
	p.advance()

	names, err := p.parseIdentList("column name")
	if err != nil {
		return nil, err
	}

	direction := Ascending
	switch {
	case p.atWord("asc"):
		p.advance()
	case p.atWord("desc"):
		direction = Descending
		p.advance()
	}
	return &OrderBy{Names: names, Direction: direction, Pos: start}, nil
}

// parseIdentList parses: name (',' name)*
func (p *Parser) parseIdentList(what string) ([]Ident, error) {
	var names []Ident
	for {
		name, err := p.expectIdent(what)
		if err != nil {
			return nil, err
		}
		names = append(names, name)

		if p.current().Type != TokenComma {
			return names, nil
		}
		p.advance()
	}
}
