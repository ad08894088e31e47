package query

// Each binary precedence level parses its right operand by recursing into
// itself, so chains of the same level group to the right: "10 - 3 - 2" is
// "10 - (3 - 2)".

// parseExpression parses a full expression (lowest precedence)
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseOr()
}

// enter bumps the nesting depth, reporting the limit at the current token.
// Parentheses, unary operators and call arguments nest; operator chains
// do not.
func (p *Parser) enter() error {
	if err := p.depthCounter.Enter(); err != nil {
		p.depthCounter.Exit()
		return syntaxError(p.current().Pos, "%v", err).wrap(err)
	}
	return nil
}

// parseOr parses 'or' and 'and', which share the lowest level
func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	tok := p.current()
	var op BinaryOperator
	switch tok.Type {
	case TokenOr:
		op = OpOr
	case TokenAnd:
		op = OpAnd
	default:
		return left, nil
	}
	p.advance()

	right, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op, Left: left, Right: right, Pos: tok.Pos}, nil
}

var comparisonOperators = map[TokenType]BinaryOperator{
	TokenEqual:        OpEqual,
	TokenNotEqual:     OpNotEqual,
	TokenLess:         OpLess,
	TokenLessEqual:    OpLessEqual,
	TokenGreater:      OpGreater,
	TokenGreaterEqual: OpGreaterEqual,
}

// parseComparison parses ==, !=, <, <=, >, >=
func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseContains()
	if err != nil {
		return nil, err
	}

	tok := p.current()
	op, ok := comparisonOperators[tok.Type]
	if !ok {
		return left, nil
	}
	p.advance()

	right, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op, Left: left, Right: right, Pos: tok.Pos}, nil
}

// parseContains parses contains and !contains
func (p *Parser) parseContains() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	tok := p.current()
	var op BinaryOperator
	switch tok.Type {
	case TokenContains:
		op = OpContains
	case TokenNotContains:
		op = OpNotContains
	default:
		return left, nil
	}
	p.advance()

	right, err := p.parseContains()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op, Left: left, Right: right, Pos: tok.Pos}, nil
}

// parseAdditive parses + and -
func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	tok := p.current()
	var op BinaryOperator
	switch tok.Type {
	case TokenPlus:
		op = OpPlus
	case TokenMinus:
		op = OpMinus
	default:
		return left, nil
	}
	p.advance()

	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op, Left: left, Right: right, Pos: tok.Pos}, nil
}

// parseMultiplicative parses * and /
func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	tok := p.current()
	var op BinaryOperator
	switch tok.Type {
	case TokenTimes:
		op = OpMultiply
	case TokenDivide:
		op = OpDivide
	default:
		return left, nil
	}
	p.advance()

	right, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op, Left: left, Right: right, Pos: tok.Pos}, nil
}

// parseUnary parses prefix !, + and -
func (p *Parser) parseUnary() (Expr, error) {
	tok := p.current()
	var op UnaryOperator
	switch tok.Type {
	case TokenNot:
		op = UnaryNot
	case TokenPlus:
		op = UnaryPlus
	case TokenMinus:
		op = UnaryMinus
	default:
		return p.parsePrimary()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{Op: op, Operand: operand, Pos: tok.Pos}, nil
}

// parsePrimary parses literals, column references, calls and parentheses
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNull:
		p.advance()
		return &NullLit{Pos: tok.Pos}, nil
	case TokenTrue:
		p.advance()
		return &TrueLit{Pos: tok.Pos}, nil
	case TokenFalse:
		p.advance()
		return &FalseLit{Pos: tok.Pos}, nil
	case TokenNumber:
		p.advance()
		return &NumberLit{Value: tok.Value, Pos: tok.Pos}, nil
	case TokenString:
		p.advance()
		return &StringLit{Value: tok.Value, Pos: tok.Pos}, nil
	case TokenDate:
		p.advance()
		return &DateLit{Value: tok.Value, Pos: tok.Pos}, nil
	case TokenIdent:
		if p.peek().Type == TokenLeftParen {
			return p.parseFunctionCall()
		}
		p.advance()
		return &ColumnExpr{Name: tok.Value, Pos: tok.Pos}, nil
	case TokenLeftParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.depthCounter.Exit()

		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, syntaxError(tok.Pos, "Expected expression, got %s", describeToken(tok))
	}
}

// parseFunctionCall parses: name '(' [expr (',' expr)*] ')'
func (p *Parser) parseFunctionCall() (*FunctionCall, error) {
	nameTok := p.current()
	p.advance() // skip function name

	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	call := &FunctionCall{Name: Ident{Name: nameTok.Value, Pos: nameTok.Pos}, Pos: nameTok.Pos}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	// Check for empty argument list
	if p.current().Type == TokenRightParen {
		p.advance()
		return call, nil
	}

	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return call, nil
}
