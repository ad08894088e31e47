package query

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Lexer tokenizes RQL query strings
type Lexer struct {
	input string
	pos   int // offset of ch
	next  int // offset of the character after ch
	ch    byte
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	if l.next >= len(l.input) {
		l.pos = len(l.input)
		l.next = len(l.input) + 1
		l.ch = 0
		return
	}
	l.pos = l.next
	l.ch = l.input[l.next]
	l.next++
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() byte {
	if l.next >= len(l.input) {
		return 0
	}
	return l.input[l.next]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func isLetter(c byte) bool     { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isDigit(c byte) bool      { return '0' <= c && c <= '9' }
func isIdentChar(c byte) bool  { return isLetter(c) || isDigit(c) || c == '_' }
func isWhitespace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// skipWhitespace skips whitespace and comments
func (l *Lexer) skipWhitespace() error {
	for !l.atEnd() {
		switch {
		case isWhitespace(l.ch):
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for !l.atEnd() && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			start := l.pos
			l.readChar()
			l.readChar()
			for {
				if l.atEnd() {
					return lexError(l.input, start, "Unterminated block comment")
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
		default:
			return nil
		}
	}
	return nil
}

// readString reads a quoted string, resolving backslash escapes
func (l *Lexer) readString() (string, error) {
	quote := l.ch
	start := l.pos
	var result strings.Builder
	l.readChar() // skip opening quote

	for !l.atEnd() && l.ch != quote {
		if l.ch == '\\' {
			l.readChar()
			if l.atEnd() {
				break
			}
			switch l.ch {
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			case 'r':
				result.WriteByte('\r')
			default:
				result.WriteByte(l.ch)
			}
		} else {
			result.WriteByte(l.ch)
		}
		l.readChar()
	}

	if l.atEnd() {
		return "", lexError(l.input, start, "Unterminated string literal")
	}
	l.readChar() // skip closing quote
	return result.String(), nil
}

// readNumber reads an integer, decimal or exponent number literal
func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' {
		l.readChar()
		if !isDigit(l.ch) {
			return Token{}, lexError(l.input, l.pos, "Expected digit after decimal point")
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return Token{}, lexError(l.input, l.pos, "Malformed exponent, expected digit")
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return Token{Type: TokenNumber, Value: l.input[start:l.pos], Pos: start}, nil
}

// dateAhead reports whether the input at the current position has the
// YYYY-M shape that commits the lexer to a date literal.
func (l *Lexer) dateAhead() bool {
	p := l.pos
	if p+5 >= len(l.input) {
		return false
	}
	for i := 0; i < 4; i++ {
		if !isDigit(l.input[p+i]) {
			return false
		}
	}
	return l.input[p+4] == '-' && isDigit(l.input[p+5])
}

// readDate reads and validates a YYYY-MM-DD literal
func (l *Lexer) readDate() (Token, error) {
	start := l.pos
	for i := 0; i < 5; i++ { // YYYY-
		l.readChar()
	}

	monthPos := l.pos
	m1 := l.ch
	if m1 > '1' {
		return Token{}, lexError(l.input, l.pos, "Invalid month, first digit must be 0 or 1, got '%c'", m1)
	}
	l.readChar()
	if l.atEnd() || !isDigit(l.ch) {
		return Token{}, lexError(l.input, l.pos, "Expected second digit of month")
	}
	m2 := l.ch
	if m1 == '0' && m2 == '0' {
		return Token{}, lexError(l.input, monthPos, "Invalid month '00'")
	}
	if m1 == '1' && m2 > '2' {
		return Token{}, lexError(l.input, l.pos, "Invalid month '1%c', must be between 01 and 12", m2)
	}
	l.readChar()
	if l.atEnd() || l.ch != '-' {
		return Token{}, lexError(l.input, l.pos, "Expected '-' after month")
	}
	l.readChar()

	dayPos := l.pos
	if l.atEnd() || !isDigit(l.ch) {
		return Token{}, lexError(l.input, l.pos, "Expected first digit of day")
	}
	d1 := l.ch
	if d1 > '3' {
		return Token{}, lexError(l.input, l.pos, "Invalid day, first digit must be between 0 and 3, got '%c'", d1)
	}
	l.readChar()
	if l.atEnd() || !isDigit(l.ch) {
		return Token{}, lexError(l.input, l.pos, "Expected second digit of day")
	}
	d2 := l.ch
	if d1 == '0' && d2 == '0' {
		return Token{}, lexError(l.input, dayPos, "Invalid day '00'")
	}
	if d1 == '3' && d2 > '1' {
		return Token{}, lexError(l.input, l.pos, "Invalid day '3%c', must be between 01 and 31", d2)
	}
	l.readChar()
	if !l.atEnd() && isIdentChar(l.ch) {
		return Token{}, lexError(l.input, l.pos, "Unexpected character '%c' after date literal", l.ch)
	}

	value := l.input[start:l.pos]
	if _, err := time.Parse(dateLayout, value); err != nil {
		return Token{}, lexError(l.input, dayPos, "Day %c%c does not exist in month %c%c of %s", d1, d2, m1, m2, value[:4])
	}
	return Token{Type: TokenDate, Value: value, Pos: start}, nil
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for !l.atEnd() && isIdentChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// wordAhead reports whether word starts at offset and is not immediately
// followed by another identifier character
func (l *Lexer) wordAhead(offset int, word string) bool {
	if !strings.HasPrefix(l.input[offset:], word) {
		return false
	}
	end := offset + len(word)
	return end >= len(l.input) || !isIdentChar(l.input[end])
}

func (l *Lexer) single(t TokenType, value string) Token {
	tok := Token{Type: t, Value: value, Pos: l.pos}
	l.readChar()
	return tok
}

func (l *Lexer) double(t TokenType, value string) Token {
	tok := Token{Type: t, Value: value, Pos: l.pos}
	l.readChar()
	l.readChar()
	return tok
}

// NextToken returns the next token
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipWhitespace(); err != nil {
		return Token{}, err
	}
	if l.atEnd() {
		return Token{Type: TokenEOF, Pos: len(l.input)}, nil
	}

	switch l.ch {
	case '|':
		return l.single(TokenBar, "|"), nil
	case '(':
		return l.single(TokenLeftParen, "("), nil
	case ')':
		return l.single(TokenRightParen, ")"), nil
	case ',':
		return l.single(TokenComma, ","), nil
	case '+':
		return l.single(TokenPlus, "+"), nil
	case '-':
		return l.single(TokenMinus, "-"), nil
	case '*':
		return l.single(TokenTimes, "*"), nil
	case '/':
		return l.single(TokenDivide, "/"), nil
	case '=':
		if l.peekChar() == '=' {
			return l.double(TokenEqual, "=="), nil
		}
		return l.single(TokenAssign, "="), nil
	case '!':
		if l.peekChar() == '=' {
			return l.double(TokenNotEqual, "!="), nil
		}
		if l.wordAhead(l.pos+1, "contains") {
			tok := Token{Type: TokenNotContains, Value: "!contains", Pos: l.pos}
			for i := 0; i < len("!contains"); i++ {
				l.readChar()
			}
			return tok, nil
		}
		return l.single(TokenNot, "!"), nil
	case '<':
		if l.peekChar() == '=' {
			return l.double(TokenLessEqual, "<="), nil
		}
		return l.single(TokenLess, "<"), nil
	case '>':
		if l.peekChar() == '=' {
			return l.double(TokenGreaterEqual, ">="), nil
		}
		return l.single(TokenGreater, ">"), nil
	case '\'', '"':
		start := l.pos
		value, err := l.readString()
		if err != nil {
			return Token{}, err
		}
		return Token{Type: TokenString, Value: value, Pos: start}, nil
	}

	switch {
	case isDigit(l.ch):
		if l.dateAhead() {
			return l.readDate()
		}
		return l.readNumber()
	case isLetter(l.ch):
		start := l.pos
		value := l.readIdentifier()
		return Token{Type: identifierType(value), Value: value, Pos: start}, nil
	default:
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		return Token{}, lexError(l.input, l.pos, "Invalid character '%c'", r)
	}
}

// identifierType determines if an identifier is a keyword
func identifierType(ident string) TokenType {
	keywords := map[string]TokenType{
		"contains": TokenContains,
		"and":      TokenAnd,
		"or":       TokenOr,
		"null":     TokenNull,
		"true":     TokenTrue,
		"false":    TokenFalse,
	}

	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input, ending with a TokenEOF token.
// The first lexical error stops tokenizing.
func Tokenize(input string) ([]Token, error) {
	if err := ValidateQuery(input); err != nil {
		return nil, &Error{Kind: LexicalError, Message: err.Error(), Line: 1, Col: 1, Err: err}
	}

	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if err := ValidateTokens(tokens); err != nil {
			return nil, lexError(input, tok.Pos, "%v", err).wrap(err)
		}
		if tok.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}
