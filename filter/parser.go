package filter

import (
	"fmt"
	"strings"
)

// ParseError reports malformed filter text. Remainder is the unconsumed
// input starting at Pos.
type ParseError struct {
	Pos       int
	Remainder string
	Msg       string
}

func (e *ParseError) Error() string {
	if e.Remainder == "" {
		return fmt.Sprintf("invalid filter: %s at end of input", e.Msg)
	}
	return fmt.Sprintf("invalid filter: %s at position %d: %q", e.Msg, e.Pos, e.Remainder)
}

// Parser parses filter tokens into an Expr
type Parser struct {
	input  string
	tokens []Token
	pos    int
	depth  int
}

// Parse parses filter text. Blank text yields Empty.
//
// Logic operators have no precedence and chain strictly left to right, so
// "a && b || c" is ((a && b) || c) and "a || b && c" is ((a || b) && c).
func Parse(text string) (Expr, error) {
	if strings.TrimSpace(text) == "" {
		return Empty{}, nil
	}
	if len(text) > MaxFilterLength {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFilterTooLong, len(text), MaxFilterLength)
	}

	p := &Parser{input: text, tokens: Tokenize(text)}
	if last := p.tokens[len(p.tokens)-1]; last.Type == TokenError {
		return nil, p.errorAt(last.Pos, last.Value)
	}

	expr, err := p.parseStart()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, p.errorf("unexpected %q", p.current().Value)
	}
	return expr, nil
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(typ TokenType, what string) error {
	if p.current().Type != typ {
		return p.errorf("expected %s", what)
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return p.errorAt(p.current().Pos, fmt.Sprintf(format, args...))
}

func (p *Parser) errorAt(pos int, msg string) error {
	if pos > len(p.input) {
		pos = len(p.input)
	}
	return &ParseError{Pos: pos, Remainder: p.input[pos:], Msg: msg}
}

// parseStart parses: expr (logic expr)*
func (p *Parser) parseStart() (Expr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxExpressionDepth {
		return nil, p.errorf("%v: %d (max %d)", ErrExpressionTooDeep, p.depth, MaxExpressionDepth)
	}

	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	for {
		var logic Logic
		switch p.current().Type {
		case TokenAnd:
			logic = And
		case TokenOr:
			logic = Or
		default:
			return left, nil
		}
		p.advance()

		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		left = Expression{Left: left, Logic: logic, Right: right}
	}
}

// parseExpr parses: notExpr | parenExpr | singleExpr | boolExpr
func (p *Parser) parseExpr() (Expr, error) {
	switch p.current().Type {
	case TokenNot:
		switch p.peek().Type {
		case TokenLParen:
			p.advance()
			inner, err := p.parseParen()
			if err != nil {
				return nil, err
			}
			return Not{Inner: inner}, nil
		case TokenIdent:
			p.advance()
			column := p.current().Value
			p.advance()
			return Not{Inner: Condition{Column: column, Operator: Eq, Literal: Bool(true)}}, nil
		default:
			p.advance()
			return nil, p.errorf("expected identifier or '(' after '!'")
		}
	case TokenLParen:
		return p.parseParen()
	case TokenIdent:
		return p.parseCondition()
	case TokenEOF:
		return nil, p.errorf("expected expression")
	default:
		return nil, p.errorf("expected expression, got %q", p.current().Value)
	}
}

// parseParen parses: '(' start ')'
func (p *Parser) parseParen() (Expr, error) {
	if err := p.expect(TokenLParen, "'('"); err != nil {
		return nil, err
	}
	inner, err := p.parseStart()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen, "')'"); err != nil {
		return nil, err
	}
	return inner, nil
}

// parseCondition parses: identifier [operator value]
func (p *Parser) parseCondition() (Expr, error) {
	column := p.current().Value
	p.advance()

	var op Operator
	switch p.current().Type {
	case TokenEq:
		op = Eq
	case TokenNotEq:
		op = NotEq
	case TokenGt:
		op = Gt
	case TokenGtEq:
		op = GtEq
	case TokenLt:
		op = Lt
	case TokenLtEq:
		op = LtEq
	default:
		// bare identifier: column == true
		return Condition{Column: column, Operator: Eq, Literal: Bool(true)}, nil
	}
	p.advance()

	literal, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return Condition{Column: column, Operator: op, Literal: literal}, nil
}

// parseValue parses: string | decimal | boolean | integer | null
func (p *Parser) parseValue() (Literal, error) {
	tok := p.current()
	var literal Literal
	switch tok.Type {
	case TokenString:
		literal = String(tok.Value)
	case TokenInt, TokenFloat:
		v, err := parseNumber(tok)
		if err != nil {
			return Literal{}, p.errorf("invalid number %s", tok.Value)
		}
		literal = v
	case TokenTrue:
		literal = Bool(true)
	case TokenFalse:
		literal = Bool(false)
	case TokenNull:
		literal = Null()
	default:
		return Literal{}, p.errorf("expected value")
	}
	p.advance()
	return literal, nil
}
