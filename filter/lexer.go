package filter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenString
	TokenInt
	TokenFloat
	TokenTrue
	TokenFalse
	TokenNull

	TokenEq    // ==
	TokenNotEq // !=
	TokenGt    // >
	TokenGtEq  // >=
	TokenLt    // <
	TokenLtEq  // <=

	TokenAnd    // &&
	TokenOr     // ||
	TokenNot    // !
	TokenLParen // (
	TokenRParen // )

	TokenError
)

// Token represents a lexical token. Pos is the byte offset of the token in
// the filter text.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Lexer tokenizes filter text
type Lexer struct {
	input string
	pos   int // offset of the next character
	start int // offset of ch
	ch    rune
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	l.start = l.pos
	if l.pos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.ch = r
	l.pos += size
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func (l *Lexer) atEOF() bool { return l.start >= len(l.input) }

func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// pair returns a two-character token when the next character is second,
// otherwise the single-character token.
func (l *Lexer) pair(second rune, double, single TokenType, pos int) Token {
	first := l.ch
	if l.peekChar() == second {
		l.readChar()
		l.readChar()
		return Token{Type: double, Value: string([]rune{first, second}), Pos: pos}
	}
	l.readChar()
	return Token{Type: single, Value: string(first), Pos: pos}
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	pos := l.start

	if l.atEOF() {
		return Token{Type: TokenEOF, Pos: len(l.input)}
	}

	switch l.ch {
	case '=':
		if l.peekChar() != '=' {
			return l.errorToken(pos, "expected '=='")
		}
		return l.pair('=', TokenEq, TokenError, pos)
	case '!':
		return l.pair('=', TokenNotEq, TokenNot, pos)
	case '<':
		return l.pair('=', TokenLtEq, TokenLt, pos)
	case '>':
		return l.pair('=', TokenGtEq, TokenGt, pos)
	case '&':
		if l.peekChar() != '&' {
			return l.errorToken(pos, "expected '&&'")
		}
		return l.pair('&', TokenAnd, TokenError, pos)
	case '|':
		if l.peekChar() != '|' {
			return l.errorToken(pos, "expected '||'")
		}
		return l.pair('|', TokenOr, TokenError, pos)
	case '(':
		l.readChar()
		return Token{Type: TokenLParen, Value: "(", Pos: pos}
	case ')':
		l.readChar()
		return Token{Type: TokenRParen, Value: ")", Pos: pos}
	case '"':
		return l.readString(pos)
	}

	switch {
	case unicode.IsDigit(l.ch) || l.ch == '-':
		return l.readNumber(pos)
	case unicode.IsLetter(l.ch):
		value := l.readIdentifier()
		return Token{Type: identifierType(value), Value: value, Pos: pos}
	default:
		return l.errorToken(pos, fmt.Sprintf("unexpected character %q", l.ch))
	}
}

func (l *Lexer) errorToken(pos int, msg string) Token {
	return Token{Type: TokenError, Value: msg, Pos: pos}
}

// readString reads a double-quoted string with JSON-style escapes
func (l *Lexer) readString(pos int) Token {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != '"' {
		if l.atEOF() {
			return l.errorToken(pos, "unterminated string")
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case '\\', '/', '"':
				result.WriteRune(l.ch)
			case 'b':
				result.WriteByte('\b')
			case 'f':
				result.WriteByte('\f')
			case 'n':
				result.WriteByte('\n')
			case 'r':
				result.WriteByte('\r')
			case 't':
				result.WriteByte('\t')
			default:
				if l.atEOF() {
					return l.errorToken(pos, "unterminated string")
				}
				return l.errorToken(l.start, fmt.Sprintf("invalid escape %q", l.ch))
			}
		} else {
			result.WriteRune(l.ch)
		}
		l.readChar()
	}
	l.readChar() // skip closing quote

	return Token{Type: TokenString, Value: result.String(), Pos: pos}
}

// readNumber reads an integer or decimal with an optional leading minus
func (l *Lexer) readNumber(pos int) Token {
	var result strings.Builder
	if l.ch == '-' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	if !unicode.IsDigit(l.ch) {
		return l.errorToken(pos, "expected digit")
	}
	for unicode.IsDigit(l.ch) {
		result.WriteRune(l.ch)
		l.readChar()
	}
	typ := TokenInt
	if l.ch == '.' {
		typ = TokenFloat
		result.WriteRune(l.ch)
		l.readChar()
		for unicode.IsDigit(l.ch) {
			result.WriteRune(l.ch)
			l.readChar()
		}
	}
	return Token{Type: typ, Value: result.String(), Pos: pos}
}

// readIdentifier reads a column path; dots address nested fields
func (l *Lexer) readIdentifier() string {
	var result strings.Builder
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' || l.ch == '.' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

func identifierType(ident string) TokenType {
	switch ident {
	case "true":
		return TokenTrue
	case "false":
		return TokenFalse
	case "null":
		return TokenNull
	default:
		return TokenIdent
	}
}

// Tokenize returns all tokens of the input. The last token is either EOF
// or an error.
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}

	return tokens
}

func parseNumber(tok Token) (Literal, error) {
	if tok.Type == TokenFloat {
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return Literal{}, err
		}
		return Float(v), nil
	}
	v, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		return Literal{}, err
	}
	return Int(v), nil
}
