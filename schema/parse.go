package schema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokNumber
	tokPunct
	tokError
)

type token struct {
	kind  tokenKind
	value string
	line  int
}

// messageLexer tokenizes parquet message definitions
type messageLexer struct {
	input string
	pos   int
	ch    rune
	line  int
}

func newMessageLexer(input string) *messageLexer {
	l := &messageLexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *messageLexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = rune(l.input[l.pos])
	}
	l.pos++
}

func (l *messageLexer) skipWhitespace() {
	for {
		switch l.ch {
		case '\n':
			l.line++
			l.readChar()
		case ' ', '\t', '\r':
			l.readChar()
		case '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *messageLexer) next() token {
	l.skipWhitespace()
	line := l.line
	switch {
	case l.ch == 0:
		return token{kind: tokEOF, line: line}
	case strings.ContainsRune("{}();,=", l.ch):
		ch := l.ch
		l.readChar()
		return token{kind: tokPunct, value: string(ch), line: line}
	case unicode.IsDigit(l.ch) || l.ch == '-':
		var b strings.Builder
		for unicode.IsDigit(l.ch) || l.ch == '-' {
			b.WriteRune(l.ch)
			l.readChar()
		}
		return token{kind: tokNumber, value: b.String(), line: line}
	case unicode.IsLetter(l.ch) || l.ch == '_':
		var b strings.Builder
		for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' || l.ch == '.' || l.ch == '-' {
			b.WriteRune(l.ch)
			l.readChar()
		}
		return token{kind: tokWord, value: b.String(), line: line}
	default:
		ch := l.ch
		l.readChar()
		return token{kind: tokError, value: string(ch), line: line}
	}
}

// messageParser parses the text produced by Schema.String
type messageParser struct {
	tokens []token
	pos    int
}

// Parse reads a parquet message definition such as
//
//	message example {
//	  required int64 id;
//	  optional binary name (STRING);
//	  optional group tags (LIST) {
//	    repeated group list {
//	      optional binary element (STRING);
//	    }
//	  }
//	}
func Parse(text string) (*Schema, error) {
	lexer := newMessageLexer(text)
	var tokens []token
	for {
		tok := lexer.next()
		if tok.kind == tokError {
			return nil, fmt.Errorf("schema: line %d: unexpected character %q", tok.line, tok.value)
		}
		tokens = append(tokens, tok)
		if tok.kind == tokEOF {
			break
		}
	}
	p := &messageParser{tokens: tokens}
	return p.parseMessage()
}

func (p *messageParser) current() token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *messageParser) advance() { p.pos++ }

func (p *messageParser) errorf(format string, args ...any) error {
	return fmt.Errorf("schema: line %d: %s", p.current().line, fmt.Sprintf(format, args...))
}

func (p *messageParser) expect(value string) error {
	if p.current().value != value || p.current().kind == tokEOF {
		return p.errorf("expected %q, got %q", value, p.current().value)
	}
	p.advance()
	return nil
}

func (p *messageParser) word() (string, error) {
	tok := p.current()
	if tok.kind != tokWord {
		return "", p.errorf("expected a name, got %q", tok.value)
	}
	p.advance()
	return tok.value, nil
}

func (p *messageParser) parseMessage() (*Schema, error) {
	if err := p.expect("message"); err != nil {
		return nil, err
	}
	name, err := p.word()
	if err != nil {
		return nil, err
	}
	fields, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if p.current().value == ";" {
		p.advance()
	}
	if p.current().kind != tokEOF {
		return nil, p.errorf("unexpected %q after message", p.current().value)
	}
	return New(name, fields...), nil
}

func (p *messageParser) parseBody() ([]*Field, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var fields []*Field
	seen := map[string]bool{}
	for p.current().value != "}" {
		if p.current().kind == tokEOF {
			return nil, p.errorf("unexpected end of schema")
		}
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, p.errorf("duplicate field %s", f.Name)
		}
		seen[f.Name] = true
		fields = append(fields, f)
	}
	p.advance()
	return fields, nil
}

func (p *messageParser) parseField() (*Field, error) {
	keyword, err := p.word()
	if err != nil {
		return nil, err
	}
	f := &Field{}
	switch strings.ToLower(keyword) {
	case "required":
		f.Repetition = Required
	case "optional":
		f.Repetition = Optional
	case "repeated":
		f.Repetition = Repeated
	default:
		return nil, p.errorf("expected repetition, got %q", keyword)
	}

	typ, err := p.word()
	if err != nil {
		return nil, err
	}
	group := strings.EqualFold(typ, "group")
	if !group {
		if err := p.parseType(f, typ); err != nil {
			return nil, err
		}
	}

	if f.Name, err = p.word(); err != nil {
		return nil, err
	}
	if p.current().value == "(" {
		p.advance()
		if err := p.parseAnnotation(f); err != nil {
			return nil, err
		}
	}
	if p.current().value == "=" {
		// field ids are accepted and ignored
		p.advance()
		if p.current().kind != tokNumber {
			return nil, p.errorf("expected field id, got %q", p.current().value)
		}
		p.advance()
	}

	if group {
		if f.Fields, err = p.parseBody(); err != nil {
			return nil, err
		}
		if p.current().value == ";" {
			p.advance()
		}
		if f.Logical == LogicalString {
			return nil, p.errorf("group %s cannot be annotated %s", f.Name, f.Annotation)
		}
		return f, nil
	}
	if f.Logical == LogicalList || f.Logical == LogicalMap {
		return nil, p.errorf("primitive %s cannot be annotated %s", f.Name, f.Annotation)
	}
	return f, p.expect(";")
}

func (p *messageParser) parseType(f *Field, name string) error {
	switch strings.ToLower(name) {
	case "boolean":
		f.Type = Boolean
	case "int32":
		f.Type = Int32
	case "int64":
		f.Type = Int64
	case "int96":
		f.Type = Int96
	case "float":
		f.Type = Float
	case "double":
		f.Type = Double
	case "binary":
		f.Type = ByteArray
	case "fixed_len_byte_array":
		f.Type = FixedLenByteArray
		if err := p.expect("("); err != nil {
			return err
		}
		n, err := strconv.Atoi(p.current().value)
		if err != nil || n <= 0 {
			return p.errorf("invalid fixed length %q", p.current().value)
		}
		p.advance()
		f.Length = n
		return p.expect(")")
	default:
		return p.errorf("unknown type %q", name)
	}
	return nil
}

// parseAnnotation reads the text between the parentheses following a field
// name, nested argument lists included, e.g. TIMESTAMP(MILLIS,true).
func (p *messageParser) parseAnnotation(f *Field) error {
	var b strings.Builder
	depth := 0
	for {
		tok := p.current()
		switch {
		case tok.kind == tokEOF:
			return p.errorf("unterminated annotation")
		case tok.value == "(":
			depth++
		case tok.value == ")":
			if depth == 0 {
				p.advance()
				f.Annotation = b.String()
				f.Logical = classify(f.Annotation)
				return nil
			}
			depth--
		}
		b.WriteString(tok.value)
		p.advance()
	}
}

func classify(annotation string) Logical {
	switch strings.ToUpper(annotation) {
	case "":
		return LogicalNone
	case "STRING", "UTF8":
		return LogicalString
	case "LIST":
		return LogicalList
	case "MAP", "MAP_KEY_VALUE":
		return LogicalMap
	default:
		return LogicalOther
	}
}
