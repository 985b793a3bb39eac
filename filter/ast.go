// Package filter implements the row filter language of pq.
//
// Filter text is parsed into an untyped Expr, bound against a file schema
// into a TypedExpr and compiled into a Predicate the reader evaluates per
// row and per row group.
//
// Example usage:
//
//	expr, err := filter.Parse(`age >= 18 && name == "Meyer"`)
//	if err != nil {
//	    return err
//	}
//	typed, err := filter.Bind(expr, file.Schema())
//	if err != nil {
//	    return err
//	}
//	pred, err := filter.Compile(typed)
package filter

import (
	"sort"
	"strconv"
	"strings"
)

// Operator is a comparison operator
type Operator int

const (
	Eq Operator = iota
	NotEq
	Gt
	GtEq
	Lt
	LtEq
)

// String returns the operator as written in filter text.
func (o Operator) String() string {
	switch o {
	case Eq:
		return "=="
	case NotEq:
		return "!="
	case Gt:
		return ">"
	case GtEq:
		return ">="
	case Lt:
		return "<"
	case LtEq:
		return "<="
	default:
		return "?"
	}
}

// Ordering reports whether the operator needs ordered values.
func (o Operator) Ordering() bool {
	return o == Gt || o == GtEq || o == Lt || o == LtEq
}

// Logic joins two expressions
type Logic int

const (
	And Logic = iota
	Or
)

// String returns the logic operator as written in filter text.
func (l Logic) String() string {
	if l == Or {
		return "||"
	}
	return "&&"
}

// LiteralKind identifies the kind of a literal value
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralString
	LiteralInt
	LiteralFloat
	LiteralBool
)

// String returns the kind name used in error messages.
func (k LiteralKind) String() string {
	switch k {
	case LiteralNull:
		return "null"
	case LiteralString:
		return "string"
	case LiteralInt:
		return "integer"
	case LiteralFloat:
		return "decimal"
	case LiteralBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Literal is an untyped literal from filter text. Only the field matching
// Kind is meaningful.
type Literal struct {
	Kind  LiteralKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// Null returns the null literal.
func Null() Literal { return Literal{Kind: LiteralNull} }

// String returns a string literal.
func String(s string) Literal { return Literal{Kind: LiteralString, Str: s} }

// Int returns an integer literal.
func Int(v int64) Literal { return Literal{Kind: LiteralInt, Int: v} }

// Float returns a decimal literal.
func Float(v float64) Literal { return Literal{Kind: LiteralFloat, Float: v} }

// Bool returns a boolean literal.
func Bool(v bool) Literal { return Literal{Kind: LiteralBool, Bool: v} }

// String renders the literal in filter syntax.
func (l Literal) String() string {
	switch l.Kind {
	case LiteralString:
		return quote(l.Str)
	case LiteralInt:
		return strconv.FormatInt(l.Int, 10)
	case LiteralFloat:
		s := strconv.FormatFloat(l.Float, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case LiteralBool:
		return strconv.FormatBool(l.Bool)
	default:
		return "null"
	}
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Expr is a node of the untyped filter AST
type Expr interface {
	// Columns returns the referenced column paths, sorted and unique.
	Columns() []string
	// String renders the expression as filter text.
	String() string

	collect(set map[string]struct{})
}

// Condition compares a column with a literal
type Condition struct {
	Column   string
	Operator Operator
	Literal  Literal
}

// Expression joins two expressions with a logic operator
type Expression struct {
	Left  Expr
	Logic Logic
	Right Expr
}

// Not negates an expression
type Not struct {
	Inner Expr
}

// Empty is the expression of blank filter text; it matches every row.
type Empty struct{}

func (c Condition) collect(set map[string]struct{}) { set[c.Column] = struct{}{} }

func (e Expression) collect(set map[string]struct{}) {
	e.Left.collect(set)
	e.Right.collect(set)
}

func (n Not) collect(set map[string]struct{}) { n.Inner.collect(set) }

func (Empty) collect(map[string]struct{}) {}

func (c Condition) Columns() []string { return columnsOf(c) }

func (e Expression) Columns() []string { return columnsOf(e) }

func (n Not) Columns() []string { return columnsOf(n) }

func (Empty) Columns() []string { return nil }

func columnsOf(e Expr) []string {
	set := make(map[string]struct{})
	e.collect(set)
	columns := make([]string, 0, len(set))
	for c := range set {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}

func (c Condition) String() string {
	return c.Column + " " + c.Operator.String() + " " + c.Literal.String()
}

func (e Expression) String() string {
	return "(" + e.Left.String() + " " + e.Logic.String() + " " + e.Right.String() + ")"
}

func (n Not) String() string { return "!(" + n.Inner.String() + ")" }

func (Empty) String() string { return "" }

// TopLevelColumns returns the first path segment of every referenced
// column, sorted and unique. A read projection must include these fields
// for the filter columns to be materialized.
func TopLevelColumns(e Expr) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range e.Columns() {
		top, _, _ := strings.Cut(c, ".")
		if !seen[top] {
			seen[top] = true
			out = append(out, top)
		}
	}
	sort.Strings(out)
	return out
}
