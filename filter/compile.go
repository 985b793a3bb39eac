package filter

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/pq/schema"
)

// CompileError reports an operator the bound column type cannot support.
type CompileError struct {
	Column   string
	Operator Operator
	Type     schema.Type
	Msg      string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("filter column %s: operator %s %s", e.Column, e.Operator, e.Msg)
}

// Columns gives access to the leaf values of the row being filtered.
// Column returns every value of leaf column i in the row, including null
// placeholders for absent values.
type Columns interface {
	Column(i int) []parquet.Value
}

// ColumnStats summarizes one leaf column over a row group. Min and Max are
// null values when no bounds were recorded.
type ColumnStats struct {
	NumValues int64
	NullCount int64
	Min       parquet.Value
	Max       parquet.Value
}

func (s ColumnStats) allNull() bool { return s.NumValues > 0 && s.NullCount >= s.NumValues }

func (s ColumnStats) bounded() bool { return !s.Min.IsNull() && !s.Max.IsNull() }

// Statistics gives access to the column statistics of a row group. ok is
// false when the column has no statistics.
type Statistics interface {
	ColumnStats(column int) (stats ColumnStats, ok bool)
}

// Predicate is a compiled filter.
type Predicate interface {
	// Keep reports whether the row matches.
	Keep(row Columns) bool
	// Drop reports whether no row of a row group can match.
	Drop(stats Statistics) bool
}

type unfiltered struct{}

func (unfiltered) Keep(Columns) bool { return true }

func (unfiltered) Drop(Statistics) bool { return false }

func (unfiltered) String() string { return "unfiltered" }

// Unfiltered is the predicate of an empty filter. Readers compare against
// it to skip per-row evaluation and answer counts from file metadata.
var Unfiltered Predicate = unfiltered{}

// IsUnfiltered reports whether p filters nothing.
func IsUnfiltered(p Predicate) bool { return p == nil || p == Unfiltered }

// Compile lowers a typed expression into a predicate.
func Compile(expr TypedExpr) (Predicate, error) {
	switch e := expr.(type) {
	case nil, NoFilter:
		return Unfiltered, nil
	case TypedCondition:
		return compileCondition(e)
	case TypedExpression:
		left, err := Compile(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := Compile(e.Right)
		if err != nil {
			return nil, err
		}
		if e.Logic == Or {
			return orPredicate{left: left, right: right}, nil
		}
		return andPredicate{left: left, right: right}, nil
	case TypedNot:
		inner, err := Compile(e.Inner)
		if err != nil {
			return nil, err
		}
		return notPredicate{inner: inner}, nil
	default:
		return nil, fmt.Errorf("unknown typed expression %T", expr)
	}
}

func compileCondition(c TypedCondition) (Predicate, error) {
	typ := c.Field.Type
	if c.Operator.Ordering() {
		if c.Null {
			return nil, &CompileError{Column: c.Column, Operator: c.Operator, Type: typ, Msg: "not supported for null"}
		}
		if !typ.Ordered() {
			return nil, &CompileError{Column: c.Column, Operator: c.Operator, Type: typ, Msg: fmt.Sprintf("not supported for %s", typ)}
		}
	}
	return leafPredicate{
		column: c.Field.Column(),
		typ:    typ,
		op:     c.Operator,
		value:  c.Value,
		null:   c.Null,
	}, nil
}

type leafPredicate struct {
	column int
	typ    schema.Type
	op     Operator
	value  parquet.Value
	null   bool
}

// Keep matches when any value of a repeated column matches.
func (p leafPredicate) Keep(row Columns) bool {
	for _, v := range row.Column(p.column) {
		if p.match(v) {
			return true
		}
	}
	return false
}

func (p leafPredicate) match(v parquet.Value) bool {
	if p.null {
		if p.op == Eq {
			return v.IsNull()
		}
		return !v.IsNull()
	}
	if v.IsNull() {
		return p.op == NotEq
	}
	c := compare(p.typ, v, p.value)
	switch p.op {
	case Eq:
		return c == 0
	case NotEq:
		return c != 0
	case Lt:
		return c == -1
	case LtEq:
		return c == -1 || c == 0
	case Gt:
		return c == 1
	case GtEq:
		return c == 1 || c == 0
	default:
		return false
	}
}

func (p leafPredicate) Drop(stats Statistics) bool {
	s, ok := stats.ColumnStats(p.column)
	if !ok {
		return false
	}
	if p.null {
		if p.op == Eq {
			return s.NullCount == 0
		}
		return s.allNull()
	}
	if s.allNull() {
		return p.op != NotEq
	}
	if !s.bounded() {
		return false
	}
	minCmp := compare(p.typ, s.Min, p.value)
	maxCmp := compare(p.typ, s.Max, p.value)
	switch p.op {
	case Eq:
		return minCmp == 1 || maxCmp == -1
	case NotEq:
		// binary bounds may be truncated prefixes, never exact
		if p.typ == schema.ByteArray || p.typ == schema.FixedLenByteArray {
			return false
		}
		return s.NullCount == 0 && minCmp == 0 && maxCmp == 0
	case Lt:
		return minCmp == 1 || minCmp == 0
	case LtEq:
		return minCmp == 1
	case Gt:
		return maxCmp == -1 || maxCmp == 0
	case GtEq:
		return maxCmp == -1
	default:
		return false
	}
}

type andPredicate struct{ left, right Predicate }

func (p andPredicate) Keep(row Columns) bool {
	left := p.left.Keep(row)
	right := p.right.Keep(row)
	return left && right
}

func (p andPredicate) Drop(stats Statistics) bool {
	return p.left.Drop(stats) || p.right.Drop(stats)
}

type orPredicate struct{ left, right Predicate }

func (p orPredicate) Keep(row Columns) bool {
	left := p.left.Keep(row)
	right := p.right.Keep(row)
	return left || right
}

func (p orPredicate) Drop(stats Statistics) bool {
	return p.left.Drop(stats) && p.right.Drop(stats)
}

type notPredicate struct{ inner Predicate }

func (p notPredicate) Keep(row Columns) bool { return !p.inner.Keep(row) }

// Drop never prunes: statistics prove absence, not presence.
func (p notPredicate) Drop(Statistics) bool { return false }

// compare orders a against b for the given physical type. It returns -1, 0
// or 1, and 2 when floating point values are unordered.
func compare(typ schema.Type, a, b parquet.Value) int {
	switch typ {
	case schema.Boolean:
		x, y := a.Boolean(), b.Boolean()
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case schema.Int32:
		return compareOrdered(a.Int32(), b.Int32())
	case schema.Int64:
		return compareOrdered(a.Int64(), b.Int64())
	case schema.Float:
		return compareOrdered(a.Float(), b.Float())
	case schema.Double:
		return compareOrdered(a.Double(), b.Double())
	default:
		return bytes.Compare(a.ByteArray(), b.ByteArray())
	}
}

func compareOrdered[T int32 | int64 | float32 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	case x == y:
		return 0
	default:
		return 2
	}
}

// New parses text, binds it to s and compiles it.
func New(text string, s *schema.Schema) (Predicate, error) {
	expr, err := Parse(text)
	if err != nil {
		return nil, err
	}
	typed, err := Bind(expr, s)
	if err != nil {
		return nil, err
	}
	return Compile(typed)
}
