package filter

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/pq/schema"
)

// BindError reports a filter that does not fit the schema: an unknown
// column path or a literal of the wrong kind for the column type.
type BindError struct {
	Column string
	Msg    string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("filter column %s: %s", e.Column, e.Msg)
}

// TypedExpr is an Expr whose conditions are resolved against a schema
type TypedExpr interface {
	String() string

	typed()
}

// TypedCondition is a Condition bound to a primitive leaf. Value holds the
// literal converted to the leaf's physical type; it is the null value when
// Null is set.
type TypedCondition struct {
	Column   string
	Field    *schema.Field
	Operator Operator
	Value    parquet.Value
	Null     bool
	Literal  Literal
}

// TypedExpression joins two typed expressions
type TypedExpression struct {
	Left  TypedExpr
	Logic Logic
	Right TypedExpr
}

// TypedNot negates a typed expression
type TypedNot struct {
	Inner TypedExpr
}

// NoFilter is the binding of Empty
type NoFilter struct{}

func (TypedCondition) typed() {}

func (TypedExpression) typed() {}

func (TypedNot) typed() {}

func (NoFilter) typed() {}

func (c TypedCondition) String() string {
	return c.Column + " " + c.Operator.String() + " " + c.Literal.String()
}

func (e TypedExpression) String() string {
	return "(" + e.Left.String() + " " + e.Logic.String() + " " + e.Right.String() + ")"
}

func (n TypedNot) String() string { return "!(" + n.Inner.String() + ")" }

func (NoFilter) String() string { return "" }

// Bind resolves every condition of expr against s.
func Bind(expr Expr, s *schema.Schema) (TypedExpr, error) {
	switch e := expr.(type) {
	case nil, Empty:
		return NoFilter{}, nil
	case Condition:
		return bindCondition(e, s)
	case Expression:
		left, err := Bind(e.Left, s)
		if err != nil {
			return nil, err
		}
		right, err := Bind(e.Right, s)
		if err != nil {
			return nil, err
		}
		return TypedExpression{Left: left, Logic: e.Logic, Right: right}, nil
	case Not:
		inner, err := Bind(e.Inner, s)
		if err != nil {
			return nil, err
		}
		return TypedNot{Inner: inner}, nil
	default:
		return nil, fmt.Errorf("unknown expression type %T", expr)
	}
}

func bindCondition(c Condition, s *schema.Schema) (TypedExpr, error) {
	field, ok := s.Lookup(c.Column)
	if !ok || !field.Leaf() || strings.HasSuffix(c.Column, ".") {
		return nil, &BindError{Column: c.Column, Msg: "field not exists"}
	}
	if field.Type == schema.Int96 {
		return nil, &BindError{Column: c.Column, Msg: "int96 columns cannot be filtered"}
	}

	typed := TypedCondition{Column: c.Column, Field: field, Operator: c.Operator, Literal: c.Literal}
	if c.Literal.Kind == LiteralNull {
		typed.Null = true
		typed.Value = parquet.NullValue()
		return typed, nil
	}

	value, err := convert(field, c.Literal)
	if err != nil {
		return nil, &BindError{Column: c.Column, Msg: err.Error()}
	}
	typed.Value = value
	return typed, nil
}

// convert turns a literal into a value of the field's physical type.
func convert(f *schema.Field, l Literal) (parquet.Value, error) {
	mismatch := func() (parquet.Value, error) {
		return parquet.Value{}, fmt.Errorf("cannot compare %s column with %s %s", f.Type, l.Kind, l)
	}
	switch f.Type {
	case schema.Boolean:
		if l.Kind != LiteralBool {
			return mismatch()
		}
		return parquet.BooleanValue(l.Bool), nil
	case schema.Int32:
		if l.Kind != LiteralInt {
			return mismatch()
		}
		return parquet.Int32Value(int32(l.Int)), nil
	case schema.Int64:
		if l.Kind != LiteralInt {
			return mismatch()
		}
		return parquet.Int64Value(l.Int), nil
	case schema.Float:
		if l.Kind != LiteralFloat {
			return mismatch()
		}
		return parquet.FloatValue(float32(l.Float)), nil
	case schema.Double:
		if l.Kind != LiteralFloat {
			return mismatch()
		}
		return parquet.DoubleValue(l.Float), nil
	case schema.ByteArray:
		if l.Kind != LiteralString {
			return mismatch()
		}
		return parquet.ByteArrayValue([]byte(l.Str)), nil
	case schema.FixedLenByteArray:
		if l.Kind != LiteralString {
			return mismatch()
		}
		if len(l.Str) != f.Length {
			return parquet.Value{}, fmt.Errorf("literal %s has %d bytes, column holds %d", l, len(l.Str), f.Length)
		}
		return parquet.FixedLenByteArrayValue([]byte(l.Str)), nil
	default:
		return mismatch()
	}
}
