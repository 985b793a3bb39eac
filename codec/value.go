// Package codec converts between Parquet rows and a dynamic value tree.
//
// The Assembler builds one Value per row from the group-open, leaf-value
// and group-close events a reader produces while walking a schema. Write
// walks a Value against a schema and emits the symmetric start-field,
// add-scalar and end-field calls on a RecordConsumer.
package codec

import (
	"bytes"
	"fmt"
	"math"
)

// Kind identifies the variant held by a Value
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int32
	Int64
	Float
	Double
	String
	Bytes
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a node of the dynamic value tree. The zero Value is Null.
type Value struct {
	kind  Kind
	num   uint64
	str   string
	bytes []byte
	array []Value
	obj   *Fields
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	v := Value{kind: Bool}
	if b {
		v.num = 1
	}
	return v
}

// Int32Value returns a 32-bit integer value.
func Int32Value(i int32) Value { return Value{kind: Int32, num: uint64(int64(i))} }

// Int64Value returns a 64-bit integer value.
func Int64Value(i int64) Value { return Value{kind: Int64, num: uint64(i)} }

// FloatValue returns a 32-bit floating point value.
func FloatValue(f float32) Value { return Value{kind: Float, num: uint64(math.Float32bits(f))} }

// DoubleValue returns a 64-bit floating point value.
func DoubleValue(f float64) Value { return Value{kind: Double, num: math.Float64bits(f)} }

// StringValue returns a UTF-8 string value.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// BytesValue returns a binary value. The slice is retained.
func BytesValue(b []byte) Value { return Value{kind: Bytes, bytes: b} }

// ArrayValue returns an array value. A nil slice is an empty array.
func ArrayValue(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Array, array: items}
}

// ObjectValue returns an object value.
func ObjectValue(f *Fields) Value {
	if f == nil {
		f = NewFields()
	}
	return Value{kind: Object, obj: f}
}

// Kind returns the variant of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean held by the value.
func (v Value) Bool() bool { return v.num != 0 }

// Int32 returns the 32-bit integer held by the value.
func (v Value) Int32() int32 { return int32(v.num) }

// Int64 returns the 64-bit integer held by the value.
func (v Value) Int64() int64 { return int64(v.num) }

// Float returns the 32-bit float held by the value.
func (v Value) Float() float32 { return math.Float32frombits(uint32(v.num)) }

// Double returns the 64-bit float held by the value.
func (v Value) Double() float64 { return math.Float64frombits(v.num) }

// Text returns the string held by the value.
func (v Value) Text() string { return v.str }

// Bytes returns the binary held by the value.
func (v Value) Bytes() []byte { return v.bytes }

// Array returns the items of an array value.
func (v Value) Array() []Value { return v.array }

// Object returns the fields of an object value, or nil.
func (v Value) Object() *Fields { return v.obj }

// String renders the value as JSON.
func (v Value) String() string { return string(AppendJSON(nil, v)) }

// Equal reports whether two values hold the same variant and content.
// Floating point values compare by bits so NaN equals itself.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool, Int32, Int64, Float, Double:
		return a.num == b.num
	case String:
		return a.str == b.str
	case Bytes:
		return bytes.Equal(a.bytes, b.bytes)
	case Array:
		if len(a.array) != len(b.array) {
			return false
		}
		for i := range a.array {
			if !Equal(a.array[i], b.array[i]) {
				return false
			}
		}
		return true
	case Object:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for i := 0; i < a.obj.Len(); i++ {
			an, av := a.obj.At(i)
			bn, bv := b.obj.At(i)
			if an != bn || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Fields is the ordered content of an object value.
type Fields struct {
	names  []string
	values []Value
}

// NewFields returns an empty field list.
func NewFields() *Fields { return &Fields{} }

// newFieldsShared returns a field list whose names slice is shared with
// other objects of the same schema group. Set copies it before growing.
func newFieldsShared(names []string) *Fields {
	return &Fields{names: names[:len(names):len(names)], values: make([]Value, len(names))}
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.names)
}

// At returns the i-th field.
func (f *Fields) At(i int) (string, Value) { return f.names[i], f.values[i] }

// Names returns the field names in order.
func (f *Fields) Names() []string { return f.names }

// Get returns the value of the named field.
func (f *Fields) Get(name string) (Value, bool) {
	if f == nil {
		return Value{}, false
	}
	for i, n := range f.names {
		if n == name {
			return f.values[i], true
		}
	}
	return Value{}, false
}

// Set replaces the named field or appends it.
func (f *Fields) Set(name string, v Value) *Fields {
	for i, n := range f.names {
		if n == name {
			f.values[i] = v
			return f
		}
	}
	f.names = append(f.names, name)
	f.values = append(f.values, v)
	return f
}
