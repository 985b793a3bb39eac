package schema

import "fmt"

// Type is the physical type of a leaf column. Groups have no physical type
// and report the zero value.
type Type int8

const (
	Boolean Type = iota + 1
	Int32
	Int64
	Int96
	Float
	Double
	ByteArray
	FixedLenByteArray
)

// String returns the type name as written in a parquet message definition.
func (t Type) String() string {
	switch t {
	case Boolean:
		return "boolean"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Int96:
		return "int96"
	case Float:
		return "float"
	case Double:
		return "double"
	case ByteArray:
		return "binary"
	case FixedLenByteArray:
		return "fixed_len_byte_array"
	case 0:
		return "group"
	default:
		return fmt.Sprintf("type(%d)", int8(t))
	}
}

// Ordered reports whether values of the type support ordering comparisons.
func (t Type) Ordered() bool {
	switch t {
	case Int32, Int64, Float, Double:
		return true
	default:
		return false
	}
}

// Repetition is the per-field cardinality.
type Repetition int8

const (
	Required Repetition = iota
	Optional
	Repeated
)

// String returns the repetition keyword.
func (r Repetition) String() string {
	switch r {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	default:
		return fmt.Sprintf("repetition(%d)", int8(r))
	}
}

// Logical classifies the logical annotation of a field. Only the
// annotations the tool interprets get their own constant; everything else
// is LogicalOther and keeps its text in Field.Annotation.
type Logical int8

const (
	LogicalNone Logical = iota
	LogicalString
	LogicalList
	LogicalMap
	LogicalOther
)

// String returns a readable name for the logical classification.
func (l Logical) String() string {
	switch l {
	case LogicalNone:
		return ""
	case LogicalString:
		return "STRING"
	case LogicalList:
		return "LIST"
	case LogicalMap:
		return "MAP"
	default:
		return "OTHER"
	}
}
