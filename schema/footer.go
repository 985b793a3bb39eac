package schema

import (
	"fmt"

	"github.com/parquet-go/parquet-go/deprecated"
	"github.com/parquet-go/parquet-go/format"
)

// FromMetadata rebuilds the schema tree from the flattened schema elements
// stored in a file footer. The first element is the root.
func FromMetadata(elements []format.SchemaElement) (*Schema, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("empty schema")
	}
	pos := 1
	fields, err := readElements(elements, &pos, numChildren(&elements[0]))
	if err != nil {
		return nil, err
	}
	if pos != len(elements) {
		return nil, fmt.Errorf("schema has %d trailing elements", len(elements)-pos)
	}
	return New(elements[0].Name, fields...), nil
}

func readElements(elements []format.SchemaElement, pos *int, n int) ([]*Field, error) {
	fields := make([]*Field, 0, n)
	for i := 0; i < n; i++ {
		if *pos >= len(elements) {
			return nil, fmt.Errorf("schema element %d out of range", *pos)
		}
		e := &elements[*pos]
		*pos++

		f := &Field{Name: e.Name, Repetition: repetitionOf(e.RepetitionType)}
		if e.Type == nil {
			children, err := readElements(elements, pos, numChildren(e))
			if err != nil {
				return nil, err
			}
			f.Fields = children
		} else {
			typ, err := typeOf(*e.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", e.Name, err)
			}
			f.Type = typ
			if e.TypeLength != nil {
				f.Length = int(*e.TypeLength)
			}
		}
		f.Logical, f.Annotation = logicalOf(e)
		fields = append(fields, f)
	}
	return fields, nil
}

// numChildren is nil on leaf elements.
func numChildren(e *format.SchemaElement) int {
	if e.NumChildren == nil {
		return 0
	}
	return int(*e.NumChildren)
}

func repetitionOf(r *format.FieldRepetitionType) Repetition {
	if r == nil {
		return Required
	}
	switch *r {
	case format.Optional:
		return Optional
	case format.Repeated:
		return Repeated
	default:
		return Required
	}
}

func typeOf(t format.Type) (Type, error) {
	switch t {
	case format.Boolean:
		return Boolean, nil
	case format.Int32:
		return Int32, nil
	case format.Int64:
		return Int64, nil
	case format.Int96:
		return Int96, nil
	case format.Float:
		return Float, nil
	case format.Double:
		return Double, nil
	case format.ByteArray:
		return ByteArray, nil
	case format.FixedLenByteArray:
		return FixedLenByteArray, nil
	default:
		return 0, fmt.Errorf("unknown physical type %d", t)
	}
}

func logicalOf(e *format.SchemaElement) (Logical, string) {
	if lt := e.LogicalType; lt != nil {
		switch {
		case lt.UTF8 != nil:
			return LogicalString, "STRING"
		case lt.List != nil:
			return LogicalList, "LIST"
		case lt.Map != nil:
			return LogicalMap, "MAP"
		default:
			return LogicalOther, lt.String()
		}
	}
	if ct := e.ConvertedType; ct != nil {
		switch *ct {
		case deprecated.UTF8:
			return LogicalString, "UTF8"
		case deprecated.List:
			return LogicalList, "LIST"
		case deprecated.Map, deprecated.MapKeyValue:
			return LogicalMap, "MAP"
		case deprecated.Enum:
			return LogicalOther, "ENUM"
		default:
			return LogicalOther, fmt.Sprint(*ct)
		}
	}
	return LogicalNone, ""
}
