package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Parquet converts the schema to a parquet-go schema for writing. The
// receiver should be normalized; parquet-go orders group fields by name and
// only writes three-level lists.
func (s *Schema) Parquet() (*parquet.Schema, error) {
	root := parquet.Group{}
	for _, f := range s.Fields {
		n, err := nodeOf(f)
		if err != nil {
			return nil, err
		}
		root[f.Name] = n
	}
	return parquet.NewSchema(s.Name, root), nil
}

func nodeOf(f *Field) (parquet.Node, error) {
	var n parquet.Node
	switch {
	case f.IsList():
		element, err := ListElement(f)
		if err != nil {
			return nil, err
		}
		e, err := nodeOf(element)
		if err != nil {
			return nil, err
		}
		n = parquet.List(e)
	case !f.Leaf():
		if f.Logical != LogicalNone {
			return nil, fmt.Errorf("field %s: group annotation %s not supported", f.Name, f.Annotation)
		}
		g := parquet.Group{}
		for _, c := range f.Fields {
			cn, err := nodeOf(c)
			if err != nil {
				return nil, err
			}
			g[c.Name] = cn
		}
		n = g
	default:
		leaf, err := leafNode(f)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		n = leaf
	}
	switch f.Repetition {
	case Optional:
		n = parquet.Optional(n)
	case Repeated:
		n = parquet.Repeated(n)
	}
	return n, nil
}

func leafNode(f *Field) (parquet.Node, error) {
	annotation := strings.ToUpper(f.Annotation)
	switch f.Type {
	case Boolean:
		return plainLeaf(parquet.Leaf(parquet.BooleanType), annotation)
	case Int32, Int64:
		switch {
		case annotation == "DATE" && f.Type == Int32:
			return parquet.Date(), nil
		case strings.HasPrefix(annotation, "INT("):
			return intNode(annotation)
		}
		if f.Type == Int32 {
			return plainLeaf(parquet.Leaf(parquet.Int32Type), annotation)
		}
		return plainLeaf(parquet.Leaf(parquet.Int64Type), annotation)
	case Int96:
		return plainLeaf(parquet.Leaf(parquet.Int96Type), annotation)
	case Float:
		return plainLeaf(parquet.Leaf(parquet.FloatType), annotation)
	case Double:
		return plainLeaf(parquet.Leaf(parquet.DoubleType), annotation)
	case ByteArray:
		switch annotation {
		case "STRING", "UTF8":
			return parquet.String(), nil
		case "ENUM":
			return parquet.Enum(), nil
		case "JSON":
			return parquet.JSON(), nil
		}
		return plainLeaf(parquet.Leaf(parquet.ByteArrayType), annotation)
	case FixedLenByteArray:
		if f.Length <= 0 {
			return nil, fmt.Errorf("fixed_len_byte_array needs a positive length")
		}
		return plainLeaf(parquet.Leaf(parquet.FixedLenByteArrayType(f.Length)), annotation)
	default:
		return nil, fmt.Errorf("unsupported type %s", f.Type)
	}
}

func plainLeaf(n parquet.Node, annotation string) (parquet.Node, error) {
	if annotation != "" {
		return nil, fmt.Errorf("logical type %s not supported for writing", annotation)
	}
	return n, nil
}

// intNode handles annotations of the form INT(bits,signed).
func intNode(annotation string) (parquet.Node, error) {
	args := strings.Split(strings.TrimSuffix(strings.TrimPrefix(annotation, "INT("), ")"), ",")
	if len(args) != 2 {
		return nil, fmt.Errorf("malformed annotation %s", annotation)
	}
	bits, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return nil, fmt.Errorf("malformed annotation %s: %w", annotation, err)
	}
	if strings.EqualFold(strings.TrimSpace(args[1]), "false") {
		return parquet.Uint(bits), nil
	}
	return parquet.Int(bits), nil
}
