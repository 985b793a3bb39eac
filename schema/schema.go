package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Field is a node of the schema tree. Leaves carry a physical type, groups
// carry child fields.
//
// The level and column information is derived when the field becomes part
// of a Schema and must not be modified afterwards.
type Field struct {
	Name       string
	Type       Type
	Length     int
	Repetition Repetition
	Logical    Logical
	// Annotation is the logical annotation text, e.g. "STRING" or "DATE".
	Annotation string
	Fields     []*Field

	maxDef      int
	maxRep      int
	column      int
	firstColumn int
	lastColumn  int
}

// Leaf returns a primitive field.
func Leaf(name string, rep Repetition, typ Type) *Field {
	return &Field{Name: name, Type: typ, Repetition: rep}
}

// Text returns a binary field annotated as a UTF-8 string.
func Text(name string, rep Repetition) *Field {
	return &Field{Name: name, Type: ByteArray, Repetition: rep, Logical: LogicalString, Annotation: "STRING"}
}

// Group returns a group field with the given children.
func Group(name string, rep Repetition, fields ...*Field) *Field {
	return &Field{Name: name, Repetition: rep, Fields: fields}
}

// List returns a list-annotated group using the three-level layout: the
// group wraps a repeated "list" group holding a single "element" field.
func List(name string, rep Repetition, element *Field) *Field {
	element.Name = "element"
	return &Field{
		Name:       name,
		Repetition: rep,
		Logical:    LogicalList,
		Annotation: "LIST",
		Fields:     []*Field{Group("list", Repeated, element)},
	}
}

// Leaf reports whether the field is a primitive column.
func (f *Field) Leaf() bool { return f.Type != 0 }

// Required reports whether the field is required.
func (f *Field) Required() bool { return f.Repetition == Required }

// Optional reports whether the field is optional.
func (f *Field) Optional() bool { return f.Repetition == Optional }

// Repeated reports whether the field is repeated.
func (f *Field) Repeated() bool { return f.Repetition == Repeated }

// IsList reports whether the field is a list-annotated group.
func (f *Field) IsList() bool { return f.Logical == LogicalList && !f.Leaf() }

// MaxDefinitionLevel is the definition level of a value where this field is
// present.
func (f *Field) MaxDefinitionLevel() int { return f.maxDef }

// MaxRepetitionLevel is the number of repeated fields on the path to this
// field, the field included.
func (f *Field) MaxRepetitionLevel() int { return f.maxRep }

// Column is the leaf column index of a primitive field, -1 for groups.
func (f *Field) Column() int { return f.column }

// Columns returns the half-open range of leaf columns under the field.
func (f *Field) Columns() (first, last int) { return f.firstColumn, f.lastColumn }

// Field returns the child with the given name, or nil.
func (f *Field) Field(name string) *Field {
	return lookupField(f.Fields, name)
}

// Schema is the root of a table schema. Schemas are immutable once built.
type Schema struct {
	Name   string
	Fields []*Field

	numColumns int
}

// New builds a schema and computes levels and column indexes of its fields.
func New(name string, fields ...*Field) *Schema {
	s := &Schema{Name: name, Fields: fields}
	col := 0
	finalize(fields, 0, 0, &col)
	s.numColumns = col
	return s
}

func finalize(fields []*Field, def, rep int, col *int) {
	for _, f := range fields {
		f.maxDef, f.maxRep = def, rep
		switch f.Repetition {
		case Optional:
			f.maxDef++
		case Repeated:
			f.maxDef++
			f.maxRep++
		}
		f.firstColumn = *col
		if f.Leaf() {
			f.column = *col
			*col++
		} else {
			f.column = -1
			finalize(f.Fields, f.maxDef, f.maxRep, col)
		}
		f.lastColumn = *col
	}
}

// NumColumns returns the number of leaf columns of the underlying file
// schema. Projections keep the count of the schema they were taken from.
func (s *Schema) NumColumns() int { return s.numColumns }

// Field returns the top-level field with the given name, or nil.
func (s *Schema) Field(name string) *Field {
	return lookupField(s.Fields, name)
}

// Lookup resolves a dotted path such as "address.city".
func (s *Schema) Lookup(path string) (*Field, bool) {
	if path == "" {
		return nil, false
	}
	fields := s.Fields
	var f *Field
	for _, name := range strings.Split(path, ".") {
		f = lookupField(fields, name)
		if f == nil {
			return nil, false
		}
		fields = f.Fields
	}
	return f, true
}

// Project returns a schema restricted to the named top-level fields, in
// schema order. Fields are shared with s so column indexes and levels keep
// addressing the file's columns. An empty list selects every field.
func (s *Schema) Project(columns []string) (*Schema, error) {
	if len(columns) == 0 {
		return s, nil
	}
	wanted := make(map[string]bool, len(columns))
	for _, name := range columns {
		if s.Field(name) == nil {
			return nil, fmt.Errorf("field not exists: %s", name)
		}
		wanted[name] = true
	}
	fields := make([]*Field, 0, len(wanted))
	for _, f := range s.Fields {
		if wanted[f.Name] {
			fields = append(fields, f)
		}
	}
	return &Schema{Name: s.Name, Fields: fields, numColumns: s.numColumns}, nil
}

// Leaves returns every primitive field in column order.
func (s *Schema) Leaves() []*Field {
	var leaves []*Field
	var walk func([]*Field)
	walk = func(fields []*Field) {
		for _, f := range fields {
			if f.Leaf() {
				leaves = append(leaves, f)
			} else {
				walk(f.Fields)
			}
		}
	}
	walk(s.Fields)
	return leaves
}

// Normalize returns a copy of the schema laid out the way parquet-go writes
// it: children of every group sorted by name and lists in the three-level
// form. Column indexes of the result match the columns of the written file.
func (s *Schema) Normalize() (*Schema, error) {
	fields, err := normalizeFields(s.Fields)
	if err != nil {
		return nil, err
	}
	return New(s.Name, fields...), nil
}

func normalizeFields(fields []*Field) ([]*Field, error) {
	out := make([]*Field, 0, len(fields))
	for _, f := range fields {
		n, err := normalizeField(f)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func normalizeField(f *Field) (*Field, error) {
	c := &Field{
		Name:       f.Name,
		Type:       f.Type,
		Length:     f.Length,
		Repetition: f.Repetition,
		Logical:    f.Logical,
		Annotation: f.Annotation,
	}
	if f.Leaf() {
		return c, nil
	}
	if f.IsList() {
		element, err := ListElement(f)
		if err != nil {
			return nil, err
		}
		e, err := normalizeField(element)
		if err != nil {
			return nil, err
		}
		if e.Repetition == Repeated {
			e.Repetition = Required
		}
		return List(f.Name, f.Repetition, e), nil
	}
	children, err := normalizeFields(f.Fields)
	if err != nil {
		return nil, err
	}
	c.Fields = children
	return c, nil
}

// ListElement returns the element field of a list-annotated group. For the
// three-level layout it is the only field of the repeated middle group; for
// the legacy two-level layout it is the repeated child itself.
func ListElement(f *Field) (*Field, error) {
	if len(f.Fields) != 1 {
		return nil, fmt.Errorf("list %s must have exactly one child, has %d", f.Name, len(f.Fields))
	}
	child := f.Fields[0]
	if !child.Repeated() {
		return nil, fmt.Errorf("list %s child %s must be repeated", f.Name, child.Name)
	}
	if ThreeLevel(f) {
		return child.Fields[0], nil
	}
	return child, nil
}

// ThreeLevel reports whether a list group uses a synthetic repeated middle
// level. Following the parquet backward compatibility rules, a repeated
// group with a single field is the middle level unless it is named "array"
// or "<list>_tuple".
func ThreeLevel(f *Field) bool {
	if len(f.Fields) != 1 {
		return false
	}
	child := f.Fields[0]
	if child.Leaf() || len(child.Fields) != 1 {
		return false
	}
	return child.Name != "array" && child.Name != f.Name+"_tuple"
}

func lookupField(fields []*Field, name string) *Field {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
