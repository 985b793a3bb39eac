package schema

import (
	"fmt"
	"strings"
)

// String renders the schema as a parquet message definition that Parse
// reads back.
func (s *Schema) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "message %s {\n", s.Name)
	for _, f := range s.Fields {
		writeField(&b, f, 1)
	}
	b.WriteString("}\n")
	return b.String()
}

// String renders a single field definition.
func (f *Field) String() string {
	var b strings.Builder
	writeField(&b, f, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func writeField(b *strings.Builder, f *Field, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString(f.Repetition.String())
	b.WriteByte(' ')
	switch {
	case !f.Leaf():
		b.WriteString("group")
	case f.Type == FixedLenByteArray:
		fmt.Fprintf(b, "fixed_len_byte_array(%d)", f.Length)
	default:
		b.WriteString(f.Type.String())
	}
	b.WriteByte(' ')
	b.WriteString(f.Name)
	if f.Annotation != "" {
		fmt.Fprintf(b, " (%s)", f.Annotation)
	}
	if f.Leaf() {
		b.WriteString(";\n")
		return
	}
	b.WriteString(" {\n")
	for _, c := range f.Fields {
		writeField(b, c, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("}\n")
}
