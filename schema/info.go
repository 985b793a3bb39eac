package schema

import "strings"

// ColumnInfo describes a single leaf column of a schema.
type ColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Required     bool   `json:"required"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`
}

// ColumnInfos lists the leaf columns of the schema in column order.
//
// Nested columns use dot notation (e.g. "address.street"). A column is
// reported as repeated when it or any of its parents is repeated.
func (s *Schema) ColumnInfos() []ColumnInfo {
	var infos []ColumnInfo
	for _, f := range s.Fields {
		infos = append(infos, columnInfos(f, "", false)...)
	}
	return infos
}

func columnInfos(f *Field, prefix string, parentRepeated bool) []ColumnInfo {
	name := f.Name
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || f.Repeated()

	if !f.Leaf() {
		// groups are not listed, only their leaves
		var infos []ColumnInfo
		for _, c := range f.Fields {
			infos = append(infos, columnInfos(c, name, repeated)...)
		}
		return infos
	}

	return []ColumnInfo{{
		Name:         name,
		Type:         friendlyType(f),
		PhysicalType: physicalType(f.Type),
		LogicalType:  f.Annotation,
		Required:     f.Required(),
		Optional:     f.Optional(),
		Repeated:     repeated,
	}}
}

func physicalType(t Type) string {
	switch t {
	case ByteArray:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	case 0:
		return "GROUP"
	default:
		return strings.ToUpper(t.String())
	}
}

// friendlyType maps physical and logical types to the simpler names shown
// to users.
func friendlyType(f *Field) string {
	annotation := strings.ToUpper(f.Annotation)
	if i := strings.IndexByte(annotation, '('); i >= 0 {
		annotation = annotation[:i]
	}
	switch annotation {
	case "STRING", "UTF8":
		return "STRING"
	case "ENUM", "UUID", "DATE", "TIME", "TIMESTAMP", "DECIMAL", "JSON", "BSON":
		return annotation
	}
	switch f.Type {
	case Float:
		return "FLOAT32"
	case Double:
		return "FLOAT64"
	default:
		return physicalType(f.Type)
	}
}
