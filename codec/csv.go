package codec

import (
	"fmt"
	"strconv"

	"github.com/vegasq/pq/schema"
)

// ParseCSVRecord maps the cells of a CSV record to the top-level fields of
// s by position. An empty cell is Null. Group and repeated fields take
// their cell as JSON, the way CSV output renders them.
func ParseCSVRecord(record []string, s *schema.Schema) (Value, error) {
	if len(record) > len(s.Fields) {
		return Value{}, fmt.Errorf("record has %d columns, schema has %d fields", len(record), len(s.Fields))
	}
	fields := NewFields()
	for i, cell := range record {
		f := s.Fields[i]
		v, err := parseCell(cell, f)
		if err != nil {
			return Value{}, &EncodeError{Field: f.Name, Msg: err.Error()}
		}
		fields.Set(f.Name, v)
	}
	return ObjectValue(fields), nil
}

func parseCell(cell string, f *schema.Field) (Value, error) {
	if cell == "" {
		return NullValue(), nil
	}
	if !f.Leaf() || f.Repeated() {
		return ParseJSON([]byte(cell))
	}
	switch f.Type {
	case schema.Boolean:
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case schema.Int32:
		i, err := strconv.ParseInt(cell, 10, 32)
		if err != nil {
			return Value{}, err
		}
		return Int32Value(int32(i)), nil
	case schema.Int64:
		i, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return Int64Value(i), nil
	case schema.Float:
		d, err := strconv.ParseFloat(cell, 32)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(float32(d)), nil
	case schema.Double:
		d, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Value{}, err
		}
		return DoubleValue(d), nil
	case schema.ByteArray, schema.FixedLenByteArray:
		return StringValue(cell), nil
	default:
		return Value{}, fmt.Errorf("%s is not supported", f.Type)
	}
}
