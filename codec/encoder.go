package codec

import (
	"fmt"
	"math"

	"github.com/vegasq/pq/schema"
)

// EncodeError reports a value that does not fit its schema field.
type EncodeError struct {
	Field string
	Msg   string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot write field %s: %s", e.Field, e.Msg)
}

// RecordConsumer receives the write events of one record. Field indexes
// are positions within the enclosing group.
type RecordConsumer interface {
	StartMessage()
	EndMessage()
	StartField(name string, index int)
	EndField(name string, index int)
	StartGroup()
	EndGroup()
	AddBoolean(v bool)
	AddInt32(v int32)
	AddInt64(v int64)
	AddFloat(v float32)
	AddDouble(v float64)
	AddBinary(v []byte)
}

// Write emits the events of one record. v must be an object; its fields
// are matched to the schema by name and keys the schema does not name are
// ignored. Null or absent fields emit nothing.
//
// On error the consumer may have received a partial record and must be
// reset by the next StartMessage.
func Write(c RecordConsumer, v Value, s *schema.Schema) error {
	if v.Kind() != Object {
		return &EncodeError{Field: s.Name, Msg: fmt.Sprintf("record must be an object, got %s", v.Kind())}
	}
	c.StartMessage()
	if err := writeFields(c, v.Object(), s.Fields, ""); err != nil {
		return err
	}
	c.EndMessage()
	return nil
}

func writeFields(c RecordConsumer, obj *Fields, fields []*schema.Field, prefix string) error {
	for i, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		v, ok := obj.Get(f.Name)
		if !ok || v.IsNull() {
			if f.Required() {
				return &EncodeError{Field: path, Msg: "required field is missing"}
			}
			continue
		}
		if err := writeField(c, f, i, v, path); err != nil {
			return err
		}
	}
	return nil
}

func writeField(c RecordConsumer, f *schema.Field, index int, v Value, path string) error {
	if !f.Repeated() {
		c.StartField(f.Name, index)
		if err := writeValue(c, f, v, path); err != nil {
			return err
		}
		c.EndField(f.Name, index)
		return nil
	}

	if v.Kind() != Array {
		return &EncodeError{Field: path, Msg: fmt.Sprintf("repeated field needs an array, got %s", v.Kind())}
	}
	items := v.Array()
	if len(items) == 0 {
		return nil
	}
	c.StartField(f.Name, index)
	for _, item := range items {
		if item.IsNull() {
			return &EncodeError{Field: path, Msg: "repeated field cannot hold null"}
		}
		if err := writeValue(c, f, item, path); err != nil {
			return err
		}
	}
	c.EndField(f.Name, index)
	return nil
}

func writeValue(c RecordConsumer, f *schema.Field, v Value, path string) error {
	switch {
	case f.Leaf():
		return writeLeaf(c, f, v, path)
	case f.IsList():
		return writeList(c, f, v, path)
	default:
		if f.Logical != schema.LogicalNone {
			return &EncodeError{Field: path, Msg: fmt.Sprintf("logical type %s is not supported", f.Annotation)}
		}
		if v.Kind() != Object {
			return &EncodeError{Field: path, Msg: fmt.Sprintf("group needs an object, got %s", v.Kind())}
		}
		c.StartGroup()
		if err := writeFields(c, v.Object(), f.Fields, path); err != nil {
			return err
		}
		c.EndGroup()
		return nil
	}
}

// writeList emits a list group. A present empty list is a group without
// its repeated child, which reads back as an empty array.
func writeList(c RecordConsumer, f *schema.Field, v Value, path string) error {
	if v.Kind() != Array {
		return &EncodeError{Field: path, Msg: fmt.Sprintf("list needs an array, got %s", v.Kind())}
	}
	element, err := schema.ListElement(f)
	if err != nil {
		return &EncodeError{Field: path, Msg: err.Error()}
	}
	middle := f.Fields[0]
	items := v.Array()

	c.StartGroup()
	if len(items) > 0 {
		c.StartField(middle.Name, 0)
		if schema.ThreeLevel(f) {
			elementPath := path + "." + element.Name
			for _, item := range items {
				c.StartGroup()
				if item.IsNull() {
					if element.Required() {
						return &EncodeError{Field: elementPath, Msg: "list element cannot be null"}
					}
				} else {
					c.StartField(element.Name, 0)
					if err := writeValue(c, element, item, elementPath); err != nil {
						return err
					}
					c.EndField(element.Name, 0)
				}
				c.EndGroup()
			}
		} else {
			for _, item := range items {
				if item.IsNull() {
					return &EncodeError{Field: path, Msg: "list element cannot be null"}
				}
				if err := writeValue(c, element, item, path+"."+element.Name); err != nil {
					return err
				}
			}
		}
		c.EndField(middle.Name, 0)
	}
	c.EndGroup()
	return nil
}

func writeLeaf(c RecordConsumer, f *schema.Field, v Value, path string) error {
	mismatch := func() error {
		return &EncodeError{Field: path, Msg: fmt.Sprintf("cannot store %s value %s as %s", v.Kind(), v, f.Type)}
	}
	switch f.Type {
	case schema.Boolean:
		if v.Kind() != Bool {
			return mismatch()
		}
		c.AddBoolean(v.Bool())
	case schema.Int32:
		i, ok := integer(v)
		if !ok || i < math.MinInt32 || i > math.MaxInt32 {
			return mismatch()
		}
		c.AddInt32(int32(i))
	case schema.Int64:
		i, ok := integer(v)
		if !ok {
			return mismatch()
		}
		c.AddInt64(i)
	case schema.Float:
		d, ok := number(v)
		if !ok {
			return mismatch()
		}
		c.AddFloat(float32(d))
	case schema.Double:
		d, ok := number(v)
		if !ok {
			return mismatch()
		}
		c.AddDouble(d)
	case schema.ByteArray:
		switch v.Kind() {
		case String:
			c.AddBinary([]byte(v.Text()))
		case Bytes:
			c.AddBinary(v.Bytes())
		default:
			return mismatch()
		}
	case schema.FixedLenByteArray:
		var b []byte
		switch v.Kind() {
		case String:
			b = []byte(v.Text())
		case Bytes:
			b = v.Bytes()
		default:
			return mismatch()
		}
		if len(b) != f.Length {
			return &EncodeError{Field: path, Msg: fmt.Sprintf("value has %d bytes, field holds %d", len(b), f.Length)}
		}
		c.AddBinary(b)
	default:
		return &EncodeError{Field: path, Msg: fmt.Sprintf("%s is not supported", f.Type)}
	}
	return nil
}

// integer accepts integral values of any numeric kind.
func integer(v Value) (int64, bool) {
	switch v.Kind() {
	case Int32:
		return int64(v.Int32()), true
	case Int64:
		return v.Int64(), true
	case Float, Double:
		d, _ := number(v)
		if d != math.Trunc(d) || d < math.MinInt64 || d >= math.MaxInt64 {
			return 0, false
		}
		return int64(d), true
	default:
		return 0, false
	}
}

func number(v Value) (float64, bool) {
	switch v.Kind() {
	case Int32:
		return float64(v.Int32()), true
	case Int64:
		return float64(v.Int64()), true
	case Float:
		return float64(v.Float()), true
	case Double:
		return v.Double(), true
	default:
		return 0, false
	}
}
