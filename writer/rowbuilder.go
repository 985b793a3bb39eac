package writer

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/pq/schema"
)

// RowBuilder turns the write events of one record into a parquet.Row.
//
// It tracks the current repetition level of every open group and the set
// of fields written at each level. Fields that received no value when their
// group closes are padded with nulls at the group's definition level, so
// every leaf column gets at least one value per record.
//
// A RowBuilder keeps per-record state and must not be shared between
// goroutines.
type RowBuilder struct {
	schema *schema.Schema
	root   *schema.Field

	// open fields, root first
	path []*schema.Field
	// r[level] is the repetition level of the next value at that level
	r       []int
	written [][]bool
	level   int
	empty   bool

	columns [][]parquet.Value
	row     parquet.Row
	err     error
}

// NewRowBuilder returns a builder for records of s. Column indexes of s
// must match the columns of the target file, see schema.Normalize.
func NewRowBuilder(s *schema.Schema) *RowBuilder {
	depth := 1
	var walk func([]*schema.Field, int)
	walk = func(fields []*schema.Field, d int) {
		if d > depth {
			depth = d
		}
		for _, f := range fields {
			if !f.Leaf() {
				walk(f.Fields, d+1)
			}
		}
	}
	walk(s.Fields, 1)

	return &RowBuilder{
		schema:  s,
		root:    schema.Group(s.Name, schema.Required, s.Fields...),
		r:       make([]int, depth+1),
		written: make([][]bool, depth+1),
		columns: make([][]parquet.Value, s.NumColumns()),
	}
}

// Row returns the row built by the last EndMessage. The row is reused by
// the next record.
func (b *RowBuilder) Row() parquet.Row { return b.row }

// Err returns the first error of the current record.
func (b *RowBuilder) Err() error { return b.err }

func (b *RowBuilder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

func (b *RowBuilder) current() *schema.Field { return b.path[len(b.path)-1] }

func (b *RowBuilder) resetWritten(level, n int) {
	w := b.written[level][:0]
	for i := 0; i < n; i++ {
		w = append(w, false)
	}
	b.written[level] = w
}

// StartMessage resets the builder for a new record.
func (b *RowBuilder) StartMessage() {
	b.err = nil
	b.level = 0
	b.r[0] = 0
	b.path = append(b.path[:0], b.root)
	b.resetWritten(0, len(b.root.Fields))
	for i := range b.columns {
		b.columns[i] = b.columns[i][:0]
	}
}

// EndMessage pads missing top-level fields and assembles the row.
func (b *RowBuilder) EndMessage() {
	if b.err != nil {
		return
	}
	if b.level != 0 || len(b.path) != 1 {
		b.fail("record ended inside field %s", b.current().Name)
		return
	}
	b.writeMissing()
	b.row = b.row[:0]
	for _, values := range b.columns {
		b.row = append(b.row, values...)
	}
}

// StartField opens the index-th field of the current group.
func (b *RowBuilder) StartField(name string, index int) {
	if b.err != nil {
		return
	}
	group := b.current()
	if group.Leaf() || index < 0 || index >= len(group.Fields) {
		b.fail("no field %d under %s", index, group.Name)
		return
	}
	f := group.Fields[index]
	if f.Name != name {
		b.fail("field %d under %s is %s, not %s", index, group.Name, f.Name, name)
		return
	}
	b.path = append(b.path, f)
	b.empty = true
}

// EndField closes the current field. A field without values is an error.
func (b *RowBuilder) EndField(name string, index int) {
	if b.err != nil {
		return
	}
	if b.empty {
		b.fail("empty field %s", name)
		return
	}
	b.path = b.path[:len(b.path)-1]
	b.written[b.level][index] = true
	if b.level == 0 {
		b.r[0] = 0
	} else {
		b.r[b.level] = b.r[b.level-1]
	}
}

// StartGroup opens the group value of the current field.
func (b *RowBuilder) StartGroup() {
	if b.err != nil {
		return
	}
	f := b.current()
	if f.Leaf() {
		b.fail("field %s is not a group", f.Name)
		return
	}
	b.level++
	b.r[b.level] = b.r[b.level-1]
	b.resetWritten(b.level, len(f.Fields))
}

// EndGroup pads the fields of the group that received no value.
func (b *RowBuilder) EndGroup() {
	if b.err != nil {
		return
	}
	b.empty = false
	b.writeMissing()
	b.level--
	b.r[b.level] = b.current().MaxRepetitionLevel()
}

func (b *RowBuilder) writeMissing() {
	group := b.current()
	def := 0
	if group != b.root {
		def = group.MaxDefinitionLevel()
	}
	rep := b.r[b.level]
	for i, written := range b.written[b.level] {
		if written {
			continue
		}
		first, last := group.Fields[i].Columns()
		for col := first; col < last; col++ {
			b.columns[col] = append(b.columns[col], parquet.Value{}.Level(rep, def, col))
		}
	}
}

func (b *RowBuilder) add(v parquet.Value, kinds ...schema.Type) {
	if b.err != nil {
		return
	}
	f := b.current()
	if !f.Leaf() {
		b.fail("field %s is a group", f.Name)
		return
	}
	matched := false
	for _, k := range kinds {
		if f.Type == k {
			matched = true
			break
		}
	}
	if !matched {
		b.fail("field %s holds %s, got %s", f.Name, f.Type, kinds[0])
		return
	}
	b.empty = false
	col := f.Column()
	b.columns[col] = append(b.columns[col], v.Level(b.r[b.level], f.MaxDefinitionLevel(), col))
	b.r[b.level] = f.MaxRepetitionLevel()
}

func (b *RowBuilder) AddBoolean(v bool) { b.add(parquet.BooleanValue(v), schema.Boolean) }
func (b *RowBuilder) AddInt32(v int32) { b.add(parquet.Int32Value(v), schema.Int32) }
func (b *RowBuilder) AddInt64(v int64) { b.add(parquet.Int64Value(v), schema.Int64) }
func (b *RowBuilder) AddFloat(v float32) { b.add(parquet.FloatValue(v), schema.Float) }
func (b *RowBuilder) AddDouble(v float64) { b.add(parquet.DoubleValue(v), schema.Double) }

// AddBinary adds a byte array or fixed length byte array value.
func (b *RowBuilder) AddBinary(v []byte) {
	if b.err == nil && b.current().Type == schema.FixedLenByteArray {
		b.add(parquet.FixedLenByteArrayValue(v), schema.FixedLenByteArray)
		return
	}
	b.add(parquet.ByteArrayValue(v), schema.ByteArray)
}
