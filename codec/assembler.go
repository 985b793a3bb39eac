package codec

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/pq/schema"
)

// AssemblyError reports a schema the assembler cannot materialize.
type AssemblyError struct {
	Field string
	Msg   string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("cannot read field %s: %s", e.Field, e.Msg)
}

type nodeKind uint8

const (
	nodeRoot nodeKind = iota
	nodeLeaf
	nodeGroup
	nodeList
	nodeEntry // repeated middle level of a three-level list
)

// sink says where a node delivers its value
type sinkKind uint8

const (
	sinkNone   sinkKind = iota
	sinkSet             // set key in the parent object
	sinkAppend          // append to the array at key in the parent object
	sinkList            // append to the parent list
	sinkEntry           // append to the list above the parent entry
)

type node struct {
	field    *schema.Field
	kind     nodeKind
	parent   int
	sink     sinkKind
	key      int
	children []int
	names    []string

	// frame, reset by Start
	obj       *Fields
	items     []Value
	delivered bool

	dict []Value
}

// Assembler builds one Value per row from assembly events. Node ids
// mirror the schema: Root is the message and Child(id, i) is the i-th
// field of a group node. A three-level list has a node for its repeated
// middle group, whose only child is the element.
//
// An Assembler holds per-row state and must not be shared between
// goroutines.
type Assembler struct {
	nodes []node
	value Value
}

// NewAssembler builds the node tree for s. Map and other annotated groups,
// int96 leaves and malformed lists are rejected.
func NewAssembler(s *schema.Schema) (*Assembler, error) {
	a := &Assembler{}
	a.nodes = append(a.nodes, node{kind: nodeRoot, parent: -1, names: fieldNames(s.Fields)})
	for i, f := range s.Fields {
		if err := a.build(0, i, f, objectSink(f), f.Name); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func fieldNames(fields []*schema.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func objectSink(f *schema.Field) sinkKind {
	if f.Repeated() {
		return sinkAppend
	}
	return sinkSet
}

func (a *Assembler) build(parent, key int, f *schema.Field, sink sinkKind, path string) error {
	id := len(a.nodes)
	a.nodes = append(a.nodes, node{field: f, parent: parent, key: key, sink: sink})
	a.nodes[parent].children = append(a.nodes[parent].children, id)

	switch {
	case f.Leaf():
		if f.Type == schema.Int96 {
			return &AssemblyError{Field: path, Msg: "int96 is not supported"}
		}
		a.nodes[id].kind = nodeLeaf
		return nil

	case f.IsList():
		a.nodes[id].kind = nodeList
		element, err := schema.ListElement(f)
		if err != nil {
			return &AssemblyError{Field: path, Msg: err.Error()}
		}
		if !schema.ThreeLevel(f) {
			return a.build(id, 0, element, sinkList, path+"."+element.Name)
		}
		middle := f.Fields[0]
		entry := len(a.nodes)
		a.nodes = append(a.nodes, node{field: middle, kind: nodeEntry, parent: id})
		a.nodes[id].children = append(a.nodes[id].children, entry)
		return a.build(entry, 0, element, sinkEntry, path+"."+element.Name)

	default:
		if f.Logical != schema.LogicalNone {
			return &AssemblyError{Field: path, Msg: fmt.Sprintf("logical type %s is not supported", f.Annotation)}
		}
		a.nodes[id].kind = nodeGroup
		a.nodes[id].names = fieldNames(f.Fields)
		for i, c := range f.Fields {
			if err := a.build(id, i, c, objectSink(c), path+"."+c.Name); err != nil {
				return err
			}
		}
		return nil
	}
}

// Root returns the id of the message node.
func (a *Assembler) Root() int { return 0 }

// Child returns the id of the i-th child of a group node.
func (a *Assembler) Child(id, i int) int { return a.nodes[id].children[i] }

// Field returns the schema field of a node, nil for the root.
func (a *Assembler) Field(id int) *schema.Field { return a.nodes[id].field }

// Start opens a group node. Object fields start out as Null and lists
// start out empty.
func (a *Assembler) Start(id int) {
	n := &a.nodes[id]
	switch n.kind {
	case nodeRoot, nodeGroup:
		n.obj = newFieldsShared(n.names)
	case nodeList:
		n.items = []Value{}
	case nodeEntry:
		n.delivered = false
	}
}

// End closes a group node and delivers its value to the parent. Ending
// the root makes the row available from Value.
func (a *Assembler) End(id int) {
	n := &a.nodes[id]
	switch n.kind {
	case nodeRoot:
		a.value = ObjectValue(n.obj)
		n.obj = nil
	case nodeGroup:
		v := ObjectValue(n.obj)
		n.obj = nil
		a.deliver(id, v)
	case nodeList:
		v := ArrayValue(n.items)
		n.items = nil
		a.deliver(id, v)
	case nodeEntry:
		if !n.delivered {
			// absent optional element
			list := &a.nodes[n.parent]
			list.items = append(list.items, NullValue())
		}
	}
}

// Add delivers a leaf value.
func (a *Assembler) Add(id int, v parquet.Value) {
	a.deliver(id, leafValue(a.nodes[id].field.Type, v))
}

// SetDictionary registers the dictionary of a leaf node for
// AddDictionaryID.
func (a *Assembler) SetDictionary(id int, dict []parquet.Value) {
	n := &a.nodes[id]
	n.dict = make([]Value, len(dict))
	for i, v := range dict {
		n.dict[i] = leafValue(n.field.Type, v)
	}
}

// AddDictionaryID delivers the dictionary entry idx of a leaf node. The
// assembled value is the same as if the entry were passed to Add.
func (a *Assembler) AddDictionaryID(id int, idx int32) error {
	n := &a.nodes[id]
	if idx < 0 || int(idx) >= len(n.dict) {
		return fmt.Errorf("dictionary index %d out of range [0,%d) for field %s", idx, len(n.dict), n.field.Name)
	}
	a.deliver(id, n.dict[idx])
	return nil
}

// Value returns the row assembled by the last End of the root.
func (a *Assembler) Value() Value { return a.value }

func (a *Assembler) deliver(id int, v Value) {
	n := &a.nodes[id]
	p := &a.nodes[n.parent]
	switch n.sink {
	case sinkSet:
		p.obj.values[n.key] = v
	case sinkAppend:
		cur := p.obj.values[n.key]
		if cur.kind != Array {
			cur = Value{kind: Array, array: make([]Value, 0, 4)}
		}
		cur.array = append(cur.array, v)
		p.obj.values[n.key] = cur
	case sinkList:
		p.items = append(p.items, v)
	case sinkEntry:
		list := &a.nodes[p.parent]
		list.items = append(list.items, v)
		p.delivered = true
	}
}

func leafValue(typ schema.Type, v parquet.Value) Value {
	if v.IsNull() {
		return NullValue()
	}
	switch typ {
	case schema.Boolean:
		return BoolValue(v.Boolean())
	case schema.Int32:
		return Int32Value(v.Int32())
	case schema.Int64:
		return Int64Value(v.Int64())
	case schema.Float:
		return FloatValue(v.Float())
	case schema.Double:
		return DoubleValue(v.Double())
	case schema.ByteArray:
		return StringValue(string(v.ByteArray()))
	case schema.FixedLenByteArray:
		return BytesValue(bytes.Clone(v.ByteArray()))
	default:
		return NullValue()
	}
}
