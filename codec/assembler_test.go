package codec

import (
	"errors"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/schema"
)

func str(s string) parquet.Value { return parquet.ByteArrayValue([]byte(s)) }

func TestAssembleScalars(t *testing.T) {
	s := schema.New("m",
		schema.Leaf("id", schema.Required, schema.Int32),
		schema.Text("name", schema.Optional),
		schema.Leaf("big", schema.Optional, schema.Int64),
		schema.Leaf("ratio", schema.Optional, schema.Float),
		schema.Leaf("score", schema.Optional, schema.Double),
		schema.Leaf("ok", schema.Optional, schema.Boolean),
		&schema.Field{Name: "code", Type: schema.FixedLenByteArray, Length: 2, Repetition: schema.Optional},
	)
	a, err := NewAssembler(s)
	require.NoError(t, err)

	root := a.Root()
	a.Start(root)
	a.Add(a.Child(root, 0), parquet.Int32Value(7))
	a.Add(a.Child(root, 1), str("bob"))
	a.Add(a.Child(root, 2), parquet.Int64Value(-3))
	a.Add(a.Child(root, 3), parquet.FloatValue(0.5))
	a.Add(a.Child(root, 4), parquet.DoubleValue(2.25))
	a.Add(a.Child(root, 5), parquet.BooleanValue(true))
	a.Add(a.Child(root, 6), parquet.FixedLenByteArrayValue([]byte{1, 2}))
	a.End(root)

	got := a.Value()
	assert.Equal(t, `{"id":7,"name":"bob","big":-3,"ratio":0.5,"score":2.25,"ok":true,"code":"AQI="}`, got.String())

	name, ok := got.Object().Get("name")
	require.True(t, ok)
	assert.Equal(t, String, name.Kind())
	code, _ := got.Object().Get("code")
	assert.Equal(t, Bytes, code.Kind())
}

func TestAssembleNullPadding(t *testing.T) {
	s := schema.New("m",
		schema.Leaf("id", schema.Required, schema.Int32),
		schema.Text("email", schema.Optional),
		schema.Group("address", schema.Optional, schema.Text("city", schema.Optional)),
		schema.Leaf("nums", schema.Repeated, schema.Int32),
	)
	a, err := NewAssembler(s)
	require.NoError(t, err)

	for _, id := range []int32{1, 2} {
		a.Start(a.Root())
		a.Add(a.Child(a.Root(), 0), parquet.Int32Value(id))
		a.End(a.Root())
	}

	got := a.Value()
	assert.Equal(t, []string{"id", "email", "address", "nums"}, got.Object().Names())
	assert.Equal(t, `{"id":2,"email":null,"address":null,"nums":null}`, got.String())
}

func TestAssembleRepeatedAndList(t *testing.T) {
	t.Run("repeated primitive", func(t *testing.T) {
		s := schema.New("m", schema.Leaf("f", schema.Repeated, schema.Int32))
		a, err := NewAssembler(s)
		require.NoError(t, err)

		f := a.Child(a.Root(), 0)
		a.Start(a.Root())
		for _, v := range []int32{1, 2, 3} {
			a.Add(f, parquet.Int32Value(v))
		}
		a.End(a.Root())
		assert.Equal(t, `{"f":[1,2,3]}`, a.Value().String())
	})

	t.Run("two-level list", func(t *testing.T) {
		s := schema.New("m", &schema.Field{
			Name: "f", Repetition: schema.Optional, Logical: schema.LogicalList, Annotation: "LIST",
			Fields: []*schema.Field{schema.Text("element", schema.Repeated)},
		})
		a, err := NewAssembler(s)
		require.NoError(t, err)

		f := a.Child(a.Root(), 0)
		element := a.Child(f, 0)
		a.Start(a.Root())
		a.Start(f)
		a.Add(element, str("s1"))
		a.Add(element, str("s2"))
		a.End(f)
		a.End(a.Root())
		assert.Equal(t, `{"f":["s1","s2"]}`, a.Value().String())
	})

	t.Run("three-level list", func(t *testing.T) {
		s := schema.New("m", schema.List("f", schema.Optional, schema.Text("", schema.Optional)))
		a, err := NewAssembler(s)
		require.NoError(t, err)

		f := a.Child(a.Root(), 0)
		entry := a.Child(f, 0)
		element := a.Child(entry, 0)

		a.Start(a.Root())
		a.Start(f)
		for _, v := range []string{"s1", "", "s2"} {
			a.Start(entry)
			if v != "" {
				a.Add(element, str(v))
			}
			a.End(entry)
		}
		a.End(f)
		a.End(a.Root())
		assert.Equal(t, `{"f":["s1",null,"s2"]}`, a.Value().String())

		// a present empty list
		a.Start(a.Root())
		a.Start(f)
		a.End(f)
		a.End(a.Root())
		assert.Equal(t, `{"f":[]}`, a.Value().String())

		// an absent list
		a.Start(a.Root())
		a.End(a.Root())
		assert.Equal(t, `{"f":null}`, a.Value().String())
	})

	t.Run("list of groups", func(t *testing.T) {
		s := schema.New("m", schema.List("pts", schema.Required,
			schema.Group("", schema.Required,
				schema.Leaf("x", schema.Required, schema.Int32),
				schema.Leaf("y", schema.Optional, schema.Int32),
			)))
		a, err := NewAssembler(s)
		require.NoError(t, err)

		pts := a.Child(a.Root(), 0)
		entry := a.Child(pts, 0)
		element := a.Child(entry, 0)
		x, y := a.Child(element, 0), a.Child(element, 1)

		a.Start(a.Root())
		a.Start(pts)
		a.Start(entry)
		a.Start(element)
		a.Add(x, parquet.Int32Value(1))
		a.Add(y, parquet.Int32Value(2))
		a.End(element)
		a.End(entry)
		a.Start(entry)
		a.Start(element)
		a.Add(x, parquet.Int32Value(3))
		a.End(element)
		a.End(entry)
		a.End(pts)
		a.End(a.Root())
		assert.Equal(t, `{"pts":[{"x":1,"y":2},{"x":3,"y":null}]}`, a.Value().String())
	})

	t.Run("nested lists", func(t *testing.T) {
		s := schema.New("m", schema.List("grid", schema.Optional,
			schema.List("", schema.Optional, schema.Leaf("", schema.Required, schema.Int64))))
		a, err := NewAssembler(s)
		require.NoError(t, err)

		grid := a.Child(a.Root(), 0)
		outer := a.Child(grid, 0)
		row := a.Child(outer, 0)
		inner := a.Child(row, 0)
		cell := a.Child(inner, 0)

		a.Start(a.Root())
		a.Start(grid)
		for _, cells := range [][]int64{{1, 2}, {3}} {
			a.Start(outer)
			a.Start(row)
			for _, c := range cells {
				a.Start(inner)
				a.Add(cell, parquet.Int64Value(c))
				a.End(inner)
			}
			a.End(row)
			a.End(outer)
		}
		a.End(grid)
		a.End(a.Root())
		assert.Equal(t, `{"grid":[[1,2],[3]]}`, a.Value().String())
	})

	t.Run("repeated group", func(t *testing.T) {
		s := schema.New("m", schema.Group("items", schema.Repeated, schema.Text("k", schema.Required)))
		a, err := NewAssembler(s)
		require.NoError(t, err)

		items := a.Child(a.Root(), 0)
		k := a.Child(items, 0)
		a.Start(a.Root())
		for _, v := range []string{"a", "b"} {
			a.Start(items)
			a.Add(k, str(v))
			a.End(items)
		}
		a.End(a.Root())
		assert.Equal(t, `{"items":[{"k":"a"},{"k":"b"}]}`, a.Value().String())
	})
}

func TestAssembleDictionary(t *testing.T) {
	s := schema.New("m", schema.Text("name", schema.Required), schema.Text("tags", schema.Repeated))
	a, err := NewAssembler(s)
	require.NoError(t, err)

	name, tags := a.Child(a.Root(), 0), a.Child(a.Root(), 1)
	a.SetDictionary(name, []parquet.Value{str("x"), str("y")})
	a.SetDictionary(tags, []parquet.Value{str("t0"), str("t1")})

	a.Start(a.Root())
	require.NoError(t, a.AddDictionaryID(name, 1))
	require.NoError(t, a.AddDictionaryID(tags, 0))
	require.NoError(t, a.AddDictionaryID(tags, 1))
	a.End(a.Root())
	byDictionary := a.Value()

	a.Start(a.Root())
	a.Add(name, str("y"))
	a.Add(tags, str("t0"))
	a.Add(tags, str("t1"))
	a.End(a.Root())

	assert.True(t, Equal(byDictionary, a.Value()))
	assert.Error(t, a.AddDictionaryID(name, 2))
}

func TestNewAssemblerErrors(t *testing.T) {
	tests := []struct {
		name  string
		field *schema.Field
	}{
		{"int96", schema.Leaf("ts", schema.Optional, schema.Int96)},
		{"map", &schema.Field{Name: "m", Logical: schema.LogicalMap, Annotation: "MAP",
			Fields: []*schema.Field{schema.Group("key_value", schema.Repeated, schema.Text("key", schema.Required))}}},
		{"list without child", &schema.Field{Name: "l", Logical: schema.LogicalList, Annotation: "LIST"}},
		{"list with optional child", &schema.Field{Name: "l", Logical: schema.LogicalList, Annotation: "LIST",
			Fields: []*schema.Field{schema.Text("element", schema.Optional)}}},
		{"nested int96", schema.Group("g", schema.Optional, schema.Leaf("ts", schema.Optional, schema.Int96))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAssembler(schema.New("m", tt.field))
			var aerr *AssemblyError
			assert.True(t, errors.As(err, &aerr), "got %v", err)
		})
	}
}
