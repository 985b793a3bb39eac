package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/schema"
)

func TestAppendJSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"null", NullValue(), "null"},
		{"bool", BoolValue(false), "false"},
		{"int32", Int32Value(-7), "-7"},
		{"int64", Int64Value(math.MaxInt64), "9223372036854775807"},
		{"float", FloatValue(0.1), "0.1"},
		{"double", DoubleValue(1e21), "1e+21"},
		{"small double", DoubleValue(1e-7), "1e-07"},
		{"integral double", DoubleValue(3), "3"},
		{"nan", DoubleValue(math.NaN()), "null"},
		{"inf", FloatValue(float32(math.Inf(1))), "null"},
		{"string", StringValue("a\"<b>\n"), `"a\"<b>\n"`},
		{"bytes", BytesValue([]byte("hi")), `"aGk="`},
		{"empty array", ArrayValue(nil), "[]"},
		{"array", ArrayValue([]Value{Int32Value(1), NullValue()}), "[1,null]"},
		{"object", ObjectValue(NewFields().Set("z", Int32Value(1)).Set("a", StringValue("x"))), `{"z":1,"a":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(AppendJSON(nil, tt.value)))
		})
	}
}

func TestAppendJSONStringEscaping(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		`quote " and \ backslash`,
		"<html> & friends",
		"tab\tnewline\ncr\r",
		"\b\f\x00\x1f\x7f",
		"caf\u00e9 \u65e5\u672c \U0001F600",
		"line\u2028para\u2029end",
		"bad \xff\xfe utf8",
		strings.Repeat("x", 100) + "\"",
	}
	for _, in := range inputs {
		var b bytes.Buffer
		enc := json.NewEncoder(&b)
		enc.SetEscapeHTML(false)
		require.NoError(t, enc.Encode(in))
		want := strings.TrimSuffix(b.String(), "\n")

		assert.Equal(t, want, string(AppendJSON(nil, StringValue(in))), "%q", in)
	}

	// appends to the existing buffer
	assert.Equal(t, `[,"a\nb"`, string(AppendJSON([]byte("[,"), StringValue("a\nb"))))
}

func TestParseJSON(t *testing.T) {
	v, err := ParseJSON([]byte(`{"b":1,"a":[1.5,"x",true,null,{"c":-2}],"big":12345678901234567890}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "big"}, v.Object().Names())

	b, _ := v.Object().Get("b")
	assert.Equal(t, Int64, b.Kind())

	a, _ := v.Object().Get("a")
	items := a.Array()
	require.Len(t, items, 5)
	assert.Equal(t, Double, items[0].Kind())
	assert.Equal(t, String, items[1].Kind())
	assert.Equal(t, Bool, items[2].Kind())
	assert.True(t, items[3].IsNull())
	assert.Equal(t, Object, items[4].Kind())

	big, _ := v.Object().Get("big")
	assert.Equal(t, Double, big.Kind())

	assert.Equal(t, `{"b":1,"a":[1.5,"x",true,null,{"c":-2}],"big":12345678901234567000}`, v.String())
}

func TestParseJSONErrors(t *testing.T) {
	for _, text := range []string{``, `{`, `{"a":}`, `[1,]`, `{} {}`, `nul`} {
		_, err := ParseJSON([]byte(text))
		assert.Error(t, err, text)
	}
}

func TestEqual(t *testing.T) {
	a := ObjectValue(NewFields().Set("x", ArrayValue([]Value{DoubleValue(math.NaN())})))
	b := ObjectValue(NewFields().Set("x", ArrayValue([]Value{DoubleValue(math.NaN())})))
	assert.True(t, Equal(a, b))

	assert.False(t, Equal(Int32Value(1), Int64Value(1)))
	assert.False(t, Equal(
		ObjectValue(NewFields().Set("x", NullValue())),
		ObjectValue(NewFields().Set("y", NullValue())),
	))
	assert.False(t, Equal(ArrayValue(nil), ArrayValue([]Value{NullValue()})))
	assert.True(t, Equal(BytesValue([]byte{1}), BytesValue([]byte{1})))
}

func TestSharedNamesAreNotMutated(t *testing.T) {
	names := []string{"a", "b"}
	f := newFieldsShared(names)
	f.Set("c", Int32Value(1))
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, []string{"a", "b", "c"}, f.Names())
}

func TestParseCSVRecord(t *testing.T) {
	s := schema.New("m",
		schema.Leaf("id", schema.Required, schema.Int32),
		schema.Text("name", schema.Optional),
		schema.Leaf("ok", schema.Optional, schema.Boolean),
		schema.Leaf("score", schema.Optional, schema.Double),
		schema.Leaf("big", schema.Optional, schema.Int64),
		schema.Leaf("ratio", schema.Optional, schema.Float),
		schema.List("tags", schema.Optional, schema.Text("", schema.Optional)),
	)

	v, err := ParseCSVRecord([]string{"1", "a,b", "true", "", "9", "0.5", `["x"]`}, s)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"a,b","ok":true,"score":null,"big":9,"ratio":0.5,"tags":["x"]}`, v.String())

	v, err = ParseCSVRecord([]string{"2"}, s)
	require.NoError(t, err)
	assert.Equal(t, `{"id":2}`, v.String())

	_, err = ParseCSVRecord([]string{"1", "", "", "", "", "", "", "extra"}, s)
	assert.Error(t, err)

	for _, record := range [][]string{{"x"}, {"1", "", "yes"}, {"1", "", "", "abc"}, {"99999999999"}} {
		_, err := ParseCSVRecord(record, s)
		var eerr *EncodeError
		assert.True(t, errors.As(err, &eerr), "%v: %v", record, err)
	}
}
