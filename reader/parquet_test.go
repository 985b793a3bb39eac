package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/codec"
	"github.com/vegasq/pq/filter"
	"github.com/vegasq/pq/schema"
	"github.com/vegasq/pq/writer"
)

// writeFile writes JSON records to a new file in a temp dir.
func writeFile(t *testing.T, s *schema.Schema, records []string, opts ...writer.Option) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.parquet")
	w, err := writer.Create(path, s, opts...)
	require.NoError(t, err)
	for _, text := range records {
		v, err := codec.ParseJSON([]byte(text))
		require.NoError(t, err)
		require.NoError(t, w.Write(v))
	}
	require.NoError(t, w.Close())
	return path
}

func openFile(t *testing.T, path string) *File {
	t.Helper()
	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// readAll scans f and returns the matching rows as JSON with their index.
func readAll(t *testing.T, f *File, filterText string, columns ...string) []string {
	t.Helper()
	pred, err := filter.New(filterText, f.Schema())
	require.NoError(t, err)
	projection, err := f.Schema().Project(columns)
	require.NoError(t, err)

	s, err := f.Scan(pred, projection)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	var out []string
	for s.Next() {
		out = append(out, fmt.Sprintf("%d %s", s.Index(), s.Value()))
	}
	require.NoError(t, s.Err())
	return out
}

func TestOpen_FileNotFound(t *testing.T) {
	_, err := Open("/nonexistent/file.parquet")
	assert.Error(t, err)
}

func TestOpen_InvalidParquetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.parquet")
	require.NoError(t, os.WriteFile(path, []byte("not a parquet file"), 0644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestScanFilteredRows(t *testing.T) {
	s := schema.New("m",
		schema.Leaf("id", schema.Required, schema.Int32),
		schema.Text("name", schema.Optional),
	)
	f := openFile(t, writeFile(t, s, []string{`{"id":1,"name":"a"}`, `{"id":2,"name":"b"}`}))

	assert.Equal(t, []string{`1 {"id":2,"name":"b"}`}, readAll(t, f, "id == 2"))
	assert.Equal(t, []string{`0 {"id":1,"name":"a"}`, `1 {"id":2,"name":"b"}`}, readAll(t, f, ""))
	assert.Equal(t, []string{`0 {"name":"a"}`}, readAll(t, f, `name == "a"`, "name"))
}

// The filter reads columns the projection leaves out.
func TestScanFilterOutsideProjection(t *testing.T) {
	s := schema.New("m",
		schema.Leaf("id", schema.Required, schema.Int32),
		schema.Text("name", schema.Optional),
		schema.Leaf("score", schema.Optional, schema.Double),
	)
	f := openFile(t, writeFile(t, s, []string{
		`{"id":1,"name":"a","score":1.5}`,
		`{"id":2,"name":"b","score":9.5}`,
		`{"id":3,"name":"c"}`,
	}))

	assert.Equal(t, []string{`1 {"name":"b"}`}, readAll(t, f, "score > 2.0 && id != 3", "name"))
	assert.Equal(t, []string{`2 {"id":3}`}, readAll(t, f, "score == null", "id"))
}

func TestScanNegation(t *testing.T) {
	s := schema.New("m", schema.Leaf("active", schema.Optional, schema.Boolean))
	f := openFile(t, writeFile(t, s, []string{`{"active":true}`, `{"active":false}`}))

	assert.Equal(t, []string{`1 {"active":false}`}, readAll(t, f, "!(active)"))
	assert.Equal(t, []string{`1 {"active":false}`}, readAll(t, f, "!active"))
}

func TestScanNestedRoundTrip(t *testing.T) {
	s := schema.New("m",
		schema.Leaf("id", schema.Required, schema.Int64),
		schema.Text("name", schema.Optional),
		schema.Group("address", schema.Optional,
			schema.Text("city", schema.Required),
			schema.Leaf("zip", schema.Optional, schema.Int32),
		),
		schema.List("tags", schema.Optional, schema.Text("", schema.Optional)),
		schema.Leaf("scores", schema.Repeated, schema.Double),
		schema.Group("items", schema.Repeated,
			schema.Text("k", schema.Required),
			schema.List("v", schema.Required, schema.Leaf("", schema.Required, schema.Int32)),
		),
	)
	path := writeFile(t, s, []string{
		`{"id":1,"name":"a","address":{"city":"Oslo"},"tags":["x",null],"scores":[1.5,2],"items":[{"k":"p","v":[1,2]},{"k":"q","v":[]}]}`,
		`{"id":2}`,
		`{"id":3,"tags":[],"address":{"city":"Rome","zip":101}}`,
	})
	f := openFile(t, path)

	assert.Equal(t, []string{
		`0 {"address":{"city":"Oslo","zip":null},"id":1,"items":[{"k":"p","v":[1,2]},{"k":"q","v":[]}],"name":"a","scores":[1.5,2],"tags":["x",null]}`,
		`1 {"address":null,"id":2,"items":null,"name":null,"scores":null,"tags":null}`,
		`2 {"address":{"city":"Rome","zip":101},"id":3,"items":null,"name":null,"scores":null,"tags":[]}`,
	}, readAll(t, f, ""))

	assert.Equal(t, []string{
		`0 {"id":1,"scores":[1.5,2]}`,
	}, readAll(t, f, "scores == 2.0", "scores", "id"))

	assert.Equal(t, []string{
		`2 {"address":{"city":"Rome","zip":101}}`,
	}, readAll(t, f, `address.city == "Rome"`, "address"))
}

// Every field of the schema is present in each assembled row, absent
// values as null.
func TestScanNullPadding(t *testing.T) {
	s := schema.New("m",
		schema.Leaf("a", schema.Optional, schema.Int32),
		schema.Text("b", schema.Optional),
		schema.Group("c", schema.Optional, schema.Leaf("d", schema.Optional, schema.Boolean)),
		schema.Leaf("e", schema.Repeated, schema.Int64),
	)
	f := openFile(t, writeFile(t, s, []string{`{}`, `{"a":1}`, `{"c":{}}`, `{"e":[1]}`}))

	sc, err := f.Scan(nil, f.Schema())
	require.NoError(t, err)
	defer func() { _ = sc.Close() }()
	n := 0
	for sc.Next() {
		assert.Equal(t, []string{"a", "b", "c", "e"}, sc.Value().Object().Names())
		n++
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, 4, n)
}

func TestScanSkipsRowGroups(t *testing.T) {
	s := schema.New("m",
		schema.Leaf("id", schema.Required, schema.Int32),
		schema.Text("name", schema.Optional),
	)
	var records []string
	for i := 1; i <= 6; i++ {
		records = append(records, fmt.Sprintf(`{"id":%d,"name":"n%d"}`, i, i))
	}
	f := openFile(t, writeFile(t, s, records, writer.WithRowGroupSize(2)))
	require.Len(t, f.Blocks(), 3)

	pred, err := filter.New("id >= 5", f.Schema())
	require.NoError(t, err)
	sc, err := f.Scan(pred, f.Schema())
	require.NoError(t, err)
	defer func() { _ = sc.Close() }()

	var got []string
	for sc.Next() {
		got = append(got, fmt.Sprintf("%d %s", sc.Index(), sc.Value()))
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{`4 {"id":5,"name":"n5"}`, `5 {"id":6,"name":"n6"}`}, got)
	assert.Equal(t, 2, sc.SkippedRowGroups())

	// negation never prunes
	assert.Len(t, readAll(t, f, "!(id < 5)"), 2)
}

func TestCountAgreesWithScan(t *testing.T) {
	s := schema.New("m",
		schema.Leaf("id", schema.Required, schema.Int32),
		schema.Text("name", schema.Optional),
		schema.Leaf("nums", schema.Repeated, schema.Int32),
	)
	var records []string
	for i := 0; i < 20; i++ {
		if i%3 == 0 {
			records = append(records, fmt.Sprintf(`{"id":%d}`, i))
			continue
		}
		records = append(records, fmt.Sprintf(`{"id":%d,"name":"x%d","nums":[%d,%d]}`, i, i%4, i, i*2))
	}
	f := openFile(t, writeFile(t, s, records, writer.WithRowGroupSize(7)))

	for _, text := range []string{"", "id < 10", `name == "x1"`, "name == null", "name != null || id == 0", "nums == 12", "!(nums > 5)"} {
		t.Run(text, func(t *testing.T) {
			pred, err := filter.New(text, f.Schema())
			require.NoError(t, err)
			n, err := f.Count(pred)
			require.NoError(t, err)
			assert.Equal(t, int64(len(readAll(t, f, text))), n)
		})
	}

	n, err := f.Count(filter.Unfiltered)
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)
}

func TestScanGenericWriterFile(t *testing.T) {
	type Address struct {
		City string `parquet:"city"`
	}
	type Row struct {
		ID      int64    `parquet:"id"`
		Name    string   `parquet:"name"`
		Tags    []string `parquet:"tags,list"`
		Nums    []int32  `parquet:"nums"`
		Address *Address `parquet:"address,optional"`
	}

	path := filepath.Join(t.TempDir(), "generic.parquet")
	file, err := os.Create(path)
	require.NoError(t, err)
	w := parquet.NewGenericWriter[Row](file)
	_, err = w.Write([]Row{
		{ID: 1, Name: "Alice", Tags: []string{"a", "b"}, Nums: []int32{7}, Address: &Address{City: "Oslo"}},
		{ID: 2, Name: "Bob"},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, file.Close())

	f := openFile(t, path)
	assert.Equal(t, int64(2), f.NumRows())
	assert.Equal(t, []string{
		`0 {"id":1,"name":"Alice","tags":["a","b"],"nums":[7],"address":{"city":"Oslo"}}`,
	}, readAll(t, f, `name == "Alice"`, "id", "name", "tags", "nums", "address"))
	assert.Equal(t, []string{`1 {"id":2,"tags":[],"nums":null}`}, readAll(t, f, "id == 2", "tags", "nums", "id"))
}

func TestScanRejectsUnsupportedProjection(t *testing.T) {
	s := schema.New("m", schema.Leaf("id", schema.Required, schema.Int32))
	f := openFile(t, writeFile(t, s, []string{`{"id":1}`}))

	bad := schema.New("m", schema.Leaf("ts", schema.Optional, schema.Int96))
	_, err := f.Scan(nil, bad)
	var aerr *codec.AssemblyError
	assert.ErrorAs(t, err, &aerr)
}

func TestMetadata(t *testing.T) {
	s := schema.New("m", schema.Leaf("id", schema.Required, schema.Int32))
	f := openFile(t, writeFile(t, s, []string{`{"id":1}`, `{"id":2}`},
		writer.WithKeyValue("k", "v"), writer.WithCreatedBy("tester"), writer.WithCompression("gzip")))

	assert.Equal(t, "v", f.KeyValue()["k"])
	assert.Contains(t, f.CreatedBy(), "tester")

	blocks := f.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, int64(2), blocks[0].NumRows)
	require.Len(t, blocks[0].Columns, 1)
	assert.Equal(t, "id", blocks[0].Columns[0].Path)
	assert.Equal(t, "gzip", blocks[0].Columns[0].Codec)
	assert.Equal(t, int64(2), blocks[0].Columns[0].NumValues)
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.parquet", "b.parquet", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	matches, err := Glob(filepath.Join(dir, "*.parquet"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.parquet"), filepath.Join(dir, "b.parquet")}, matches)

	single := filepath.Join(dir, "missing.parquet")
	matches, err = Glob(single)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, matches)

	_, err = Glob(filepath.Join(dir, "*.csv"))
	assert.Error(t, err)

	_, err = Glob("[")
	assert.Error(t, err)
}
