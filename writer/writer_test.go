package writer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/codec"
	"github.com/vegasq/pq/schema"
)

func testSchema() *schema.Schema {
	return schema.New("users",
		schema.Leaf("id", schema.Required, schema.Int64),
		schema.Text("name", schema.Optional),
		schema.List("tags", schema.Optional, schema.Text("", schema.Required)),
	)
}

func openFooter(t *testing.T, path string) *parquet.File {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	stat, err := f.Stat()
	require.NoError(t, err)
	pf, err := parquet.OpenFile(f, stat.Size())
	require.NoError(t, err)
	return pf
}

func writeRecords(t *testing.T, w *Writer, records ...string) {
	t.Helper()
	for _, text := range records {
		v, err := codec.ParseJSON([]byte(text))
		require.NoError(t, err)
		require.NoError(t, w.Write(v))
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.parquet")

	w, err := Create(path, testSchema(),
		WithCompression("zstd"),
		WithCreatedBy("pq-test"),
		WithKeyValue("origin", "unit"),
		WithRowGroupSize(2),
	)
	require.NoError(t, err)

	// nothing visible before Close
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	writeRecords(t, w,
		`{"id":1,"name":"a","tags":["x","y"]}`,
		`{"id":2}`,
		`{"id":3,"tags":[]}`,
	)
	assert.Equal(t, int64(3), w.Count())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file left behind")

	pf := openFooter(t, path)
	md := pf.Metadata()
	assert.Equal(t, int64(3), md.NumRows)
	assert.Len(t, md.RowGroups, 2)
	assert.Contains(t, md.CreatedBy, "pq-test")
	require.NotEmpty(t, md.RowGroups[0].Columns)
	assert.Equal(t, format.Zstd, md.RowGroups[0].Columns[0].MetaData.Codec)

	found := false
	for _, kv := range md.KeyValueMetadata {
		if kv.Key == "origin" && kv.Value == "unit" {
			found = true
		}
	}
	assert.True(t, found)

	s, err := schema.FromMetadata(md.Schema)
	require.NoError(t, err)
	assert.Equal(t, w.Schema().NumColumns(), s.NumColumns())
	tags, ok := s.Lookup("tags.list.element")
	require.True(t, ok)
	assert.Equal(t, 2, tags.MaxDefinitionLevel())
	assert.Equal(t, 1, tags.MaxRepetitionLevel())
}

func TestCreateNormalizesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	s := schema.New("m",
		schema.Text("zeta", schema.Optional),
		schema.Leaf("alpha", schema.Required, schema.Int32),
	)
	w, err := Create(path, s)
	require.NoError(t, err)
	defer w.Abort()

	assert.Equal(t, "alpha", w.Schema().Fields[0].Name)
	assert.Equal(t, "zeta", w.Schema().Fields[1].Name)
	writeRecords(t, w, `{"zeta":"z","alpha":1}`)
	require.NoError(t, w.Close())
}

func TestWriteRejectsBadRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	w, err := Create(path, testSchema())
	require.NoError(t, err)
	defer w.Abort()

	v, err := codec.ParseJSON([]byte(`{"name":"missing id"}`))
	require.NoError(t, err)
	err = w.Write(v)
	var eerr *codec.EncodeError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, "id", eerr.Field)
	assert.Equal(t, int64(0), w.Count())

	writeRecords(t, w, `{"id":1}`)
	require.NoError(t, w.Close())
	assert.Equal(t, int64(1), openFooter(t, path).NumRows())
}

func TestAbort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.parquet")
	w, err := Create(path, testSchema())
	require.NoError(t, err)
	writeRecords(t, w, `{"id":1}`)
	w.Abort()
	w.Abort()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, w.Close())
}

func TestOptionErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")

	_, err := Create(path, testSchema(), WithCompression("rar"))
	assert.Error(t, err)

	_, err = Create(path, testSchema(), WithRowGroupSize(0))
	assert.Error(t, err)

	bad := schema.New("m", &schema.Field{Name: "d", Type: schema.Int32, Repetition: schema.Optional, Annotation: "TIME(MILLIS,true)"})
	_, err = Create(path, bad)
	assert.Error(t, err)
}

func TestCodec(t *testing.T) {
	for _, name := range []string{"snappy", "GZIP", "zstd", "lz4", "lz4_raw", "brotli", "none", "uncompressed", ""} {
		c, err := Codec(name)
		require.NoError(t, err, name)
		assert.NotNil(t, c)
	}
	_, err := Codec("lzo")
	assert.Error(t, err)
}
