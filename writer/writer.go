// Package writer creates parquet files from codec values.
//
// Records are encoded with codec.Write into a RowBuilder and appended to a
// parquet-go writer. Files are written to a temporary name next to the
// target and renamed on Close, so readers never see a partial file.
//
//	w, err := writer.Create("out.parquet", s, writer.WithCompression("zstd"))
//	if err != nil {
//	    return err
//	}
//	defer w.Abort()
//	for _, v := range values {
//	    if err := w.Write(v); err != nil {
//	        return err
//	    }
//	}
//	return w.Close()
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/vegasq/pq/codec"
	"github.com/vegasq/pq/schema"
)

// Version is recorded in the created_by field of written files.
const Version = "1.0.0"

type config struct {
	compression compress.Codec
	createdBy   string
	rowGroup    int64
	keyValues   [][2]string
	logger      log.Logger
}

// Option configures a Writer.
type Option func(*config) error

// WithCompression selects the page compression codec by name: snappy,
// gzip, zstd, lz4, brotli or none.
func WithCompression(name string) Option {
	return func(c *config) error {
		compression, err := Codec(name)
		if err != nil {
			return err
		}
		c.compression = compression
		return nil
	}
}

// WithCreatedBy sets the application recorded in the file footer.
func WithCreatedBy(application string) Option {
	return func(c *config) error {
		c.createdBy = application
		return nil
	}
}

// WithRowGroupSize limits the number of rows per row group.
func WithRowGroupSize(rows int64) Option {
	return func(c *config) error {
		if rows <= 0 {
			return fmt.Errorf("row group size must be positive, got %d", rows)
		}
		c.rowGroup = rows
		return nil
	}
}

// WithKeyValue adds a key/value pair to the file metadata.
func WithKeyValue(key, value string) Option {
	return func(c *config) error {
		c.keyValues = append(c.keyValues, [2]string{key, value})
		return nil
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// Codec returns the parquet-go compression codec with the given name.
func Codec(name string) (compress.Codec, error) {
	switch strings.ToLower(name) {
	case "snappy", "":
		return &parquet.Snappy, nil
	case "gzip":
		return &parquet.Gzip, nil
	case "zstd":
		return &parquet.Zstd, nil
	case "lz4", "lz4_raw":
		return &parquet.Lz4Raw, nil
	case "brotli":
		return &parquet.Brotli, nil
	case "none", "uncompressed":
		return &parquet.Uncompressed, nil
	default:
		return nil, fmt.Errorf("unknown compression codec: %s", name)
	}
}

// Writer appends records to a new parquet file.
type Writer struct {
	path   string
	tmp    string
	file   *os.File
	schema *schema.Schema
	pw     *parquet.Writer
	rows   *RowBuilder
	batch  []parquet.Row
	count  int64
	logger log.Logger
	closed bool
}

// Create starts a parquet file at path with schema s. The schema is
// normalized to the layout parquet-go writes, see schema.Normalize, and
// records must follow the normalized schema returned by Schema.
func Create(path string, s *schema.Schema, opts ...Option) (*Writer, error) {
	cfg := config{
		compression: &parquet.Snappy,
		createdBy:   "pq",
		logger:      log.NewNopLogger(),
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	normalized, err := s.Normalize()
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	ps, err := normalized.Parquet()
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	file, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	options := []parquet.WriterOption{
		ps,
		parquet.Compression(cfg.compression),
		parquet.CreatedBy(cfg.createdBy, Version, ""),
	}
	if cfg.rowGroup > 0 {
		options = append(options, parquet.MaxRowsPerRowGroup(cfg.rowGroup))
	}
	for _, kv := range cfg.keyValues {
		options = append(options, parquet.KeyValueMetadata(kv[0], kv[1]))
	}

	level.Debug(cfg.logger).Log("msg", "creating parquet file", "path", path, "tmp", tmp,
		"columns", normalized.NumColumns(), "compression", cfg.compression.String())

	return &Writer{
		path:   path,
		tmp:    tmp,
		file:   file,
		schema: normalized,
		pw:     parquet.NewWriter(file, options...),
		rows:   NewRowBuilder(normalized),
		batch:  make([]parquet.Row, 1),
		logger: cfg.logger,
	}, nil
}

// Schema returns the normalized schema records are written with.
func (w *Writer) Schema() *schema.Schema { return w.schema }

// Count returns the number of records written so far.
func (w *Writer) Count() int64 { return w.count }

// Write appends one record. A record that does not fit the schema returns
// a *codec.EncodeError and leaves the file unchanged.
func (w *Writer) Write(v codec.Value) error {
	if err := codec.Write(w.rows, v, w.schema); err != nil {
		return err
	}
	if err := w.rows.Err(); err != nil {
		return err
	}
	w.batch[0] = w.rows.Row()
	if _, err := w.pw.WriteRows(w.batch); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.count++
	return nil
}

// Close flushes the footer and moves the file into place.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.pw.Close(); err != nil {
		w.discard()
		return fmt.Errorf("failed to finish file: %w", err)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.tmp)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(w.tmp, w.path); err != nil {
		_ = os.Remove(w.tmp)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	level.Debug(w.logger).Log("msg", "wrote parquet file", "path", w.path, "rows", w.count)
	return nil
}

// Abort drops the file. It is a no-op after Close.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	w.discard()
	level.Debug(w.logger).Log("msg", "aborted parquet file", "path", w.path)
}

func (w *Writer) discard() {
	_ = w.file.Close()
	_ = os.Remove(w.tmp)
}
