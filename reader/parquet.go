package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/vegasq/pq/filter"
	"github.com/vegasq/pq/schema"
)

// MaxGlobFiles limits how many files a glob pattern may expand to.
const MaxGlobFiles = 1000

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(f *File) { f.logger = logger }
}

// File is an open parquet file.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup.
type File struct {
	path   string
	file   *os.File
	pqFile *parquet.File
	schema *schema.Schema
	logger log.Logger
}

// Open opens the parquet file at path and decodes its schema from the
// footer.
//
// Returns an error if the file doesn't exist or is not a valid parquet
// file.
//
// Example:
//
//	f, err := reader.Open("data.parquet")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
func Open(path string, opts ...Option) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	s, err := schema.FromMetadata(pqFile.Metadata().Schema)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read schema of %s: %w", path, err)
	}

	f := &File{
		path:   path,
		file:   file,
		pqFile: pqFile,
		schema: s,
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	level.Debug(f.logger).Log("msg", "opened parquet file", "path", path, "size", stat.Size(),
		"rows", f.NumRows(), "row_groups", len(pqFile.RowGroups()), "columns", s.NumColumns())
	return f, nil
}

// Path returns the path the file was opened with.
func (f *File) Path() string { return f.path }

// Schema returns the file schema.
func (f *File) Schema() *schema.Schema { return f.schema }

// NumRows returns the row count recorded in the footer.
func (f *File) NumRows() int64 { return f.pqFile.NumRows() }

// Metadata returns the decoded file footer.
func (f *File) Metadata() *format.FileMetaData { return f.pqFile.Metadata() }

// Count returns the number of rows matching p. Without a filter the
// footer row count is returned and no data is read.
func (f *File) Count(p filter.Predicate) (int64, error) {
	if filter.IsUnfiltered(p) {
		return f.NumRows(), nil
	}
	s, err := f.Scan(p, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = s.Close() }()

	var n int64
	for s.Next() {
		n++
	}
	return n, s.Err()
}

// Close releases the file handle. It is safe to call Close multiple times.
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Glob expands a file pattern.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// A path without wildcards is returned as is. Returns an error if no files
// match the pattern or if it matches more than MaxGlobFiles files.
func Glob(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[]") {
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > MaxGlobFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), MaxGlobFiles)
	}
	return matches, nil
}
