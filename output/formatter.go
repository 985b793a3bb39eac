package output

import (
	"fmt"
	"io"

	"github.com/vegasq/pq/codec"
)

// NoIndex marks a row without a file ordinal.
const NoIndex int64 = -1

// Formatter defines the interface for output formatters.
//
// Rows are written one at a time as they are scanned. Flush must be
// called once after the last row.
type Formatter interface {
	// WriteRow writes one row in the formatter's specific format
	WriteRow(index int64, row codec.Value) error

	// Flush writes any buffered output
	Flush() error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Options configure New.
type Options struct {
	// Columns are the CSV header names, in order.
	Columns []string
	// Index prints the row ordinal before each JSON row.
	Index bool
}

// New returns the formatter for a format name: json, jsonl or csv.
func New(format string, w io.Writer, opts Options) (Formatter, error) {
	switch format {
	case "json", "jsonl":
		f := NewJSONFormatter(w)
		f.Index = opts.Index
		return f, nil
	case "csv":
		return NewCSVFormatter(w, opts.Columns), nil
	default:
		return nil, fmt.Errorf("unsupported format '%s', supported formats: json, jsonl, csv", format)
	}
}
