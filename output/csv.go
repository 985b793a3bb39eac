package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/pq/codec"
)

// CSVFormatter outputs rows as CSV format with a header row
type CSVFormatter struct {
	writer  *csv.Writer
	columns []string
	header  bool
	record  []string
}

// NewCSVFormatter creates a new CSV formatter writing the given columns
func NewCSVFormatter(w io.Writer, columns []string) *CSVFormatter {
	return &CSVFormatter{
		writer:  csv.NewWriter(w),
		columns: columns,
		record:  make([]string, len(columns)),
	}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = csv.NewWriter(w)
	c.header = false
}

func (c *CSVFormatter) writeHeader() error {
	if c.header {
		return nil
	}
	c.header = true
	return c.writer.Write(c.columns)
}

// WriteRow writes the row's top-level fields in column order. The index is
// not printed.
func (c *CSVFormatter) WriteRow(_ int64, row codec.Value) error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	obj := row.Object()
	for i, col := range c.columns {
		c.record[i] = ""
		if obj == nil {
			continue
		}
		if v, ok := obj.Get(col); ok {
			c.record[i] = formatValue(v)
		}
	}
	return c.writer.Write(c.record)
}

// Flush writes the header if no row was written and flushes the writer
func (c *CSVFormatter) Flush() error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// formatValue converts a value to string for CSV output
func formatValue(v codec.Value) string {
	switch v.Kind() {
	case codec.Null:
		return ""
	case codec.String:
		return sanitize(v.Text())
	default:
		// numbers, booleans and nested values use their JSON representation
		return v.String()
	}
}

// sanitize guards against CSV injection by prefixing dangerous characters
// that could trigger formula execution in spreadsheet applications
func sanitize(val string) string {
	if len(val) > 0 {
		switch val[0] {
		case '=', '+', '-', '@', '\t', '\r', '\n', '|':
			// Escape existing single quotes and prefix with quote to prevent formula injection
			return "'" + strings.ReplaceAll(val, "'", "''")
		}
	}
	return val
}
