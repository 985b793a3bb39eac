package output

import (
	"bufio"
	"io"
	"strconv"

	"github.com/vegasq/pq/codec"
)

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer *bufio.Writer
	buf    []byte
	// Index prints a "#<index>" line before every row
	Index bool
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: bufio.NewWriter(w)}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer.Reset(w)
}

// WriteRow writes one row as a JSON object on its own line
func (j *JSONFormatter) WriteRow(index int64, row codec.Value) error {
	j.buf = j.buf[:0]
	if j.Index && index != NoIndex {
		j.buf = append(j.buf, '#')
		j.buf = strconv.AppendInt(j.buf, index, 10)
		j.buf = append(j.buf, '\n')
	}
	j.buf = codec.AppendJSON(j.buf, row)
	j.buf = append(j.buf, '\n')
	_, err := j.writer.Write(j.buf)
	return err
}

// Flush writes buffered rows
func (j *JSONFormatter) Flush() error {
	return j.writer.Flush()
}
