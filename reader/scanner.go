package reader

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-kit/log/level"
	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/pq/codec"
	"github.com/vegasq/pq/filter"
	"github.com/vegasq/pq/schema"
)

const rowBatchSize = 128

// Scanner iterates over the rows of a file that match a predicate.
//
//	s, err := f.Scan(pred, f.Schema())
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	for s.Next() {
//	    fmt.Println(s.Index(), s.Value())
//	}
//	return s.Err()
//
// A Scanner must not be shared between goroutines.
type Scanner struct {
	file       *File
	pred       filter.Predicate
	unfiltered bool
	projection *schema.Schema
	asm        *codec.Assembler

	groups  []parquet.RowGroup
	group   int
	skipped int
	rows    parquet.Rows
	eof     bool
	buf     []parquet.Row
	n, pos  int

	next    int64
	current int64
	cols    rowColumns
	value   codec.Value
	err     error
}

// Scan starts an iteration over the rows matching p. The matching rows are
// assembled with the fields of projection, which must be the file schema
// or a projection of it. A nil projection only evaluates the predicate,
// Value then returns Null.
//
// Row groups whose column statistics prove that no row can match are
// skipped without being read. Within a read row group every column is
// decoded, since the predicate may test any of them; the projection only
// limits which fields are assembled.
func (f *File) Scan(p filter.Predicate, projection *schema.Schema) (*Scanner, error) {
	if p == nil {
		p = filter.Unfiltered
	}
	s := &Scanner{
		file:       f,
		pred:       p,
		unfiltered: filter.IsUnfiltered(p),
		projection: projection,
		groups:     f.pqFile.RowGroups(),
		group:      -1,
		buf:        make([]parquet.Row, rowBatchSize),
		cols:       make(rowColumns, f.schema.NumColumns()),
	}
	if projection != nil {
		asm, err := codec.NewAssembler(projection)
		if err != nil {
			return nil, err
		}
		s.asm = asm
	}
	return s, nil
}

// Next advances to the next matching row.
func (s *Scanner) Next() bool {
	for s.err == nil {
		if s.pos < s.n {
			row := s.buf[s.pos]
			s.pos++
			index := s.next
			s.next++

			s.cols.split(row)
			if !s.unfiltered && !s.pred.Keep(s.cols) {
				continue
			}
			s.current = index
			if s.asm != nil {
				s.assemble()
			}
			return true
		}

		if s.rows != nil && !s.eof {
			n, err := s.rows.ReadRows(s.buf)
			s.n, s.pos = n, 0
			if err != nil {
				if !errors.Is(err, io.EOF) {
					s.err = fmt.Errorf("failed to read row group %d of %s: %w", s.group, s.file.path, err)
					return false
				}
				s.eof = true
			}
			continue
		}

		if !s.nextGroup() {
			return false
		}
	}
	return false
}

func (s *Scanner) nextGroup() bool {
	s.closeRows()
	for s.group+1 < len(s.groups) {
		s.group++
		rg := s.groups[s.group]
		if !s.unfiltered && s.pred.Drop(rowGroupStats(rg.ColumnChunks())) {
			s.skipped++
			s.next += rg.NumRows()
			level.Debug(s.file.logger).Log("msg", "skipping row group", "path", s.file.path,
				"row_group", s.group, "rows", rg.NumRows())
			continue
		}
		s.rows = rg.Rows()
		s.eof = false
		return true
	}
	return false
}

func (s *Scanner) closeRows() {
	if s.rows != nil {
		if err := s.rows.Close(); err != nil && s.err == nil {
			s.err = fmt.Errorf("failed to close row group %d of %s: %w", s.group, s.file.path, err)
		}
		s.rows = nil
	}
	s.n, s.pos = 0, 0
}

// Index returns the ordinal of the current row within the file.
func (s *Scanner) Index() int64 { return s.current }

// Value returns the current row assembled with the projection.
func (s *Scanner) Value() codec.Value { return s.value }

// SkippedRowGroups returns how many row groups statistics ruled out so far.
func (s *Scanner) SkippedRowGroups() int { return s.skipped }

// Err returns the first error met by Next.
func (s *Scanner) Err() error { return s.err }

// Close releases the open row group.
func (s *Scanner) Close() error {
	s.closeRows()
	s.group = len(s.groups)
	return s.err
}

// rowColumns holds the values of one row split by leaf column.
type rowColumns [][]parquet.Value

func (c rowColumns) Column(i int) []parquet.Value {
	if i < 0 || i >= len(c) {
		return nil
	}
	return c[i]
}

func (c rowColumns) split(row parquet.Row) {
	for i := range c {
		c[i] = nil
	}
	// values of a row are ordered by column
	start := 0
	for start < len(row) {
		col := row[start].Column()
		end := start + 1
		for end < len(row) && row[end].Column() == col {
			end++
		}
		if col >= 0 && col < len(c) {
			c[col] = row[start:end]
		}
		start = end
	}
}

// assemble replays the current row into the assembler following the
// repetition and definition levels of the projected fields.
func (s *Scanner) assemble() {
	a := s.asm
	a.Start(a.Root())
	s.groupFields(a.Root(), s.projection.Fields, s.cols)
	a.End(a.Root())
	s.value = a.Value()
}

func (s *Scanner) groupFields(id int, fields []*schema.Field, cols [][]parquet.Value) {
	for i, f := range fields {
		s.field(s.asm.Child(id, i), f, cols)
	}
}

// field delivers one field of the current group instance. cols holds only
// the values of that instance.
func (s *Scanner) field(id int, f *schema.Field, cols [][]parquet.Value) {
	first, last := f.Columns()
	if first >= last {
		return
	}
	probe := cols[first]
	if len(probe) == 0 || probe[0].DefinitionLevel() < f.MaxDefinitionLevel() {
		return
	}
	if !f.Repeated() {
		s.present(id, f, cols)
		return
	}

	rep := f.MaxRepetitionLevel()
	sub := make([][]parquet.Value, len(cols))
	pos := make([]int, last-first)
	for {
		more := false
		for c := first; c < last; c++ {
			values := cols[c]
			start := pos[c-first]
			if start >= len(values) {
				sub[c] = nil
				continue
			}
			more = true
			end := start + 1
			for end < len(values) && values[end].RepetitionLevel() > rep {
				end++
			}
			sub[c] = values[start:end]
			pos[c-first] = end
		}
		if !more {
			return
		}
		s.present(id, f, sub)
	}
}

// present delivers a single present value of f.
func (s *Scanner) present(id int, f *schema.Field, cols [][]parquet.Value) {
	if f.Leaf() {
		s.asm.Add(id, cols[f.Column()][0])
		return
	}
	s.asm.Start(id)
	s.groupFields(id, f.Fields, cols)
	s.asm.End(id)
}
