package main

import (
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/vegasq/pq/codec"
	"github.com/vegasq/pq/filter"
	"github.com/vegasq/pq/output"
	"github.com/vegasq/pq/reader"
	"github.com/vegasq/pq/schema"
)

type readOptions struct {
	filter  string
	columns []string
	index   bool
	sel     selection
}

func (a *app) readCommand() *cobra.Command {
	var opts readOptions
	cmd := &cobra.Command{
		Use:   "read FILE",
		Short: "Print the rows of a file",
		Example: `  pq read data.parquet
  pq read --filter 'age > 30 && name != null' --select name,age data.parquet
  pq read --format csv --head 10 'logs/*.parquet'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, "format"); err != nil {
				return err
			}
			return a.read(cmd, args[0], opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.filter, "filter", "", "Filter expression, e.g. 'age >= 18'")
	flags.StringSliceVar(&opts.columns, "select", nil, "Top-level columns to print, e.g. name,age")
	flags.Int64Var(&opts.sel.head, "head", 0, "Print the first N rows")
	flags.Int64Var(&opts.sel.tail, "tail", 0, "Print the last N rows")
	flags.Int64Var(&opts.sel.get, "get", -1, "Print only the row at this position")
	flags.Int64Var(&opts.sel.skip, "skip", 0, "Skip the first N rows")
	flags.BoolVar(&opts.index, "index", false, "Print the row index before each JSON row")
	flags.String("format", "json", "Output format: json, jsonl, csv")
	return cmd
}

func (a *app) read(cmd *cobra.Command, pattern string, opts readOptions) error {
	if opts.sel.skip < 0 || opts.sel.head < 0 || opts.sel.tail < 0 {
		return fmt.Errorf("--skip, --head and --tail must be non-negative")
	}
	expr, err := filter.Parse(opts.filter)
	if err != nil {
		return err
	}
	paths, err := reader.Glob(pattern)
	if err != nil {
		return err
	}

	var out output.Formatter
	sel := newSelector(opts.sel)
	var offset int64
	for _, path := range paths {
		f, err := reader.Open(path, reader.WithLogger(a.logger))
		if err != nil {
			return err
		}
		projection, err := readProjection(f.Schema(), expr, opts.columns)
		if err != nil {
			_ = f.Close()
			return err
		}
		if out == nil {
			out, err = output.New(a.cfg.Format, cmd.OutOrStdout(), output.Options{
				Columns: fieldNames(projection),
				Index:   opts.index,
			})
			if err != nil {
				_ = f.Close()
				return err
			}
		}
		done, err := a.scan(f, expr, projection, offset, sel, out)
		offset += f.NumRows()
		_ = f.Close()
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	for _, r := range sel.rest() {
		if err := out.WriteRow(r.index, r.value); err != nil {
			return err
		}
	}
	return out.Flush()
}

// scan writes the selected rows of one file. offset is the number of rows
// in the files before it.
func (a *app) scan(f *reader.File, expr filter.Expr, projection *schema.Schema, offset int64, sel *selector, out output.Formatter) (bool, error) {
	typed, err := filter.Bind(expr, f.Schema())
	if err != nil {
		return false, err
	}
	pred, err := filter.Compile(typed)
	if err != nil {
		return false, err
	}

	s, err := f.Scan(pred, projection)
	if err != nil {
		return false, err
	}
	defer func() { _ = s.Close() }()

	for s.Next() {
		emit, done := sel.offer(offset+s.Index(), s.Value())
		if emit {
			if err := out.WriteRow(offset+s.Index(), s.Value()); err != nil {
				return false, err
			}
		}
		if done {
			return true, nil
		}
	}
	if err := s.Err(); err != nil {
		return false, err
	}
	level.Debug(a.logger).Log("msg", "scanned file", "path", f.Path(), "filter", typed, "skipped_row_groups", s.SkippedRowGroups())
	return false, nil
}

// readProjection selects the requested top-level fields plus those the
// filter reads. No selection keeps every field.
func readProjection(s *schema.Schema, expr filter.Expr, columns []string) (*schema.Schema, error) {
	if len(columns) == 0 {
		return s, nil
	}
	seen := make(map[string]bool, len(columns))
	var names []string
	wanted := append(append([]string(nil), columns...), filter.TopLevelColumns(expr)...)
	for _, name := range wanted {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return s.Project(names)
}

func fieldNames(s *schema.Schema) []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// selection picks rows out of the matching ones. head takes precedence
// over tail, and tail over get. All positions count after skip.
type selection struct {
	skip int64
	head int64
	tail int64
	get  int64
}

type indexedRow struct {
	index int64
	value codec.Value
}

type selector struct {
	sel  selection
	seen int64
	ring []indexedRow
}

func newSelector(sel selection) *selector { return &selector{sel: sel} }

// offer reports whether a matching row is printed now and whether no
// later row can be.
func (s *selector) offer(index int64, v codec.Value) (emit, done bool) {
	if s.seen < s.sel.skip {
		s.seen++
		return false, false
	}
	pos := s.seen - s.sel.skip
	s.seen++

	switch {
	case s.sel.head > 0:
		return pos < s.sel.head, pos+1 >= s.sel.head
	case s.sel.tail > 0:
		s.ring = append(s.ring, indexedRow{index: index, value: v})
		if int64(len(s.ring)) > s.sel.tail {
			s.ring = s.ring[1:]
		}
		return false, false
	case s.sel.get >= 0:
		return pos == s.sel.get, pos >= s.sel.get
	default:
		return true, false
	}
}

// rest returns the rows held back for tail.
func (s *selector) rest() []indexedRow { return s.ring }
