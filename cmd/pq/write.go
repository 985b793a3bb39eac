package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/vegasq/pq/codec"
	"github.com/vegasq/pq/schema"
	"github.com/vegasq/pq/writer"
)

// maxLineSize bounds a single JSON input line.
const maxLineSize = 64 << 20

type writeOptions struct {
	schemaFile string
	format     string
	header     bool
}

func (a *app) writeCommand() *cobra.Command {
	var opts writeOptions
	cmd := &cobra.Command{
		Use:   "write FILE",
		Short: "Write JSON lines or CSV rows from stdin to a Parquet file",
		Example: `  pq write --schema users.schema users.parquet < users.jsonl
  pq write --schema users.schema --format csv --header --compression zstd users.parquet < users.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, "compression"); err != nil {
				return err
			}
			return a.write(cmd, args[0], opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.schemaFile, "schema", "", "File holding the message type definition")
	flags.StringVar(&opts.format, "format", "json", "Input format: json, csv")
	flags.BoolVar(&opts.header, "header", false, "Skip the first CSV record")
	flags.String("compression", "snappy", "Compression codec: snappy, gzip, zstd, lz4, brotli, none")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func (a *app) write(cmd *cobra.Command, path string, opts writeOptions) error {
	text, err := os.ReadFile(opts.schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	s, err := schema.Parse(string(text))
	if err != nil {
		return err
	}

	var next func() (codec.Value, error)
	switch opts.format {
	case "json", "jsonl":
		next = jsonRecords(cmd.InOrStdin())
	case "csv":
		next, err = csvRecords(cmd.InOrStdin(), s, opts.header)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported input format '%s', supported formats: json, csv", opts.format)
	}

	w, err := writer.Create(path, s,
		writer.WithCompression(a.cfg.Compression),
		writer.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}
	for record := 1; ; record++ {
		v, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			err = w.Write(v)
		}
		if err != nil {
			w.Abort()
			return fmt.Errorf("record %d: %w", record, err)
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	level.Info(a.logger).Log("msg", "wrote parquet file", "path", path, "rows", w.Count(), "compression", a.cfg.Compression)
	return nil
}

// jsonRecords reads one JSON object per line. Blank lines are skipped.
func jsonRecords(r io.Reader) func() (codec.Value, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return func() (codec.Value, error) {
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			return codec.ParseJSON(line)
		}
		if err := sc.Err(); err != nil {
			return codec.Value{}, err
		}
		return codec.Value{}, io.EOF
	}
}

// csvRecords maps CSV records to the top-level fields of s by position.
func csvRecords(r io.Reader, s *schema.Schema, header bool) (func() (codec.Value, error), error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if header {
		if _, err := cr.Read(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read CSV header: %w", err)
		}
	}
	return func() (codec.Value, error) {
		record, err := cr.Read()
		if err != nil {
			return codec.Value{}, err
		}
		return codec.ParseCSVRecord(record, s)
	}, nil
}
