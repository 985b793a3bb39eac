package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vegasq/pq/output"
	"github.com/vegasq/pq/reader"
)

func (a *app) schemaCommand() *cobra.Command {
	var (
		columns []string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "schema FILE",
		Short: "Print the schema of a file",
		Long: `Print the schema of a file as a message type definition (text), an
aligned table, or one JSON object or CSV row per column.

For a glob pattern the schema of the first matching file is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.schema(cmd, args[0], columns, format)
		},
	}
	cmd.Flags().StringSliceVar(&columns, "select", nil, "Top-level columns to include")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, table, json, jsonl, csv")
	return cmd
}

func (a *app) schema(cmd *cobra.Command, pattern string, columns []string, format string) error {
	paths, err := reader.Glob(pattern)
	if err != nil {
		return err
	}
	if len(paths) > 1 {
		fmt.Fprintf(cmd.ErrOrStderr(), "# Showing schema from: %s (%d files matched)\n", paths[0], len(paths))
	}
	f, err := reader.Open(paths[0], reader.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	s, err := f.Schema().Project(columns)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	switch format {
	case "text":
		_, err = fmt.Fprint(w, s.String())
		return err
	case "table":
		output.WriteTable(w, output.SchemaHeader, output.SchemaTable(s.ColumnInfos()))
		return nil
	}

	out, err := output.New(format, w, output.Options{Columns: output.SchemaHeader})
	if err != nil {
		return err
	}
	for _, row := range output.SchemaRows(s.ColumnInfos()) {
		if err := out.WriteRow(output.NoIndex, row); err != nil {
			return err
		}
	}
	return out.Flush()
}
