package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vegasq/pq/output"
	"github.com/vegasq/pq/reader"
)

var blockHeader = []string{"row_group", "column", "type", "codec", "encodings", "values", "nulls", "compressed", "uncompressed"}

func (a *app) metadataCommand() *cobra.Command {
	var showBlocks bool
	cmd := &cobra.Command{
		Use:   "metadata FILE",
		Short: "Print the footer metadata of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.metadata(cmd, args[0], showBlocks)
		},
	}
	cmd.Flags().BoolVar(&showBlocks, "show-blocks", false, "Also list row groups and their column chunks")
	return cmd
}

func (a *app) metadata(cmd *cobra.Command, path string, showBlocks bool) error {
	f, err := reader.Open(path, reader.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := cmd.OutOrStdout()
	blocks := f.Blocks()
	fmt.Fprintf(w, "file: %s\n", f.Path())
	fmt.Fprintf(w, "created_by: %s\n", f.CreatedBy())
	fmt.Fprintf(w, "rows: %d\n", f.NumRows())
	fmt.Fprintf(w, "row_groups: %d\n", len(blocks))

	kv := f.KeyValue()
	if len(kv) > 0 {
		keys := make([]string, 0, len(kv))
		for k := range kv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, len(keys))
		for i, k := range keys {
			rows[i] = []string{k, kv[k]}
		}
		fmt.Fprintln(w)
		output.WriteTable(w, []string{"key", "value"}, rows)
	}

	if !showBlocks {
		return nil
	}
	var rows [][]string
	for _, b := range blocks {
		for _, c := range b.Columns {
			rows = append(rows, []string{
				strconv.Itoa(b.Index),
				c.Path,
				c.Type,
				c.Codec,
				strings.Join(c.Encodings, ","),
				strconv.FormatInt(c.NumValues, 10),
				strconv.FormatInt(c.NullCount, 10),
				strconv.FormatInt(c.CompressedSize, 10),
				strconv.FormatInt(c.UncompressedSize, 10),
			})
		}
	}
	fmt.Fprintln(w)
	output.WriteTable(w, blockHeader, rows)
	return nil
}
