package main

import (
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/vegasq/pq/filter"
	"github.com/vegasq/pq/reader"
)

func (a *app) countCommand() *cobra.Command {
	var filterText string
	cmd := &cobra.Command{
		Use:   "count FILE",
		Short: "Print the number of rows, or of rows matching a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			n, err := a.count(args[0], filterText)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
	cmd.Flags().StringVar(&filterText, "filter", "", "Filter expression, e.g. 'age >= 18'")
	return cmd
}

func (a *app) count(pattern, filterText string) (int64, error) {
	paths, err := reader.Glob(pattern)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, path := range paths {
		f, err := reader.Open(path, reader.WithLogger(a.logger))
		if err != nil {
			return 0, err
		}
		pred, err := filter.New(filterText, f.Schema())
		if err == nil {
			var n int64
			n, err = f.Count(pred)
			total += n
			level.Debug(a.logger).Log("msg", "counted rows", "path", path, "rows", n)
		}
		_ = f.Close()
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
