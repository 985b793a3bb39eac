// Command pq reads, filters, inspects and writes Apache Parquet files.
package main

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vegasq/pq/internal/config"
	"github.com/vegasq/pq/internal/logging"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger log.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New(), logger: log.NewNopLogger()}

	root := &cobra.Command{
		Use:   "pq",
		Short: "A tool to read, filter and write Parquet files",
		Long: `pq reads Parquet files as JSON or CSV, filtering rows with expressions
such as 'age >= 18 && name != null', and writes JSON or CSV input back to
Parquet using a message type schema.

Settings can also be given as PQ_* environment variables, e.g. PQ_FORMAT=csv.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.readCommand(),
		a.countCommand(),
		a.schemaCommand(),
		a.metadataCommand(),
		a.writeCommand(),
	)
	return root
}

// setup resolves the configuration of a command and builds its logger.
func (a *app) setup(cmd *cobra.Command, keys ...string) error {
	if err := config.BindFlags(a.v, cmd, append([]string{"verbose"}, keys...)...); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), cfg.Verbose)
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
