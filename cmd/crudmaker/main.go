package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/crudmaker/internal/cli"
	"github.com/example/crudmaker/internal/version"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "crudmaker",
		Short:   "crudmaker - CRUD scaffolding for Laravel and Lumen",
		Version: version.String(),
		Long: `crudmaker generates a full CRUD vertical slice (repository, model, service,
controller, views, routes, tests, factory entry and optionally an API,
a facade and a migration) for a Laravel or Lumen project from a table name.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.ConfigureLogging(os.Stderr, verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")

	rootCmd.AddCommand(cli.NewCmd())
	rootCmd.AddCommand(cli.HistoryCmd())
	rootCmd.AddCommand(cli.PublishCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
