package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/crudmaker/internal/ports/primary"
	"github.com/example/crudmaker/internal/wire"
)

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	var req primary.HistoryRequest
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled generation runs",
		Long: `List generation runs recorded in the journal, newest first.

The journal is --journal, else journal from the project config, else
~/.crudmaker/journal.db.

Examples:
  crudmaker history
  crudmaker history --limit 5 --files
  crudmaker history --run 3
  crudmaker history --journal var/crudmaker.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			if req.RunID < 0 {
				return fmt.Errorf("--run must be a run id")
			}
			ctx, cancel := NewContext()
			defer cancel()

			_, err := wire.CrudAdapterWithOutput(cmd.OutOrStdout()).History(ctx, req, showFiles)
			return err
		},
	}

	cmd.Flags().StringVar(&req.JournalPath, "journal", "", "Journal to read")
	cmd.Flags().StringVar(&req.BasePath, "base", "", "Project root (default current directory)")
	cmd.Flags().StringVar(&req.ConfigPath, "config", "", "Config file")
	cmd.Flags().IntVarP(&req.Limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&showFiles, "files", false, "List the files of every run")
	cmd.Flags().Int64Var(&req.RunID, "run", 0, "Show a single run with its files")

	return cmd
}
