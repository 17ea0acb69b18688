package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/crudmaker/internal/ports/primary"
	"github.com/example/crudmaker/internal/wire"
)

// NewCmd returns the new command
func NewCmd() *cobra.Command {
	var req primary.GenerateRequest

	cmd := &cobra.Command{
		Use:   "new [table]",
		Short: "Generate a CRUD stack for a table",
		Long: `Generate repository, model, service, request, controller, views, routes,
tests and a factory entry for one table. A <section>_<table> argument puts
every artifact under the section's sub-namespace and wraps its routes in a
route group.

Schema entries are name[:type][?], e.g. "id,name:string,notes:text?,user_id:integer".
Relationship entries are kind|TargetEntity|column, e.g. "hasMany|App\Comment|comment".

Examples:
  crudmaker new posts
  crudmaker new shop_product --api --ui bootstrap
  crudmaker new shop_product --migration --schema "id,name:string,price:decimal"
  crudmaker new posts --serviceOnly --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := NewContext()
			defer cancel()

			req.Table = args[0]
			_, err := wire.CrudAdapterWithOutput(cmd.OutOrStdout()).Generate(ctx, req)
			return err
		},
	}

	cmd.Flags().BoolVar(&req.API, "api", false, "Also generate an API controller and routes")
	cmd.Flags().BoolVar(&req.APIOnly, "apiOnly", false, "Generate the API instead of controller, views and routes")
	cmd.Flags().StringVar(&req.UI, "ui", "", "View style: bootstrap or semantic")
	cmd.Flags().BoolVar(&req.ServiceOnly, "serviceOnly", false, "Only generate repository, service, tests and factory")
	cmd.Flags().BoolVar(&req.WithFacade, "withFacade", false, "Also generate a service facade")
	cmd.Flags().BoolVar(&req.Migration, "migration", false, "Also generate a create-table migration")
	cmd.Flags().StringVar(&req.Schema, "schema", "", "Migration columns (requires --migration)")
	cmd.Flags().StringVar(&req.Relationships, "relationships", "", "Model relationships")
	cmd.Flags().StringVar(&req.Framework, "framework", "", "Target framework: laravel or lumen (default laravel)")
	cmd.Flags().StringVar(&req.BasePath, "base", "", "Project root (default current directory)")
	cmd.Flags().StringVar(&req.ConfigPath, "config", "", "Config file (default crudmaker.toml, .yaml, .yml or .json in the project root)")
	cmd.Flags().StringVar(&req.JournalPath, "journal", "", "Record the run in this sqlite journal")
	cmd.Flags().BoolVar(&req.Record, "record", false, "Record the run in the default journal when none is configured")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Show what would be generated without writing")

	return cmd
}
