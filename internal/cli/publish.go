package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/crudmaker/internal/ports/primary"
	"github.com/example/crudmaker/internal/wire"
)

// PublishCmd returns the publish command
func PublishCmd() *cobra.Command {
	var req primary.PublishRequest

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Copy the default templates into the project",
		Long: `Copy the default templates to resources/crudmaker/crud for customisation
and write a starter crudmaker.toml. Later runs of crudmaker new read the
published templates instead of the built-in ones.

Existing templates and config are kept unless --force is given.

Examples:
  crudmaker publish
  crudmaker publish --framework lumen --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := NewContext()
			defer cancel()

			_, err := wire.CrudAdapterWithOutput(cmd.OutOrStdout()).Publish(ctx, req)
			return err
		},
	}

	cmd.Flags().StringVar(&req.Framework, "framework", "", "Templates to publish: laravel or lumen")
	cmd.Flags().StringVar(&req.BasePath, "base", "", "Project root (default current directory)")
	cmd.Flags().BoolVar(&req.Force, "force", false, "Overwrite published templates and the config")

	return cmd
}
