package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/factorycraft/factory-economy/internal/application/catalog/commands"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/infrastructure/bootstrap"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Resource and recipe catalogs",
	}

	cmd.AddCommand(newCatalogCheckCommand())
	cmd.AddCommand(newCatalogResourcesCommand())

	return cmd
}

// newCatalogCheckCommand loads the catalog files the way the daemon does and
// reports what would be skipped.
func newCatalogCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog files",
		Long: `Load the resource and recipe files and report skipped entries and
recipes that reference unknown resources. Exits non-zero when either is found.

Example:
  factoryctl catalog check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, false, func(ctx context.Context, e *bootstrap.Engine) error {
				resp, err := mediator.SendAs[*commands.ReloadCatalogResponse](ctx, e.Mediator, &commands.ReloadCatalogCommand{})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				r := resp.Result
				fmt.Fprintf(out, "Loaded %d resources and %d recipes\n", r.Resources, r.Recipes)
				for _, w := range r.Warnings {
					fmt.Fprintf(out, "  %s\n", w)
				}
				for _, u := range r.Unresolved {
					fmt.Fprintf(out, "  unresolved: %v\n", u)
				}
				if n := len(r.Warnings) + len(r.Unresolved); n > 0 {
					return fmt.Errorf("%d catalog problems found", n)
				}
				return nil
			})
		},
	}
}

func newCatalogResourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List resource definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, false, func(ctx context.Context, e *bootstrap.Engine) error {
				w := newTable(cmd.OutOrStdout())
				resources := e.Catalogs.Resources()
				fmt.Fprintln(w, "ID\tNAME\tSELL PRICE\tSOURCE")
				for _, id := range resources.IDs() {
					def, err := resources.Get(id)
					if err != nil {
						return err
					}
					source := "native"
					if def.IsExternal() {
						source = fmt.Sprintf("%s:%s", def.External.Kind, def.External.ID)
					}
					fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", def.ID, def.DisplayName, def.SellPrice, source)
				}
				return w.Flush()
			})
		},
	}
}
