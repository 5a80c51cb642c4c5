package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/strengthscope/internal/catalog"
	"github.com/alexanderramin/strengthscope/internal/cli/formatter"
)

var errCatalogInvalid = errors.New("catalog is invalid")

func newCatalogCmd(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate trait catalogs",
	}
	cmd.AddCommand(newCatalogValidateCmd(), newCatalogExportCmd(), newCatalogShowCmd(st))
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a catalog file and list every problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.DecodeFile(args[0])
			if err != nil {
				return err
			}
			errs := catalog.Validate(c)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatValidation(args[0], errs))
			if len(errs) > 0 {
				return fmt.Errorf("%w: %d problem(s)", errCatalogInvalid, len(errs))
			}
			if unmapped := c.Unmapped(); len(unmapped) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim(fmt.Sprintf("%d trait(s) outside any category", len(unmapped))))
			}
			return nil
		},
	}
}

func newCatalogExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the built-in catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(catalog.DefaultDocument())
			return err
		},
	}
}

func newCatalogShowCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the traits of the active catalog by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.load(cmd)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatCatalog(app.Catalog))
			return nil
		},
	}
}

func formatCatalog(c *catalog.Catalog) string {
	rows := make([][]string, 0, len(c.Traits))
	for _, t := range c.Traits {
		category := formatter.Dim("-")
		if cat, ok := c.CategoryOf(t.ID); ok {
			category = formatter.Swatch(cat.Color, cat.Name)
		}
		rows = append(rows, []string{t.ID, t.Name, category, fmt.Sprint(len(t.Statements))})
	}
	return formatter.RenderTable([]string{"ID", "Trait", "Category", "Statements"}, rows, 3)
}
