package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the permission catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every page maps to a known module",
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}

		return checkCatalog(catalog, cmd.OutOrStdout())
	},
}

// checkCatalog fails when a module has no page, since grants on it would not
// survive a round trip through the page tree.
func checkCatalog(catalog *permission.Catalog, out io.Writer) error {
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("permission catalog is inconsistent: %w", err)
	}
	if unmapped := catalog.UnmappedModules(); len(unmapped) > 0 {
		return fmt.Errorf("modules without pages: %v", unmapped)
	}
	fmt.Fprintf(out, "catalog ok: %d modules, %d sections\n", len(catalog.Modules()), len(catalog.Sections()))
	return nil
}

type catalogDump struct {
	Modules  []permission.Module     `json:"modules"`
	Sections []permission.Section    `json:"sections"`
	Actions  map[string]string       `json:"actions"`
	Order    []permission.ActionType `json:"action_order"`
}

var catalogPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Dump modules, sections and pages as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog := permission.DefaultCatalog()

		labels := make(map[string]string, len(permission.Actions))
		for _, a := range permission.Actions {
			labels[string(a)] = a.Label()
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(catalogDump{
			Modules:  catalog.Modules(),
			Sections: catalog.Sections(),
			Actions:  labels,
			Order:    permission.Actions,
		})
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogPrintCmd)
	rootCmd.AddCommand(catalogCmd)
}

