package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/georgemunganga/nota-backend/internal/printer"
)

var reindexTenants []string

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild invoice mirror documents from the ledger",
	Long: `Rewrites every invoice mirror from the tenant's transaction ledger. This
repairs mirrors lost when a crash hit between the ledger write and the mirror
write.

Examples:
  # every tenant
  nota-backend reindex

  # selected tenants
  nota-backend reindex --tenant user_1 --tenant user_2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := bootstrap()
		if err != nil {
			return err
		}
		reports, err := a.Reindex(cmd.Context(), reindexTenants...)
		if err != nil {
			return printer.Error("Reindex failed", err.Error())
		}
		failed := 0
		for _, rep := range reports {
			if rep.Err != nil {
				failed++
				printer.Warning("%s: %v", rep.TenantID, rep.Err)
				continue
			}
			printer.Success("%s: %d mirror(s) written", rep.TenantID, rep.Written)
		}
		if failed > 0 {
			return printer.Error(fmt.Sprintf("Reindex failed for %d tenant(s)", failed), "")
		}
		return nil
	},
}

func init() {
	reindexCmd.Flags().StringSliceVarP(&reindexTenants, "tenant", "t", nil, "Tenant id to rebuild (repeatable; default all)")
}
