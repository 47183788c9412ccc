package commands

import (
	"github.com/spf13/cobra"

	"github.com/georgemunganga/nota-backend/internal/printer"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move legacy unscoped invoices into their tenants' namespaces",
	Long: `Scans LEGACY_BUCKET for invoice files written before tenants existed
and moves each into its owner's invoices directory. Files whose owner cannot
be determined are left in place. Do not run it while a server is serving.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := bootstrap()
		if err != nil {
			return err
		}
		rep, err := a.Migrator.Run(cmd.Context())
		if err != nil {
			return printer.Error("Migration failed", err.Error())
		}
		printer.Success("legacy migration finished")
		printer.Field("migrated", rep.Migrated)
		printer.Field("skipped", rep.Skipped)
		printer.Field("bucket removed", rep.BucketRemoved)
		if rep.Skipped > 0 {
			printer.Warning("%d file(s) left in %s; see the log for reasons", rep.Skipped, a.Config.LegacyBucket)
		}
		return nil
	},
}
