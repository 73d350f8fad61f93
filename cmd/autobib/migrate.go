package main

import (
	"context"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Open the database, applying any pending schema migration",
	Long: `migrate opens the configured database, which is enough to trigger
store.Open's own migration path (spec.md §4.5: "on version mismatch
below current, it runs a linear sequence of migrations"). It exists as
an explicit, scriptable entry point distinct from every other
subcommand's implicit migrate-on-open behavior, mirroring the
teacher's dedicated migrate subcommand.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		logger.Info("database is at the current schema version")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
