package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobib/autobib/internal/store"
	"github.com/autobib/autobib/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check database integrity (spec.md §4.8)",
	Long: `validate runs every integrity check in spec.md §4.8 against the
store and reports faults without modifying it, unless --fix is given,
in which case it also applies the safe, mechanical repairs described in
internal/validate's Fix.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		fix, _ := cmd.Flags().GetBool("fix")

		if fix {
			db, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			if db.ReadOnly() {
				return ErrReadOnlyCommand("validate --fix")
			}

			var report validate.FixReport
			err = db.RunWrite(ctx, func(tx *store.Tx) error {
				var fixErr error
				report, fixErr = validate.Fix(ctx, tx)
				return fixErr
			})
			if err != nil {
				return err
			}
			logger.Info("fixed %d dangling identifier(s), cleared %d dangling parent pointer(s)",
				report.DeletedIdentifiers, report.ClearedParents)
			return reportFaults(report.Remaining)
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		var report validate.Report
		err = db.RunRead(ctx, func(tx *store.Tx) error {
			var readErr error
			report, readErr = validate.Validate(ctx, tx)
			return readErr
		})
		if err != nil {
			return err
		}
		return reportFaults(report)
	},
}

// reportFaults logs every remaining fault at error level (so the
// process exits non-zero, spec.md §6.5) and returns nil: validate
// itself never fails just because faults were found, it only fails on
// a backend error reaching it.
func reportFaults(report validate.Report) error {
	if !report.HasErrors() {
		logger.Info("no integrity faults found")
		return nil
	}
	for _, f := range report.Faults {
		logger.Error("%s", f.String())
	}
	return fmt.Errorf("validate: %d integrity fault(s) found", len(report.Faults))
}

func init() {
	validateCmd.Flags().Bool("fix", false, "apply safe, mechanical repairs for repairable faults")
	rootCmd.AddCommand(validateCmd)
}
