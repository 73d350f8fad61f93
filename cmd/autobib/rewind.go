package main

import (
	"context"
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/autobib/autobib/internal/statemachine"
	"github.com/autobib/autobib/internal/store"
)

var whenParser *when.Parser

func init() {
	whenParser = when.New(nil)
	whenParser.Add(en.All...)
	whenParser.Add(common.All...)
}

var rewindCmd = &cobra.Command{
	Use:   "rewind <key> --before <when>",
	Short: "Rewind a record to its state as of a point in time",
	Long: `rewind applies the state machine's rewind(before) transition
(spec.md §4.6): it finds the latest row sharing the key's canonical id
with modified <= before, or synthesizes a Void root if before predates
every row in the chain. --before accepts natural-language expressions
("yesterday", "last Tuesday") parsed by github.com/olebedev/when, or an
RFC 3339 timestamp.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		key := args[0]

		beforeStr, _ := cmd.Flags().GetString("before")
		if beforeStr == "" {
			return fmt.Errorf("rewind: --before is required")
		}
		before, err := parseBefore(beforeStr)
		if err != nil {
			return fmt.Errorf("rewind: parsing --before %q: %w", beforeStr, err)
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		if db.ReadOnly() {
			return ErrReadOnlyCommand("rewind")
		}

		var result *statemachine.State
		err = db.RunWrite(ctx, func(tx *store.Tx) error {
			st, err := statemachine.Locate(ctx, tx, key)
			if err != nil {
				return err
			}
			if st.Row == nil {
				return fmt.Errorf("%q has no history to rewind", key)
			}
			result, err = st.Rewind(ctx, tx, before)
			return err
		})
		if err != nil {
			return err
		}

		logger.Info("%s is now %s (row %s)", key, result.Kind, statemachine.FormatRowID(result.Row.Key))
		return nil
	},
}

// parseBefore accepts an RFC 3339 timestamp or a natural-language
// expression ("yesterday", "3 days ago"), per spec.md §9's note that
// a future --before is treated as "latest row" by FindAsOf itself.
func parseBefore(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	result, err := whenParser.Parse(s, time.Now())
	if err != nil {
		return time.Time{}, err
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("could not understand %q as a date/time", s)
	}
	return result.Time, nil
}

func init() {
	rewindCmd.Flags().String("before", "", "point in time to rewind to (natural language or RFC 3339)")
	rootCmd.AddCommand(rewindCmd)
}
