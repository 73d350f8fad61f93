package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobib/autobib/internal/store"
)

var evictCmd = &cobra.Command{
	Use:   "evict --pattern <regex> --older-than <when>",
	Short: "Evict stale null-record cache entries (spec.md §4.5)",
	Long: `evict deletes NullRecords entries (spec.md §3's negative cache)
whose canonical id matches --pattern and whose last attempt predates
--older-than, so a later get retries those providers instead of trusting
a stale confirmed-miss. --pattern is matched against the canonical id via
the store's regexp() SQL function; --older-than accepts the same
natural-language or RFC 3339 forms as rewind's --before.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		pattern, _ := cmd.Flags().GetString("pattern")
		olderThanStr, _ := cmd.Flags().GetString("older-than")
		if olderThanStr == "" {
			return fmt.Errorf("evict: --older-than is required")
		}
		olderThan, err := parseBefore(olderThanStr)
		if err != nil {
			return fmt.Errorf("evict: parsing --older-than %q: %w", olderThanStr, err)
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		if db.ReadOnly() {
			return ErrReadOnlyCommand("evict")
		}

		var evicted int64
		err = db.RunWrite(ctx, func(tx *store.Tx) error {
			var evictErr error
			evicted, evictErr = tx.EvictNullRecords(ctx, pattern, olderThan)
			return evictErr
		})
		if err != nil {
			return err
		}
		logger.Info("evicted %d null record(s) matching %q", evicted, pattern)
		return nil
	},
}

func init() {
	evictCmd.Flags().String("pattern", ".", "regex matched against each cached canonical id")
	evictCmd.Flags().String("older-than", "", "evict cached misses last attempted before this point in time")
	rootCmd.AddCommand(evictCmd)
}
