package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/autobib/autobib/internal/aliastransform"
	"github.com/autobib/autobib/internal/config"
	"github.com/autobib/autobib/internal/ident"
	"github.com/autobib/autobib/internal/provider"
	"github.com/autobib/autobib/internal/resolve"
	"github.com/autobib/autobib/internal/statemachine"
	"github.com/autobib/autobib/internal/store"
)

var getCmd = &cobra.Command{
	Use:   "get <key>...",
	Short: "Resolve citation keys and print BibTeX",
	Long: `get resolves each key against the local store (spec.md §4.7's
get_record_row pipeline), fetching missing records from the
appropriate provider, and prints the resulting entry as BibTeX.

Failures on individual keys do not abort the run (spec.md §7:
"best-effort continuation across multiple inputs"); the process still
exits non-zero if any key failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		// A get invocation can resolve many keys, each possibly making a
		// network round-trip, so it watches the alias-transform rules
		// file for the run's duration and picks up edits between keys
		// rather than only at process start (spec.md §4.4).
		var mu sync.Mutex
		rules := loadRules()
		closeWatch, err := config.WatchRules(func() {
			mu.Lock()
			defer mu.Unlock()
			rules = loadRules()
			logger.Info("alias-transform rules reloaded")
		})
		if err != nil {
			logger.Warn("watching alias-transform rules: %v", err)
			closeWatch = func() error { return nil }
		}
		defer closeWatch()

		fetcher := newFetcher()

		for _, key := range args {
			mu.Lock()
			current := rules
			mu.Unlock()
			if err := getOne(ctx, db, key, current, fetcher); err != nil {
				logger.Error("%s: %v", key, err)
			}
		}
		return nil
	},
}

func getOne(ctx context.Context, db *store.Store, key string, rules []aliastransform.Rule, fetcher provider.Fetcher) error {
	var st *statemachine.State
	err := db.RunWrite(ctx, func(tx *store.Tx) error {
		var resolveErr error
		st, resolveErr = resolve.Resolve(ctx, tx, key, fetcher, rules)
		return resolveErr
	})
	if err != nil {
		if rewritten, ok := offerRewrite(key, err); ok {
			logger.Info("retrying as %s", rewritten)
			return getOne(ctx, db, rewritten, rules, fetcher)
		}
		return err
	}

	switch st.Kind {
	case statemachine.KindEntry:
		view, err := statemachine.DecodeEntry(st.Row)
		if err != nil {
			return fmt.Errorf("decoding stored entry: %w", err)
		}
		fmt.Println(renderBibTeX(key, view))
		return nil
	case statemachine.KindNull:
		return fmt.Errorf("no record found (cached)")
	default:
		return fmt.Errorf("unresolved (%s)", st.Kind)
	}
}

// offerRewrite implements spec.md §7's "did you mean" diagnostic: if
// resolveErr is an unregistered-provider rejection and the key parses
// as provider:sub_id, it asks (via huh, when attached to a TTY) whether
// the user meant the closest registered provider name, returning the
// rewritten key to retry if so.
func offerRewrite(key string, resolveErr error) (string, bool) {
	var invalid *resolve.ErrInvalidRemoteId
	if !errors.As(resolveErr, &invalid) {
		return "", false
	}
	_, remote, classifyErr := ident.NewRecordId(key).Classify()
	if classifyErr != nil || remote.Provider == "" || provider.IsRegistered(remote.Provider) {
		return "", false
	}
	corrected, ok, err := resolve.ConfirmRewrite(key, remote.Provider)
	if err != nil || !ok {
		return "", false
	}
	return fmt.Sprintf("%s:%s", corrected, remote.SubID), true
}

func init() {
	rootCmd.AddCommand(getCmd)
}
