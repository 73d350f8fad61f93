package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autobib/autobib/internal/codec"
	"github.com/autobib/autobib/internal/statemachine"
	"github.com/autobib/autobib/internal/store"
)

// parseFields turns a list of "key=value" command-line arguments into
// an *codec.EntryData, validating each field through CheckAndInsert so
// a malformed flag fails before any row is written.
func parseFields(entryType string, raw []string) (*codec.EntryData, error) {
	data, err := codec.New(entryType)
	if err != nil {
		return nil, fmt.Errorf("invalid --type %q: %w", entryType, err)
	}
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("field %q is not in key=value form", kv)
		}
		if err := data.CheckAndInsert(key, value); err != nil {
			return nil, fmt.Errorf("field %q: %w", kv, err)
		}
	}
	return data, nil
}

var addCmd = &cobra.Command{
	Use:   "add <key> --type <entry-type> [field=value ...]",
	Short: "Insert a new local entry (spec.md §4.6 Missing.insert)",
	Long: `add creates a root Entry row for key, which must currently be
Missing (no cached identifier or null record). Intended for manually
curated records under the "local" provider, since the local provider
has no remote resolver of its own.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		key := args[0]
		entryType, _ := cmd.Flags().GetString("type")
		data, err := parseFields(entryType, args[1:])
		if err != nil {
			return err
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		if db.ReadOnly() {
			return ErrReadOnlyCommand("add")
		}

		var result *statemachine.State
		err = db.RunWrite(ctx, func(tx *store.Tx) error {
			st, err := statemachine.Locate(ctx, tx, key)
			if err != nil {
				return err
			}
			if st.Kind != statemachine.KindMissing {
				return fmt.Errorf("add: %q already resolves (currently %s), use edit instead", key, st.Kind)
			}
			result, err = st.Insert(ctx, tx, key, data)
			return err
		})
		if err != nil {
			return err
		}
		logger.Info("%s -> %s (row %s)", key, result.Kind, statemachine.FormatRowID(result.Row.Key))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <key> --type <entry-type> [field=value ...]",
	Short: "Replace an entry's data with a new child revision (spec.md §4.6 Entry.modify / (Deleted|Void).reinsert)",
	Long: `edit applies Entry.modify when key currently resolves to an Entry
row. When key currently resolves to a Deleted or Void row instead, edit
applies reinsert, the "revive" transition that creates a new Entry
child and redirects identifiers back to it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		key := args[0]
		entryType, _ := cmd.Flags().GetString("type")
		data, err := parseFields(entryType, args[1:])
		if err != nil {
			return err
		}
		return withEntry(ctx, "edit", key, func(tx *store.Tx, st *statemachine.State) (*statemachine.State, error) {
			if st.Kind == statemachine.KindDeleted || st.Kind == statemachine.KindVoid {
				return st.Reinsert(ctx, tx, data)
			}
			return st.Modify(ctx, tx, data)
		})
	},
}

func init() {
	addCmd.Flags().String("type", "misc", "BibTeX entry type (e.g. article, book)")
	editCmd.Flags().String("type", "misc", "BibTeX entry type (e.g. article, book)")
	rootCmd.AddCommand(addCmd, editCmd)
}
