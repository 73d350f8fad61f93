package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobib/autobib/internal/statemachine"
	"github.com/autobib/autobib/internal/store"
)

// withEntry opens the store, locates key, and applies fn to the located
// state, whatever its kind, inside one write transaction; fn rejects the
// kinds it does not handle.
func withEntry(ctx context.Context, cmdName, key string, fn func(tx *store.Tx, st *statemachine.State) (*statemachine.State, error)) error {
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	if db.ReadOnly() {
		return ErrReadOnlyCommand(cmdName)
	}

	var result *statemachine.State
	err = db.RunWrite(ctx, func(tx *store.Tx) error {
		st, err := statemachine.Locate(ctx, tx, key)
		if err != nil {
			return err
		}
		result, err = fn(tx, st)
		return err
	})
	if err != nil {
		return err
	}
	logger.Info("%s -> %s (row %s)", key, result.Kind, statemachine.FormatRowID(result.Row.Key))
	return nil
}

var undoCmd = &cobra.Command{
	Use:   "undo <key>",
	Short: "Undo the most recent change to an entry (spec.md §4.6)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return withEntry(ctx, "undo", args[0], func(tx *store.Tx, st *statemachine.State) (*statemachine.State, error) {
			if st.Kind == statemachine.KindDeleted {
				return st.UndoDelete(ctx, tx)
			}
			return st.Undo(ctx, tx)
		})
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo <key> [index]",
	Short: "Redo to a child revision (spec.md §4.6)",
	Long: `redo selects the idx-th child of the current row, oldest-first
for idx >= 0 and newest-first for idx < 0 (-1 = most recent). Defaults
to -1 (the newest child) if index is omitted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		idx := -1
		if len(args) == 2 {
			if _, err := fmt.Sscanf(args[1], "%d", &idx); err != nil {
				return fmt.Errorf("redo: invalid index %q", args[1])
			}
		}
		return withEntry(ctx, "redo", args[0], func(tx *store.Tx, st *statemachine.State) (*statemachine.State, error) {
			if st.Kind == statemachine.KindEntry {
				return st.Redo(ctx, tx, idx)
			}
			return st.RedoDeletion(ctx, tx, idx)
		})
	},
}

var voidCmd = &cobra.Command{
	Use:   "void <key>",
	Short: "Void a record's history (spec.md §4.6)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return withEntry(ctx, "void", args[0], func(tx *store.Tx, st *statemachine.State) (*statemachine.State, error) {
			return st.Void(ctx, tx)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Soft-delete an entry, optionally pointing at a replacement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		replacement, _ := cmd.Flags().GetString("replacement")
		return withEntry(ctx, "delete", args[0], func(tx *store.Tx, st *statemachine.State) (*statemachine.State, error) {
			return st.SoftDelete(ctx, tx, replacement)
		})
	},
}

var aliasCmd = &cobra.Command{
	Use:   "alias <key> <new-alias>",
	Short: "Bind a new alias to an existing entry (spec.md §4.6 add_alias/ensure_alias)",
	Long: `alias binds new-alias to the row named by key. With --ensure, it
applies ensure_alias instead of add_alias: if new-alias is already bound
to a different row, the command reports that row's canonical id instead
of failing (spec.md §4.6 ensure_alias).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		newAlias := args[1]
		ensure, _ := cmd.Flags().GetBool("ensure")
		if !ensure {
			return withEntry(ctx, "alias", args[0], func(tx *store.Tx, st *statemachine.State) (*statemachine.State, error) {
				return st.AddAlias(ctx, tx, newAlias)
			})
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		if db.ReadOnly() {
			return ErrReadOnlyCommand("alias")
		}
		var existing string
		var changed bool
		err = db.RunWrite(ctx, func(tx *store.Tx) error {
			st, err := statemachine.Locate(ctx, tx, args[0])
			if err != nil {
				return err
			}
			existing, changed, err = st.EnsureAlias(ctx, tx, newAlias)
			return err
		})
		if err != nil {
			return err
		}
		if changed {
			logger.Info("alias %q bound to %s", newAlias, args[0])
		} else {
			logger.Info("alias %q already bound to %s", newAlias, existing)
		}
		return nil
	},
}

var setActiveCmd = &cobra.Command{
	Use:   "set-active <key> <rev-id>",
	Short: "Redirect identifiers to an arbitrary row sharing key's canonical id (spec.md §4.6 set_active)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		revID, err := statemachine.ParseRowID(args[1])
		if err != nil {
			return fmt.Errorf("set-active: %w", err)
		}
		return withEntry(ctx, "set-active", args[0], func(tx *store.Tx, st *statemachine.State) (*statemachine.State, error) {
			return st.SetActive(ctx, tx, revID)
		})
	},
}

func init() {
	deleteCmd.Flags().String("replacement", "", "identifier of a replacement record (spec.md §4.6's optional soft_delete replacement)")
	aliasCmd.Flags().Bool("ensure", false, "apply ensure_alias instead of add_alias: report the existing target instead of failing")
	rootCmd.AddCommand(undoCmd, redoCmd, voidCmd, deleteCmd, aliasCmd, setActiveCmd)
}
