package statemachine

import (
	"context"
	"fmt"

	"github.com/autobib/autobib/internal/codec"
	"github.com/autobib/autobib/internal/store"
)

// Modify applies Entry.modify(data): a new Entry row is created with
// parent = the current row, and every identifier pointing at the
// current row is redirected to it.
func (s *State) Modify(ctx context.Context, tx *store.Tx, data *codec.EntryData) (*State, error) {
	if s.Kind != KindEntry {
		return nil, &ErrWrongState{Operation: "modify", Have: s.Kind, Want: "Entry"}
	}
	encoded, err := codec.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("statemachine: encoding entry: %w", err)
	}
	return s.newChildRow(ctx, tx, encoded, store.VariantEntry, KindEntry)
}

// SoftDelete applies Entry.soft_delete(replacement?): a new Deleted
// row is created with parent = the current row, and identifiers are
// redirected to it. Per spec.md §3's Deleted-row payload, the
// replacement canonical id (if any) is stored as the row's data,
// encoded as UTF-8; a bare tombstone stores no data. If replacement is
// given, every OTHER alias currently bound to the Deleted row (i.e.
// every identifier except the canonical id itself, which must keep
// naming the active row of its own chain so the chain stays undo/
// revive-able — spec.md §4.6's S2 worked example revives via the
// canonical id after a replacement soft_delete) is additionally
// rebound to replacement's row (spec.md §4.6: "optionally update
// aliases").
func (s *State) SoftDelete(ctx context.Context, tx *store.Tx, replacement string) (*State, error) {
	if s.Kind != KindEntry {
		return nil, &ErrWrongState{Operation: "soft_delete", Have: s.Kind, Want: "Entry"}
	}
	var data []byte
	if replacement != "" {
		data = []byte(replacement)
	}
	next, err := s.newChildRow(ctx, tx, data, store.VariantDeleted, KindDeleted)
	if err != nil {
		return nil, err
	}
	if replacement != "" {
		replKey, found, err := tx.LookupIdentifier(ctx, replacement)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &ErrPreconditionFailed{Operation: "soft_delete", Reason: fmt.Sprintf("replacement %q does not resolve to a row", replacement)}
		}
		names, err := tx.IdentifiersForRecord(ctx, next.Row.Key)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if name == next.Row.RecordID {
				continue
			}
			if err := tx.SetIdentifier(ctx, name, replKey); err != nil {
				return nil, err
			}
		}
	}
	return next, nil
}

// Undo applies Entry.undo: valid only when the current row has a
// parent and that parent is itself variant Entry. Identifiers are
// redirected back to the parent.
func (s *State) Undo(ctx context.Context, tx *store.Tx) (*State, error) {
	if s.Kind != KindEntry {
		return nil, &ErrWrongState{Operation: "undo", Have: s.Kind, Want: "Entry"}
	}
	if !s.Row.ParentKey.Valid {
		return nil, &ErrPreconditionFailed{Operation: "undo", Reason: "row has no parent"}
	}
	parent, err := tx.GetRecord(ctx, s.Row.ParentKey.Int64)
	if err != nil {
		return nil, err
	}
	if parent.Variant != store.VariantEntry {
		return nil, &ErrPreconditionFailed{Operation: "undo", Reason: "parent is not an Entry row"}
	}
	if err := tx.RedirectIdentifiers(ctx, s.Row.Key, parent.Key); err != nil {
		return nil, err
	}
	return &State{Kind: KindEntry, Name: s.Name, Row: parent}, nil
}

// Redo applies Entry.redo(idx): redirects identifiers to the idx-th
// child of the current row, selected by the tie-break rule in
// pickChild. The result is Arbitrary since a child may be any variant.
func (s *State) Redo(ctx context.Context, tx *store.Tx, idx int) (*State, error) {
	if s.Kind != KindEntry {
		return nil, &ErrWrongState{Operation: "redo", Have: s.Kind, Want: "Entry"}
	}
	return s.redoToChild(ctx, tx, idx)
}

// AddAlias applies Entry.add_alias: inserts a new identifier bound to
// the current row. Fails with store.ErrIdentifierExists if alias is
// already bound to anything.
func (s *State) AddAlias(ctx context.Context, tx *store.Tx, alias string) (*State, error) {
	if s.Kind != KindEntry {
		return nil, &ErrWrongState{Operation: "add_alias", Have: s.Kind, Want: "Entry"}
	}
	if err := tx.AddIdentifier(ctx, alias, s.Row.Key); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureAlias applies Entry.ensure_alias: inserts alias bound to the
// current row if absent; if alias is already bound elsewhere, returns
// the canonical record_id of its existing target instead of erroring.
func (s *State) EnsureAlias(ctx context.Context, tx *store.Tx, alias string) (existingCanonical string, changed bool, err error) {
	if s.Kind != KindEntry {
		return "", false, &ErrWrongState{Operation: "ensure_alias", Have: s.Kind, Want: "Entry"}
	}
	existingKey, found, err := tx.LookupIdentifier(ctx, alias)
	if err != nil {
		return "", false, err
	}
	if !found {
		if err := tx.AddIdentifier(ctx, alias, s.Row.Key); err != nil {
			return "", false, err
		}
		return "", true, nil
	}
	if existingKey == s.Row.Key {
		return "", false, nil
	}
	existingRow, err := tx.GetRecord(ctx, existingKey)
	if err != nil {
		return "", false, err
	}
	return existingRow.RecordID, false, nil
}

// HardDelete applies Entry.hard_delete: every row sharing the current
// row's canonical record_id is removed (identifiers cascade via the
// ON DELETE CASCADE foreign key), returning to Missing.
func (s *State) HardDelete(ctx context.Context, tx *store.Tx) (*State, error) {
	if s.Kind != KindEntry {
		return nil, &ErrWrongState{Operation: "hard_delete", Have: s.Kind, Want: "Entry"}
	}
	if err := tx.HardDeleteByRecordID(ctx, s.Row.RecordID); err != nil {
		return nil, err
	}
	return &State{Kind: KindMissing, Name: s.Name}, nil
}

// newChildRow is the shared "create a new row with parent = current,
// redirect identifiers" effect used by Modify, SoftDelete, Reinsert.
func (s *State) newChildRow(ctx context.Context, tx *store.Tx, data []byte, variant int, kind Kind) (*State, error) {
	parentKey := s.Row.Key
	key, err := tx.InsertRecord(ctx, s.Row.RecordID, data, variant, &parentKey)
	if err != nil {
		return nil, err
	}
	if err := tx.RedirectIdentifiers(ctx, s.Row.Key, key); err != nil {
		return nil, err
	}
	row, err := tx.GetRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	return &State{Kind: kind, Name: s.Name, Row: row}, nil
}

// redoToChild is the shared effect behind Redo and RedoDeletion.
func (s *State) redoToChild(ctx context.Context, tx *store.Tx, idx int) (*State, error) {
	children, err := childrenOf(ctx, tx, s.Row.RecordID, s.Row.Key)
	if err != nil {
		return nil, err
	}
	child, err := pickChild(children, idx)
	if err != nil {
		return nil, err
	}
	if err := tx.RedirectIdentifiers(ctx, s.Row.Key, child.Key); err != nil {
		return nil, err
	}
	return &State{Kind: variantToKind(child.Variant), Name: s.Name, Row: child}, nil
}
