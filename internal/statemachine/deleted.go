package statemachine

import (
	"context"
	"fmt"

	"github.com/autobib/autobib/internal/codec"
	"github.com/autobib/autobib/internal/store"
)

// Reinsert applies (Deleted|Void).reinsert(data): a new Entry row is
// created with parent = the current row, and identifiers redirected
// to it.
func (s *State) Reinsert(ctx context.Context, tx *store.Tx, data *codec.EntryData) (*State, error) {
	if s.Kind != KindDeleted && s.Kind != KindVoid {
		return nil, &ErrWrongState{Operation: "reinsert", Have: s.Kind, Want: "Deleted or Void"}
	}
	encoded, err := codec.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("statemachine: encoding entry: %w", err)
	}
	return s.newChildRow(ctx, tx, encoded, store.VariantEntry, KindEntry)
}

// UndoDelete applies Deleted.undo_delete: valid only when the current
// row has a parent and that parent is itself variant Deleted.
func (s *State) UndoDelete(ctx context.Context, tx *store.Tx) (*State, error) {
	if s.Kind != KindDeleted {
		return nil, &ErrWrongState{Operation: "undo_delete", Have: s.Kind, Want: "Deleted"}
	}
	if !s.Row.ParentKey.Valid {
		return nil, &ErrPreconditionFailed{Operation: "undo_delete", Reason: "row has no parent"}
	}
	parent, err := tx.GetRecord(ctx, s.Row.ParentKey.Int64)
	if err != nil {
		return nil, err
	}
	if parent.Variant != store.VariantDeleted {
		return nil, &ErrPreconditionFailed{Operation: "undo_delete", Reason: "parent is not a Deleted row"}
	}
	if err := tx.RedirectIdentifiers(ctx, s.Row.Key, parent.Key); err != nil {
		return nil, err
	}
	return &State{Kind: KindDeleted, Name: s.Name, Row: parent}, nil
}

// RedoDeletion applies (Deleted|Void).redo_deletion(idx), the same
// child-selection effect as Entry.Redo but valid from any non-Entry
// row with children.
func (s *State) RedoDeletion(ctx context.Context, tx *store.Tx, idx int) (*State, error) {
	if s.Kind == KindEntry {
		return nil, &ErrWrongState{Operation: "redo_deletion", Have: s.Kind, Want: "Deleted or Void"}
	}
	return s.redoToChild(ctx, tx, idx)
}
