package statemachine

import (
	"context"

	"github.com/autobib/autobib/internal/store"
)

// Void applies (any non-Void).void (spec.md §4.6): it finds the root
// of the current row's chain; if that root is not already Void, a new
// Void row is synthesized as the chain's new root (empty data,
// modified = minTimestamp, no parent), the previous root's parent
// pointer is repointed at it, and identifiers are redirected to the
// synthesized Void row.
func (s *State) Void(ctx context.Context, tx *store.Tx) (*State, error) {
	if s.Kind == KindVoid {
		return nil, &ErrWrongState{Operation: "void", Have: s.Kind, Want: "any non-Void state"}
	}
	if s.Row == nil {
		return nil, &ErrPreconditionFailed{Operation: "void", Reason: "identifier has no backing row"}
	}

	root, err := rootOf(ctx, tx, s.Row.Key)
	if err != nil {
		return nil, err
	}
	if root.Variant == store.VariantVoid {
		if err := tx.RedirectIdentifiers(ctx, s.Row.Key, root.Key); err != nil {
			return nil, err
		}
		return &State{Kind: KindVoid, Name: s.Name, Row: root}, nil
	}

	voidKey, err := tx.InsertRecord(ctx, s.Row.RecordID, nil, store.VariantVoid, nil)
	if err != nil {
		return nil, err
	}
	if err := tx.SetRowModified(ctx, voidKey, minTimestamp); err != nil {
		return nil, err
	}
	if err := tx.SetParentKey(ctx, root.Key, voidKey); err != nil {
		return nil, err
	}
	if err := tx.RedirectIdentifiers(ctx, s.Row.Key, voidKey); err != nil {
		return nil, err
	}
	voidRow, err := tx.GetRecord(ctx, voidKey)
	if err != nil {
		return nil, err
	}
	return &State{Kind: KindVoid, Name: s.Name, Row: voidRow}, nil
}
