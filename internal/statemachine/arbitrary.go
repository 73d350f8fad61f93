package statemachine

import (
	"context"
	"time"

	"github.com/autobib/autobib/internal/store"
)

// Rewind applies any.rewind(before): it finds the latest row sharing
// the current row's canonical id with modified <= before. If no such
// row exists (before predates every row in the chain), a Void root is
// synthesized and identifiers redirected to it, mirroring Void's
// synthesis so that "rewinding before history began" has a well-
// defined, queryable answer instead of an error.
func (s *State) Rewind(ctx context.Context, tx *store.Tx, before time.Time) (*State, error) {
	if s.Row == nil {
		return nil, &ErrPreconditionFailed{Operation: "rewind", Reason: "identifier has no backing row"}
	}
	target, err := tx.FindAsOf(ctx, s.Row.Key, before)
	if err == store.ErrRecordNotFound {
		return s.Void(ctx, tx)
	}
	if err != nil {
		return nil, err
	}
	if err := tx.RedirectIdentifiers(ctx, s.Row.Key, target.Key); err != nil {
		return nil, err
	}
	return &State{Kind: variantToKind(target.Variant), Name: s.Name, Row: target}, nil
}

// SetActive applies any.set_active(rev_id): rev_id must name a row
// sharing the current row's canonical id; identifiers are redirected
// to it directly, with no chain-position inference.
func (s *State) SetActive(ctx context.Context, tx *store.Tx, revID int64) (*State, error) {
	if s.Row == nil {
		return nil, &ErrPreconditionFailed{Operation: "set_active", Reason: "identifier has no backing row"}
	}
	target, err := tx.GetRecord(ctx, revID)
	if err != nil {
		return nil, err
	}
	if target.RecordID != s.Row.RecordID {
		return nil, &ErrPreconditionFailed{Operation: "set_active", Reason: "rev_id does not share the current canonical id"}
	}
	if err := tx.RedirectIdentifiers(ctx, s.Row.Key, target.Key); err != nil {
		return nil, err
	}
	return &State{Kind: variantToKind(target.Variant), Name: s.Name, Row: target}, nil
}
