package statemachine

import (
	"context"
	"fmt"

	"github.com/autobib/autobib/internal/codec"
	"github.com/autobib/autobib/internal/store"
)

// Insert applies Missing.insert(data, canonical) (spec.md §4.6): it
// creates a root Entry row for canonical and binds both canonical and
// s.Name (which may be an alias distinct from canonical) to it.
func (s *State) Insert(ctx context.Context, tx *store.Tx, canonical string, data *codec.EntryData) (*State, error) {
	if s.Kind != KindMissing {
		return nil, &ErrWrongState{Operation: "insert", Have: s.Kind, Want: "Missing"}
	}
	encoded, err := codec.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("statemachine: encoding entry: %w", err)
	}
	key, err := tx.InsertRecord(ctx, canonical, encoded, store.VariantEntry, nil)
	if err != nil {
		return nil, err
	}
	if err := tx.AddIdentifier(ctx, canonical, key); err != nil {
		return nil, err
	}
	if s.Name != canonical {
		if err := tx.AddIdentifier(ctx, s.Name, key); err != nil {
			return nil, err
		}
	}
	row, err := tx.GetRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	return &State{Kind: KindEntry, Name: canonical, Row: row}, nil
}

// SetNull applies Missing.set_null(remote_id): it records a confirmed
// provider miss so repeated lookups of the same remote id short-
// circuit without contacting the provider again.
func (s *State) SetNull(ctx context.Context, tx *store.Tx, remoteID string) (*State, error) {
	if s.Kind != KindMissing {
		return nil, &ErrWrongState{Operation: "set_null", Have: s.Kind, Want: "Missing"}
	}
	if err := tx.SetNull(ctx, remoteID); err != nil {
		return nil, err
	}
	return &State{Kind: KindNull, Name: s.Name}, nil
}
