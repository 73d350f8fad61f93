package statemachine

import (
	"context"
	"fmt"

	"github.com/autobib/autobib/internal/codec"
	"github.com/autobib/autobib/internal/store"
)

// InsertFromNull applies Null.insert(data, canonical): it clears the null
// cache entry and creates a fresh root Entry row, exactly as
// Missing.insert but additionally clearing the stale negative cache.
func (s *State) InsertFromNull(ctx context.Context, tx *store.Tx, canonical string, data *codec.EntryData) (*State, error) {
	if s.Kind != KindNull {
		return nil, &ErrWrongState{Operation: "insert", Have: s.Kind, Want: "Null"}
	}
	if err := tx.ClearNull(ctx, s.Name); err != nil {
		return nil, err
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

// Delete applies Null.delete: it clears the cache entry, returning to
// Missing.
func (s *State) Delete(ctx context.Context, tx *store.Tx) (*State, error) {
	if s.Kind != KindNull {
		return nil, &ErrWrongState{Operation: "delete", Have: s.Kind, Want: "Null"}
	}
	if err := tx.ClearNull(ctx, s.Name); err != nil {
		return nil, err
	}
	return &State{Kind: KindMissing, Name: s.Name}, nil
}
