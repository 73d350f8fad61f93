// Package statemachine implements the typed row-state family of
// spec.md §4.6: a located identifier is always exactly one of Missing,
// Null, Entry, Deleted, Void, or Arbitrary, and every mutation is a
// method on the state value it is valid from, grounded on
// rust/src/db/row.rs and rust/src/db/state/record.rs's
// DatabaseEntry/Missing/Row wrapper family. Rust's affine ownership
// (a State value is consumed by each transition, so a stale reference
// cannot be reused) is replaced here by Go's explicit-commit-or-
// rollback guard pattern: every transition takes the owning
// *store.Tx explicitly rather than hiding it behind a borrow checker.
package statemachine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/autobib/autobib/internal/codec"
	"github.com/autobib/autobib/internal/store"
)

// Kind identifies which state variant a located identifier is in.
type Kind int

const (
	KindMissing Kind = iota
	KindNull
	KindEntry
	KindDeleted
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "Missing"
	case KindNull:
		return "Null"
	case KindEntry:
		return "Entry"
	case KindDeleted:
		return "Deleted"
	case KindVoid:
		return "Void"
	default:
		return "Unknown"
	}
}

// State is a located identifier: its canonical name, and (if found)
// the row currently backing it.
type State struct {
	Kind Kind
	Name string // the canonical identifier name (provider:sub_id, or an alias)
	Row  *store.RecordRow
}

// Locate determines the state of name: consult Identifiers(name) to
// find a row, then read the row's variant. A remote id absent from
// Identifiers is checked against NullRecords before falling back to
// Missing (spec.md §4.6's Determination rule).
func Locate(ctx context.Context, tx *store.Tx, name string) (*State, error) {
	key, found, err := tx.LookupIdentifier(ctx, name)
	if err != nil {
		return nil, err
	}
	if found {
		row, err := tx.GetRecord(ctx, key)
		if err != nil {
			return nil, err
		}
		return &State{Kind: variantToKind(row.Variant), Name: name, Row: row}, nil
	}

	if _, isNull, err := tx.IsNull(ctx, name); err != nil {
		return nil, err
	} else if isNull {
		return &State{Kind: KindNull, Name: name}, nil
	}

	return &State{Kind: KindMissing, Name: name}, nil
}

func variantToKind(variant int) Kind {
	switch variant {
	case store.VariantEntry:
		return KindEntry
	case store.VariantDeleted:
		return KindDeleted
	case store.VariantVoid:
		return KindVoid
	default:
		return KindMissing
	}
}

// ErrWrongState is returned when a transition is attempted from a
// state it is not defined for.
type ErrWrongState struct {
	Operation string
	Have      Kind
	Want      string
}

func (e *ErrWrongState) Error() string {
	return fmt.Sprintf("statemachine: %s is not valid from state %s (expected %s)", e.Operation, e.Have, e.Want)
}

// ErrPreconditionFailed is returned when a transition's state-specific
// precondition (e.g. "parent exists and parent.variant=Entry") does
// not hold.
type ErrPreconditionFailed struct {
	Operation string
	Reason    string
}

func (e *ErrPreconditionFailed) Error() string {
	return fmt.Sprintf("statemachine: precondition for %s failed: %s", e.Operation, e.Reason)
}

// ErrOutOfBounds is returned by redo/redo_deletion when idx does not
// name an existing child.
type ErrOutOfBounds struct {
	ChildrenCount int
}

func (e *ErrOutOfBounds) Error() string {
	return fmt.Sprintf("statemachine: child index out of bounds (have %d children)", e.ChildrenCount)
}

// minTimestamp is the "minimum representable timestamp" spec.md §4.6
// assigns to a synthesized Void root, chosen so it sorts before every
// real row's modified time.
var minTimestamp = time.Unix(0, 0).UTC()

// childrenOf returns every row whose parent_key is key, sorted by
// modified ascending (oldest first). This is a linear scan of the rows
// sharing a canonical id rather than a dedicated SQL query, since the
// per-identifier chain length is small by construction.
func childrenOf(ctx context.Context, tx *store.Tx, canonical string, key int64) ([]*store.RecordRow, error) {
	all, err := tx.ListRecordsByID(ctx, canonical)
	if err != nil {
		return nil, err
	}
	var children []*store.RecordRow
	for _, row := range all {
		if row.ParentKey.Valid && row.ParentKey.Int64 == key {
			children = append(children, row)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Modified.Before(children[j].Modified) })
	return children, nil
}

// rootOf walks parent pointers from key to find the row with no
// parent.
func rootOf(ctx context.Context, tx *store.Tx, key int64) (*store.RecordRow, error) {
	chain, err := tx.ParentChain(ctx, key)
	if err != nil {
		return nil, err
	}
	return chain[0], nil
}

// pickChild applies the redo tie-break rule: idx >= 0 selects
// oldest-first, idx < 0 selects newest-first (-1 = newest).
func pickChild(children []*store.RecordRow, idx int) (*store.RecordRow, error) {
	n := len(children)
	if n == 0 {
		return nil, &ErrOutOfBounds{ChildrenCount: 0}
	}
	var i int
	if idx >= 0 {
		i = idx
	} else {
		i = n + idx // idx is negative
	}
	if i < 0 || i >= n {
		return nil, &ErrOutOfBounds{ChildrenCount: n}
	}
	return children[i], nil
}

// DecodeEntry validates and decodes a row's data blob as a codec
// entry, surfacing codec.InvalidBytesError unchanged so validator
// diagnostics can report the offset.
func DecodeEntry(row *store.RecordRow) (*codec.View, error) {
	return codec.Decode(row.Data)
}
