package validate

import (
	"context"
	"fmt"

	"github.com/autobib/autobib/internal/store"
)

// FixReport summarizes repairs applied by Fix.
type FixReport struct {
	DeletedIdentifiers int
	ClearedParents     int
	Remaining          Report
}

// Fix runs Validate and repairs every fault with a safe, mechanical
// remedy, within the caller's transaction (spec.md §4.8: "or, in fix
// mode, applies repairs within one transaction"):
//
//   - NullIdentifiers: deletes identifier rows whose record_key no
//     longer resolves to any record (spec.md §8's scenario S6).
//   - ParentKeyMissing: clears the dangling parent_key, detaching the
//     row rather than guessing a replacement parent.
//
// RecordHasInvalidCanonical, DanglingRecord, InvalidRecordData, and
// ContainsCycle are not auto-repaired: each requires a judgment call
// (what the correct canonical id or entry data should be, or which
// edge in a cycle is wrong) that a mechanical fix cannot safely make.
// These remain in Remaining for the caller to report.
func Fix(ctx context.Context, tx *store.Tx) (FixReport, error) {
	report, err := Validate(ctx, tx)
	if err != nil {
		return FixReport{}, err
	}

	var fixed FixReport
	var remaining []Fault

	for _, f := range report.Faults {
		switch f.Kind {
		case NullIdentifiers:
			n, err := fixNullIdentifiers(ctx, tx)
			if err != nil {
				return fixed, err
			}
			fixed.DeletedIdentifiers += n
		case ParentKeyMissing:
			if err := tx.ClearParentKey(ctx, f.RowID); err != nil {
				return fixed, err
			}
			fixed.ClearedParents++
		default:
			remaining = append(remaining, f)
		}
	}

	fixed.Remaining = Report{Faults: remaining}
	return fixed, nil
}

// fixNullIdentifiers deletes every identifier row whose record_key has
// no matching record, returning how many were removed.
func fixNullIdentifiers(ctx context.Context, tx *store.Tx) (int, error) {
	identifiers, err := tx.AllIdentifiers(ctx)
	if err != nil {
		return 0, fmt.Errorf("validate: fix: listing identifiers: %w", err)
	}
	count := 0
	for _, id := range identifiers {
		if _, err := tx.GetRecord(ctx, id.RecordKey); err == store.ErrRecordNotFound {
			if err := tx.DeleteIdentifierByRecordKey(ctx, id.RecordKey); err != nil {
				return count, err
			}
			count++
		} else if err != nil {
			return count, fmt.Errorf("validate: fix: checking record %d: %w", id.RecordKey, err)
		}
	}
	return count, nil
}
