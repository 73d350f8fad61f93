package validate

import (
	"context"
	"testing"

	"github.com/autobib/autobib/internal/store"
)

// TestFixRepairsDanglingIdentifiers covers the --fix side of S6: after
// the mechanical repair, the dangling identifier is gone and a second
// Validate pass reports no faults.
func TestFixRepairsDanglingIdentifiers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var key int64
	err := s.RunWrite(ctx, func(tx *store.Tx) error {
		key = insertEntry(t, tx, "local:orphan")
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}

	db := s.DB()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		t.Fatalf("disabling foreign keys: %v", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM records WHERE key = ?", key); err != nil {
		t.Fatalf("deleting record out of band: %v", err)
	}

	var fixReport FixReport
	err = s.RunWrite(ctx, func(tx *store.Tx) error {
		var fixErr error
		fixReport, fixErr = Fix(ctx, tx)
		return fixErr
	})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if fixReport.DeletedIdentifiers != 1 {
		t.Errorf("DeletedIdentifiers = %d, want 1", fixReport.DeletedIdentifiers)
	}
	if fixReport.Remaining.HasErrors() {
		t.Errorf("Remaining = %+v, want none", fixReport.Remaining.Faults)
	}

	var report Report
	err = s.RunRead(ctx, func(tx *store.Tx) error {
		var readErr error
		report, readErr = Validate(ctx, tx)
		return readErr
	})
	if err != nil {
		t.Fatalf("Validate after Fix: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("Validate after Fix = %+v, want no faults", report.Faults)
	}
}

// TestFixLeavesUnrepairableFaults confirms Fix does not touch a fault
// kind it documents as unsafe to auto-repair (spec.md §4.8's
// RecordHasInvalidCanonical): the malformed row is left in Remaining.
func TestFixLeavesUnrepairableFaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.RunWrite(ctx, func(tx *store.Tx) error {
		insertEntry(t, tx, "not-a-valid-remote-id")
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}

	var fixReport FixReport
	err = s.RunWrite(ctx, func(tx *store.Tx) error {
		var fixErr error
		fixReport, fixErr = Fix(ctx, tx)
		return fixErr
	})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}

	found := false
	for _, f := range fixReport.Remaining.Faults {
		if f.Kind == RecordHasInvalidCanonical {
			found = true
		}
	}
	if !found {
		t.Fatalf("Remaining = %+v, want a RecordHasInvalidCanonical fault left unrepaired", fixReport.Remaining.Faults)
	}
}
