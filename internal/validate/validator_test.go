package validate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/autobib/autobib/internal/codec"
	"github.com/autobib/autobib/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(context.Background(), filepath.Join(dir, "test.db"), store.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertEntry(t *testing.T, tx *store.Tx, canonical string) int64 {
	t.Helper()
	data, err := codec.New("misc")
	if err != nil {
		t.Fatalf("codec.New: %v", err)
	}
	encoded, err := codec.Encode(data)
	if err != nil {
		t.Fatalf("codec.Encode: %v", err)
	}
	key, err := tx.InsertRecord(context.Background(), canonical, encoded, store.VariantEntry, nil)
	if err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := tx.AddIdentifier(context.Background(), canonical, key); err != nil {
		t.Fatalf("AddIdentifier: %v", err)
	}
	return key
}

// TestValidateCleanStore implements the negative case of S6: a store
// built only through the normal write path reports no faults.
func TestValidateCleanStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.RunWrite(ctx, func(tx *store.Tx) error {
		insertEntry(t, tx, "local:clean")
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}

	var report Report
	err = s.RunRead(ctx, func(tx *store.Tx) error {
		var readErr error
		report, readErr = Validate(ctx, tx)
		return readErr
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("Validate on a clean store = %+v, want no faults", report.Faults)
	}
}

// TestValidateDanglingIdentifiers implements S6 from spec.md §8: after
// a Records row is deleted out-of-band while bypassing foreign keys,
// the validator reports NullIdentifiers(n) for the identifier rows
// left pointing at the now-missing record.
func TestValidateDanglingIdentifiers(t *testing.T) {
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

	// Bypass the schema's foreign key constraint to reproduce the
	// out-of-band corruption spec.md §8's S6 describes: delete the
	// Records row directly, leaving its identifiers dangling.
	db := s.DB()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		t.Fatalf("disabling foreign keys: %v", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM records WHERE key = ?", key); err != nil {
		t.Fatalf("deleting record out of band: %v", err)
	}

	var report Report
	err = s.RunRead(ctx, func(tx *store.Tx) error {
		var readErr error
		report, readErr = Validate(ctx, tx)
		return readErr
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	found := false
	for _, f := range report.Faults {
		if f.Kind == NullIdentifiers {
			found = true
			if f.Count != 1 {
				t.Errorf("NullIdentifiers count = %d, want 1", f.Count)
			}
		}
	}
	if !found {
		t.Fatalf("Validate on a store with a dangling identifier = %+v, want a NullIdentifiers fault", report.Faults)
	}
}

// TestValidateParentKeyMissing covers the companion out-of-band
// corruption where a surviving row's parent_key points at a deleted
// predecessor.
func TestValidateParentKeyMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var parentKey, childKey int64
	err := s.RunWrite(ctx, func(tx *store.Tx) error {
		parentKey = insertEntry(t, tx, "local:parent")
		data, err := codec.New("misc")
		if err != nil {
			return err
		}
		encoded, err := codec.Encode(data)
		if err != nil {
			return err
		}
		childKey, err = tx.InsertRecord(ctx, "local:parent", encoded, store.VariantEntry, &parentKey)
		return err
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}
	_ = childKey

	db := s.DB()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		t.Fatalf("disabling foreign keys: %v", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM identifiers WHERE record_key = ?", parentKey); err != nil {
		t.Fatalf("unbinding parent identifier: %v", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM records WHERE key = ?", parentKey); err != nil {
		t.Fatalf("deleting parent record out of band: %v", err)
	}

	var report Report
	err = s.RunRead(ctx, func(tx *store.Tx) error {
		var readErr error
		report, readErr = Validate(ctx, tx)
		return readErr
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	found := false
	for _, f := range report.Faults {
		if f.Kind == ParentKeyMissing && f.RowID == childKey {
			found = true
		}
	}
	if !found {
		t.Fatalf("Validate = %+v, want a ParentKeyMissing fault for row %d", report.Faults, childKey)
	}
}
