package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "test.db"), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenInitializesSchema(t *testing.T) {
	s := openTestStore(t)
	var appID int
	if err := s.db.QueryRowContext(context.Background(), "PRAGMA application_id").Scan(&appID); err != nil {
		t.Fatalf("reading application_id: %v", err)
	}
	if appID != applicationID {
		t.Errorf("application_id = %d, want %d", appID, applicationID)
	}
	var version int
	if err := s.db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("reading user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	ctx := context.Background()

	s1, err := Open(ctx, path, Options{})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(ctx, path, Options{})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()
}

func TestInsertAndGetRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	var key int64

	err := s.RunWrite(ctx, func(tx *Tx) error {
		k, err := tx.InsertRecord(ctx, "local:first", []byte("data"), VariantEntry, nil)
		if err != nil {
			return err
		}
		key = k
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}

	err = s.RunRead(ctx, func(tx *Tx) error {
		row, err := tx.GetRecord(ctx, key)
		if err != nil {
			return err
		}
		if row.RecordID != "local:first" {
			t.Errorf("RecordID = %q, want local:first", row.RecordID)
		}
		if row.Variant != VariantEntry {
			t.Errorf("Variant = %d, want %d", row.Variant, VariantEntry)
		}
		if row.ParentKey.Valid {
			t.Error("expected no parent key on root row")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunRead: %v", err)
	}
}

func TestParentChainAndFindAsOf(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	var rootKey, childKey int64

	err := s.RunWrite(ctx, func(tx *Tx) error {
		k1, err := tx.InsertRecord(ctx, "local:chain", []byte("v1"), VariantEntry, nil)
		if err != nil {
			return err
		}
		rootKey = k1
		k2, err := tx.InsertRecord(ctx, "local:chain", []byte("v2"), VariantEntry, &k1)
		if err != nil {
			return err
		}
		childKey = k2
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}

	err = s.RunRead(ctx, func(tx *Tx) error {
		chain, err := tx.ParentChain(ctx, childKey)
		if err != nil {
			return err
		}
		if len(chain) != 2 || chain[0].Key != rootKey || chain[1].Key != childKey {
			t.Errorf("unexpected chain: %+v", chain)
		}

		future := time.Now().Add(24 * time.Hour)
		row, err := tx.FindAsOf(ctx, childKey, future)
		if err != nil {
			return err
		}
		if row.Key != childKey {
			t.Errorf("FindAsOf(future) = %d, want latest key %d", row.Key, childKey)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunRead: %v", err)
	}
}

func TestIdentifierLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.RunWrite(ctx, func(tx *Tx) error {
		key, err := tx.InsertRecord(ctx, "local:x", []byte("data"), VariantEntry, nil)
		if err != nil {
			return err
		}
		if err := tx.AddIdentifier(ctx, "local:x", key); err != nil {
			return err
		}
		if err := tx.AddIdentifier(ctx, "local:x", key); err != ErrIdentifierExists {
			t.Errorf("expected ErrIdentifierExists, got %v", err)
		}

		key2, err := tx.InsertRecord(ctx, "local:y", []byte("data2"), VariantEntry, &key)
		if err != nil {
			return err
		}
		if err := tx.RedirectIdentifiers(ctx, key, key2); err != nil {
			return err
		}
		recordKey, found, err := tx.LookupIdentifier(ctx, "local:x")
		if err != nil {
			return err
		}
		if !found || recordKey != key2 {
			t.Errorf("after redirect: recordKey=%d found=%v, want %d true", recordKey, found, key2)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}
}

func TestNullRecordLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.RunWrite(ctx, func(tx *Tx) error {
		if _, found, err := tx.IsNull(ctx, "arxiv:9999.99999"); err != nil || found {
			t.Errorf("expected not found before SetNull, found=%v err=%v", found, err)
		}
		if err := tx.SetNull(ctx, "arxiv:9999.99999"); err != nil {
			return err
		}
		if _, found, err := tx.IsNull(ctx, "arxiv:9999.99999"); err != nil || !found {
			t.Errorf("expected found after SetNull, found=%v err=%v", found, err)
		}
		if err := tx.ClearNull(ctx, "arxiv:9999.99999"); err != nil {
			return err
		}
		if _, found, err := tx.IsNull(ctx, "arxiv:9999.99999"); err != nil || found {
			t.Errorf("expected not found after ClearNull, found=%v err=%v", found, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}
}

func TestEvictNullRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.RunWrite(ctx, func(tx *Tx) error {
		if err := tx.SetNull(ctx, "arxiv:1111.11111"); err != nil {
			return err
		}
		if err := tx.SetNull(ctx, "doi:10.1000/xyz"); err != nil {
			return err
		}
		n, err := tx.EvictNullRecords(ctx, "^arxiv:", time.Now().Add(time.Hour))
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("evicted %d rows, want 1", n)
		}
		if _, found, err := tx.IsNull(ctx, "doi:10.1000/xyz"); err != nil || !found {
			t.Errorf("doi entry should survive eviction, found=%v err=%v", found, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunWrite: %v", err)
	}
}

func TestReadOnlyStoreRejectsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	ctx := context.Background()

	s, err := Open(ctx, path, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Close()

	ro, err := Open(ctx, path, Options{ReadOnly: true})
	if err != nil {
		t.Fatalf("reopen read-only: %v", err)
	}
	defer ro.Close()

	err = ro.RunWrite(ctx, func(tx *Tx) error { return nil })
	if err == nil {
		t.Error("expected RunWrite to fail on a read-only store")
	}
}
