package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecordRow is one row of the records table (spec.md §4.5).
type RecordRow struct {
	Key       int64
	RecordID  string
	Data      []byte
	Modified  time.Time
	Variant   int
	ParentKey sql.NullInt64
}

// ErrRecordNotFound is returned by the Get* helpers when no row
// matches.
var ErrRecordNotFound = fmt.Errorf("store: record not found")

// InsertRecord creates a new row and returns its key. parentKey is nil
// for a row with no predecessor in the revision chain (the very first
// row ever created for a given canonical identity).
func (t *Tx) InsertRecord(ctx context.Context, recordID string, data []byte, variant int, parentKey *int64) (int64, error) {
	var parent sql.NullInt64
	if parentKey != nil {
		parent = sql.NullInt64{Int64: *parentKey, Valid: true}
	}
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO records (record_id, data, variant, parent_key) VALUES (?, ?, ?, ?)`,
		recordID, data, variant, parent)
	if err != nil {
		return 0, fmt.Errorf("store: inserting record: %w", err)
	}
	key, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: reading inserted record key: %w", err)
	}
	return key, nil
}

// GetRecord fetches a row by key.
func (t *Tx) GetRecord(ctx context.Context, key int64) (*RecordRow, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT key, record_id, data, modified, variant, parent_key FROM records WHERE key = ?`, key)
	return scanRecordRow(row)
}

func scanRecordRow(row *sql.Row) (*RecordRow, error) {
	var r RecordRow
	if err := row.Scan(&r.Key, &r.RecordID, &r.Data, &r.Modified, &r.Variant, &r.ParentKey); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("store: scanning record: %w", err)
	}
	return &r, nil
}

// ListRecordsByID returns every row sharing the given canonical
// record_id, in no particular order. Used by the state machine to
// find a row's children and by the validator's cycle detection, both
// of which reason about all rows that share a canonical identity.
func (t *Tx) ListRecordsByID(ctx context.Context, recordID string) ([]*RecordRow, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT key, record_id, data, modified, variant, parent_key FROM records WHERE record_id = ?`, recordID)
	if err != nil {
		return nil, fmt.Errorf("store: listing records for %q: %w", recordID, err)
	}
	defer rows.Close()

	var result []*RecordRow
	for rows.Next() {
		var r RecordRow
		if err := rows.Scan(&r.Key, &r.RecordID, &r.Data, &r.Modified, &r.Variant, &r.ParentKey); err != nil {
			return nil, fmt.Errorf("store: scanning record: %w", err)
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}

// AllRecords lists every row in the records table, used by the
// validator's full-table scan.
func (t *Tx) AllRecords(ctx context.Context) ([]*RecordRow, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT key, record_id, data, modified, variant, parent_key FROM records`)
	if err != nil {
		return nil, fmt.Errorf("store: listing all records: %w", err)
	}
	defer rows.Close()

	var result []*RecordRow
	for rows.Next() {
		var r RecordRow
		if err := rows.Scan(&r.Key, &r.RecordID, &r.Data, &r.Modified, &r.Variant, &r.ParentKey); err != nil {
			return nil, fmt.Errorf("store: scanning record: %w", err)
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}

// SetRowModified overwrites a row's modified timestamp. Used only by
// Void synthesis, which must backdate the synthesized root below
// every real row so chain-ordering queries still treat it as the
// oldest ancestor.
func (t *Tx) SetRowModified(ctx context.Context, key int64, modified time.Time) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE records SET modified = ? WHERE key = ?`, modified, key); err != nil {
		return fmt.Errorf("store: setting modified for record %d: %w", key, err)
	}
	return nil
}

// SetParentKey repoints a row's parent_key. Used only by Void
// synthesis, which inserts a new root above the chain's previous root
// and must retroactively parent that old root to the new Void row.
func (t *Tx) SetParentKey(ctx context.Context, key, parentKey int64) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE records SET parent_key = ? WHERE key = ?`, parentKey, key); err != nil {
		return fmt.Errorf("store: setting parent_key for record %d: %w", key, err)
	}
	return nil
}

// ClearParentKey nulls a row's parent_key, used by the validator's fix
// mode to repair a ParentKeyMissing fault by detaching the row from
// its dangling parent reference rather than guessing a replacement.
func (t *Tx) ClearParentKey(ctx context.Context, key int64) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE records SET parent_key = NULL WHERE key = ?`, key); err != nil {
		return fmt.Errorf("store: clearing parent_key for record %d: %w", key, err)
	}
	return nil
}

// DeleteIdentifierByRecordKey removes every identifier row pointing at
// recordKey, used by the validator's fix mode to repair a
// NullIdentifiers fault (an identifier whose record_key no longer
// resolves to any row).
func (t *Tx) DeleteIdentifierByRecordKey(ctx context.Context, recordKey int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM identifiers WHERE record_key = ?`, recordKey); err != nil {
		return fmt.Errorf("store: deleting identifiers for record_key %d: %w", recordKey, err)
	}
	return nil
}

// HardDeleteByRecordID removes every row sharing recordID. Bound
// identifiers cascade via the identifiers.record_key ON DELETE CASCADE
// foreign key.
func (t *Tx) HardDeleteByRecordID(ctx context.Context, recordID string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM records WHERE record_id = ?`, recordID); err != nil {
		return fmt.Errorf("store: hard-deleting records for %q: %w", recordID, err)
	}
	return nil
}

// ParentChain walks parent_key pointers from key back to the row with
// no parent, returning the chain in root-first order. Used by
// validate.DetectCycles and by rewind's as-of lookup.
func (t *Tx) ParentChain(ctx context.Context, key int64) ([]*RecordRow, error) {
	var chain []*RecordRow
	seen := make(map[int64]bool)
	cur := key
	for {
		if seen[cur] {
			return nil, fmt.Errorf("store: cycle detected in parent chain at key %d", cur)
		}
		seen[cur] = true
		row, err := t.GetRecord(ctx, cur)
		if err != nil {
			return nil, err
		}
		chain = append([]*RecordRow{row}, chain...)
		if !row.ParentKey.Valid {
			return chain, nil
		}
		cur = row.ParentKey.Int64
	}
}

// FindAsOf returns the most recent row in key's chain whose modified
// timestamp is at or before before. If before is after every row's
// modified timestamp, the latest row is returned (spec.md §9's decided
// default for a future rewind timestamp).
func (t *Tx) FindAsOf(ctx context.Context, key int64, before time.Time) (*RecordRow, error) {
	chain, err := t.ParentChain(ctx, key)
	if err != nil {
		return nil, err
	}
	var best *RecordRow
	for _, row := range chain {
		if !row.Modified.After(before) {
			best = row
		}
	}
	if best == nil {
		// before predates every row in the chain: caller has no
		// meaningful "as of" answer.
		return nil, ErrRecordNotFound
	}
	return best, nil
}
