package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// IsNull reports whether record_id has a NullRecords cache entry
// (spec.md §4.5/§4.6's IsNull state) and, if so, when the failed
// resolution attempt was recorded.
func (t *Tx) IsNull(ctx context.Context, recordID string) (attempted time.Time, found bool, err error) {
	err = t.tx.QueryRowContext(ctx, `SELECT attempted FROM null_records WHERE record_id = ?`, recordID).Scan(&attempted)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("store: checking null cache for %q: %w", recordID, err)
	}
	return attempted, true, nil
}

// SetNull records a confirmed provider miss for record_id, overwriting
// any previous attempt timestamp.
func (t *Tx) SetNull(ctx context.Context, recordID string) error {
	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO null_records (record_id) VALUES (?)
		 ON CONFLICT(record_id) DO UPDATE SET attempted = CURRENT_TIMESTAMP`,
		recordID); err != nil {
		return fmt.Errorf("store: caching null result for %q: %w", recordID, err)
	}
	return nil
}

// ClearNull removes a cached null entry, used when a subsequent
// insert/add_ref supersedes an earlier confirmed miss for the same
// identifier.
func (t *Tx) ClearNull(ctx context.Context, recordID string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM null_records WHERE record_id = ?`, recordID); err != nil {
		return fmt.Errorf("store: clearing null cache for %q: %w", recordID, err)
	}
	return nil
}

// EvictNullRecords deletes null_records entries whose record_id
// matches pattern (via the app-defined regexp() SQL function, spec.md
// §4.5) and whose attempted timestamp is strictly before olderThan.
// This is the eviction query the regexp() registration exists for:
// periodically clearing stale misses for a given provider so they are
// retried.
func (t *Tx) EvictNullRecords(ctx context.Context, pattern string, olderThan time.Time) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM null_records WHERE regexp(?, record_id) AND attempted < ?`,
		pattern, olderThan)
	if err != nil {
		return 0, fmt.Errorf("store: evicting null records matching %q: %w", pattern, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: reading eviction count: %w", err)
	}
	return n, nil
}
