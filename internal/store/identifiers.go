package store

import (
	"context"
	"database/sql"
	"fmt"
)

// LookupIdentifier returns the record_key an identifier name currently
// points to, or found=false if no such identifier exists.
func (t *Tx) LookupIdentifier(ctx context.Context, name string) (recordKey int64, found bool, err error) {
	err = t.tx.QueryRowContext(ctx, `SELECT record_key FROM identifiers WHERE name = ?`, name).Scan(&recordKey)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: looking up identifier %q: %w", name, err)
	}
	return recordKey, true, nil
}

// ErrIdentifierExists is returned by AddIdentifier when name is
// already bound, matching spec.md §7's "alias already exists" conflict
// error for add_alias.
var ErrIdentifierExists = fmt.Errorf("store: identifier already exists")

// AddIdentifier binds name to recordKey. It fails with
// ErrIdentifierExists if name is already bound to any row.
func (t *Tx) AddIdentifier(ctx context.Context, name string, recordKey int64) error {
	if _, found, err := t.LookupIdentifier(ctx, name); err != nil {
		return err
	} else if found {
		return ErrIdentifierExists
	}
	if _, err := t.tx.ExecContext(ctx, `INSERT INTO identifiers (name, record_key) VALUES (?, ?)`, name, recordKey); err != nil {
		return fmt.Errorf("store: adding identifier %q: %w", name, err)
	}
	return nil
}

// SetIdentifier binds name to recordKey unconditionally, overwriting
// any previous binding. Used when redirecting an alias after
// soft_delete/reinsert, where ensure_alias-style uniqueness has
// already been checked by the caller.
func (t *Tx) SetIdentifier(ctx context.Context, name string, recordKey int64) error {
	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO identifiers (name, record_key) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET record_key = excluded.record_key`,
		name, recordKey); err != nil {
		return fmt.Errorf("store: setting identifier %q: %w", name, err)
	}
	return nil
}

// RedirectIdentifiers repoints every identifier currently bound to
// fromKey so that it is bound to toKey instead. Used by soft_delete
// and undo_delete to keep aliases following a row's successor (spec.md
// §4.6's transition table: "redirect identifiers").
func (t *Tx) RedirectIdentifiers(ctx context.Context, fromKey, toKey int64) error {
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE identifiers SET record_key = ? WHERE record_key = ?`, toKey, fromKey); err != nil {
		return fmt.Errorf("store: redirecting identifiers from %d to %d: %w", fromKey, toKey, err)
	}
	return nil
}

// IdentifiersForRecord lists every identifier name currently bound to
// key, used by hard_delete's cascade and by diagnostics.
func (t *Tx) IdentifiersForRecord(ctx context.Context, key int64) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT name FROM identifiers WHERE record_key = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("store: listing identifiers for record %d: %w", key, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: scanning identifier name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteIdentifier unbinds name. It is not an error if name was not
// bound.
func (t *Tx) DeleteIdentifier(ctx context.Context, name string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM identifiers WHERE name = ?`, name); err != nil {
		return fmt.Errorf("store: deleting identifier %q: %w", name, err)
	}
	return nil
}

// IdentifierRow is one row of the identifiers table, used by the
// validator's dangling/null-identifier checks, which need the full
// table rather than a single lookup.
type IdentifierRow struct {
	Name      string
	RecordKey int64
}

// AllIdentifiers lists every row of the identifiers table, including
// ones whose record_key no longer resolves to a row in records (the
// out-of-band corruption the validator's NullIdentifiers check looks
// for). A plain LookupIdentifier cannot see these, since it is already
// required to look up a name the caller expects to exist.
func (t *Tx) AllIdentifiers(ctx context.Context) ([]IdentifierRow, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT name, record_key FROM identifiers`)
	if err != nil {
		return nil, fmt.Errorf("store: listing all identifiers: %w", err)
	}
	defer rows.Close()

	var result []IdentifierRow
	for rows.Next() {
		var r IdentifierRow
		if err := rows.Scan(&r.Name, &r.RecordKey); err != nil {
			return nil, fmt.Errorf("store: scanning identifier row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
