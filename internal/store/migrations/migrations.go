// Package migrations holds the store's migration functions, kept
// separate from the package that invokes them the way the teacher
// separates internal/storage/sqlite/migrations (the runner) from
// internal/storage/sqlite/migrations (the individual functions).
package migrations

import (
	"context"
	"database/sql"
)

// Migration is one named, ordered schema change.
type Migration struct {
	Name string
	Func func(ctx context.Context, tx *sql.Tx) error
}

// MigrateInitialSchema is a placeholder entry reserved for the first
// post-1.0 schema change; initial database creation is handled
// directly by store.initSchema, not through the migration path, so
// this currently has nothing to do. It exists so the "single
// documented migration path" (spec.md Non-goals) has a concrete home
// in the tree rather than an empty slice that would need special-
// casing the first time a real migration is added.
func MigrateInitialSchema(ctx context.Context, tx *sql.Tx) error {
	return nil
}
