package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/autobib/autobib/internal/store/migrations"
)

// flockRetryInterval is how often Open retries a contended write lock;
// Open keeps retrying until the lock is free or its context is done.
const flockRetryInterval = 200 * time.Millisecond

// migrationsList is the single documented linear migration path
// (spec.md Non-goals: "schema evolution beyond a single documented
// migration path"), grounded on the teacher's
// internal/storage/sqlite/migrations.go Migration{Name, Func} list and
// RunMigrations shape, trimmed to the one migration this spec allows.
var migrationsList = []migrations.Migration{
	{Name: "initial_schema", Func: migrations.MigrateInitialSchema},
}

// verifyOrInitSchema applies the application-id / schema-version
// contract from spec.md §4.5: a brand-new file gets the magic number
// and current version stamped on it; an existing file is checked
// against both, refusing to open a file from a future version, and
// running the (single) migration path on an older one.
func verifyOrInitSchema(ctx context.Context, db *sql.DB, readOnly bool) error {
	var pageCount int
	if err := db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return fmt.Errorf("store: reading page_count: %w", err)
	}

	if pageCount == 0 {
		if readOnly {
			return fmt.Errorf("store: cannot initialize a new database in read-only mode")
		}
		return initSchema(ctx, db)
	}

	var appID int
	if err := db.QueryRowContext(ctx, "PRAGMA application_id").Scan(&appID); err != nil {
		return fmt.Errorf("store: reading application_id: %w", err)
	}
	if appID != applicationID {
		return ErrWrongApplicationID
	}

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("store: reading user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return ErrSchemaTooNew
	}
	if version == currentSchemaVersion {
		return nil
	}
	if readOnly {
		return fmt.Errorf("store: database needs migration from version %d to %d, refusing in read-only mode", version, currentSchemaVersion)
	}
	return runMigrations(ctx, db, version)
}

func initSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning init transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: applying schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA application_id = %d", applicationID)); err != nil {
		return fmt.Errorf("store: setting application_id: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("store: setting user_version: %w", err)
	}
	return tx.Commit()
}

// runMigrations applies every migration after fromVersion in order,
// each inside its own atomic transaction, bumping user_version as it
// goes.
func runMigrations(ctx context.Context, db *sql.DB, fromVersion int) error {
	for i := fromVersion; i < len(migrationsList); i++ {
		m := migrationsList[i]
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("store: migration %q: beginning transaction: %w", m.Name, err)
		}
		if err := m.Func(ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: migration %q: %w", m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: migration %q: setting user_version: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("store: migration %q: committing: %w", m.Name, err)
		}
	}
	return nil
}
