package store

// schema is the DDL applied to a freshly created database, grounded on
// the teacher's embedded-SQL-string convention
// (internal/storage/sqlite/schema.go). It implements the three logical
// tables of spec.md §4.5 plus a key/value metadata table that no code
// writes to; the schema version and application id are kept in PRAGMA
// user_version and PRAGMA application_id (see verifyOrInitSchema).
const schema = `
CREATE TABLE IF NOT EXISTS records (
    key INTEGER PRIMARY KEY AUTOINCREMENT,
    record_id TEXT NOT NULL,
    data BLOB,
    modified DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    variant INTEGER NOT NULL CHECK(variant IN (0, 1, 2)),
    parent_key INTEGER REFERENCES records(key)
);

CREATE INDEX IF NOT EXISTS idx_records_record_id_modified ON records(record_id, modified);

CREATE TABLE IF NOT EXISTS identifiers (
    name TEXT PRIMARY KEY,
    record_key INTEGER NOT NULL REFERENCES records(key) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_identifiers_record_key ON identifiers(record_key);

CREATE TABLE IF NOT EXISTS null_records (
    record_id TEXT PRIMARY KEY,
    attempted DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Row variant codes stored in records.variant (spec.md §4.5).
const (
	VariantEntry   = 0
	VariantDeleted = 1
	VariantVoid    = 2
)

// applicationID is the fixed magic number ("Autb" packed into 32 bits)
// the store writes to PRAGMA application_id on creation and checks on
// every open, per spec.md §4.5.
const applicationID = 0x41757462

// currentSchemaVersion is the PRAGMA user_version this build expects.
// Bumping it requires adding an entry to migrationsList.
const currentSchemaVersion = 1
