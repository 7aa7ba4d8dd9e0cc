package db

const (
	// SchemaV1 defines the SQL statements for version 1 of the database schema.
	// This schema pertains to the 'appdatadb' component: a single string-keyed
	// table holding JSON-encoded application records, plus the versions table.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS uplift_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS kv_entries (
    key VARCHAR(256) PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at REAL DEFAULT (unixepoch())
);
`
)
