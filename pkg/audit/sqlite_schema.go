package audit

// SchemaVersion is the current audit database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Audit entries table (append-only; this system never updates or deletes rows)
CREATE TABLE IF NOT EXISTS audit_entries (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    sequence INTEGER NOT NULL,
    timestamp TIMESTAMP NOT NULL,

    -- Ticket identity (NULL for run-level entries)
    partition_name TEXT,
    file_name TEXT,

    action TEXT NOT NULL,
    outcome TEXT NOT NULL,

    digest TEXT,
    dry_run BOOLEAN NOT NULL DEFAULT 0,
    detail TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_audit_run_id ON audit_entries(run_id, sequence);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_entries(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_partition ON audit_entries(partition_name, file_name);
CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_entries(action);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
