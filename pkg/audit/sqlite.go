package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite audit sink.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite sink configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/audit.db",
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteSink persists audit entries in a SQLite database for queryable
// history. Appends participate in SQLite's WAL durability; rows are never
// updated or deleted by this system.
type SQLiteSink struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteSink opens the audit database, creating the schema if needed,
// and enables WAL mode.
func NewSQLiteSink(config *SQLiteConfig) (*SQLiteSink, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewSinkError("sqlite", "open", err)
	}

	s := &SQLiteSink{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit sink initialized", "path", config.Path)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteSink) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return NewSinkError("sqlite", "enable_wal", err)
	}

	// Full fsync per transaction; an audit append must be durable before
	// the file's lifecycle advances.
	if _, err := s.db.Exec("PRAGMA synchronous=FULL;"); err != nil {
		return NewSinkError("sqlite", "set_synchronous", err)
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewSinkError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewSinkError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewSinkError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewSinkError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewSinkError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Append inserts one entry.
func (s *SQLiteSink) Append(ctx context.Context, entry *Entry) error {
	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		return NewSinkError("sqlite", "marshal", err)
	}

	// Empty ticket identity becomes NULL so indexes stay sparse.
	var partition, file interface{}
	if entry.Partition != "" {
		partition = entry.Partition
	}
	if entry.File != "" {
		file = entry.File
	}

	query := `
		INSERT INTO audit_entries (
			id, run_id, sequence, timestamp,
			partition_name, file_name,
			action, outcome,
			digest, dry_run, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		entry.ID, entry.RunID, entry.Sequence, entry.Timestamp.Format(time.RFC3339Nano),
		partition, file,
		string(entry.Action), string(entry.Outcome),
		entry.Digest, entry.DryRun, string(detail),
	)
	if err != nil {
		return NewSinkError("sqlite", "append", err)
	}
	return nil
}

// Query retrieves entries matching the filters, in append order.
func (s *SQLiteSink) Query(ctx context.Context, query *Query) ([]*Entry, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "SELECT id, run_id, sequence, timestamp, partition_name, file_name, action, outcome, digest, dry_run, detail FROM audit_entries"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY timestamp ASC, sequence ASC"

	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
	}
	if query.Offset > 0 {
		if query.Limit <= 0 {
			sqlQuery += " LIMIT -1"
		}
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewSinkError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		entry, err := s.scanRow(rows)
		if err != nil {
			return nil, NewSinkError("sqlite", "scan", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, NewSinkError("sqlite", "query", err)
	}

	return entries, nil
}

// Count returns the number of entries matching the filters.
func (s *SQLiteSink) Count(ctx context.Context, query *Query) (int64, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM audit_entries"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, NewSinkError("sqlite", "count", err)
	}
	return count, nil
}

// Tail returns the last n entries in append order.
func (s *SQLiteSink) Tail(ctx context.Context, n int) ([]*Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	sqlQuery := fmt.Sprintf(
		"SELECT id, run_id, sequence, timestamp, partition_name, file_name, action, outcome, digest, dry_run, detail FROM audit_entries ORDER BY timestamp DESC, sequence DESC LIMIT %d", n)

	rows, err := s.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, NewSinkError("sqlite", "tail", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := s.scanRow(rows)
		if err != nil {
			return nil, NewSinkError("sqlite", "scan", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, NewSinkError("sqlite", "tail", err)
	}

	// Reverse into append order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	if err := s.db.Close(); err != nil {
		return NewSinkError("sqlite", "close", err)
	}
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the clause (without "WHERE") and the query arguments.
func (s *SQLiteSink) buildWhereClause(query *Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, query.RunID)
	}
	if query.Partition != "" {
		conditions = append(conditions, "partition_name = ?")
		args = append(args, query.Partition)
	}
	if query.File != "" {
		conditions = append(conditions, "file_name = ?")
		args = append(args, query.File)
	}
	if query.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, string(query.Action))
	}
	if query.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, string(query.Outcome))
	}
	if query.StartTime != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, query.StartTime.Format(time.RFC3339Nano))
	}
	if query.EndTime != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, query.EndTime.Format(time.RFC3339Nano))
	}

	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}
	return whereClause, args
}

// scanRow scans a database row into an Entry.
func (s *SQLiteSink) scanRow(rows *sql.Rows) (*Entry, error) {
	var entry Entry
	var timestamp, action, outcome string
	var partition, file, digest, detail sql.NullString

	err := rows.Scan(
		&entry.ID, &entry.RunID, &entry.Sequence, &timestamp,
		&partition, &file,
		&action, &outcome,
		&digest, &entry.DryRun, &detail,
	)
	if err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", timestamp, err)
	}
	entry.Timestamp = ts
	entry.Action = Action(action)
	entry.Outcome = Outcome(outcome)

	if partition.Valid {
		entry.Partition = partition.String
	}
	if file.Valid {
		entry.File = file.String
	}
	if digest.Valid {
		entry.Digest = digest.String
	}
	if detail.Valid && detail.String != "" && detail.String != "null" {
		if err := json.Unmarshal([]byte(detail.String), &entry.Detail); err != nil {
			return nil, fmt.Errorf("parsing detail: %w", err)
		}
	}

	return &entry, nil
}
