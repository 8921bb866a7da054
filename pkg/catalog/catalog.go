// Package catalog provides the durable sweep catalog: one row per ticket
// file recording the lifecycle state it last reached. The catalog backs
// idempotent re-runs (terminal files are not reprocessed), bounded retry
// of transient read errors, and per-run reporting. It can be deleted
// wholesale without affecting correctness; bytes are authoritative and
// the next sweep simply re-verifies archives instead of trusting rows.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Catalog persists per-file lifecycle records in SQLite. It uses a
// write-ahead log with periodic checkpointing and a single writer
// connection, matching SQLite's concurrency model.
type Catalog struct {
	db               *sql.DB
	dbPath           string
	snapshotInterval time.Duration
	done             chan struct{}
	mu               sync.RWMutex
	closeOnce        sync.Once

	// preparedStatements contains pre-compiled SQL statements for reuse
	getStmt      *sql.Stmt
	upsertStmt   *sql.Stmt
	attemptsStmt *sql.Stmt
	byStateStmt  *sql.Stmt
	summaryStmt  *sql.Stmt
}

// Config configures the sweep catalog.
type Config struct {
	// Path is the path to the SQLite database file.
	Path string

	// SnapshotInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	SnapshotInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewCatalog opens (creating if necessary) the catalog database.
func NewCatalog(cfg Config) (*Catalog, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("catalog path cannot be empty")
	}
	if cfg.SnapshotInterval == 0 {
		cfg.SnapshotInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	// Open database with WAL mode and busy timeout
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	c := &Catalog{
		db:               db,
		dbPath:           cfg.Path,
		snapshotInterval: cfg.SnapshotInterval,
		done:             make(chan struct{}),
	}

	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	if err := c.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare catalog statements: %w", err)
	}

	go c.checkpointLoop()

	return c, nil
}

// initSchema creates the catalog schema if it doesn't exist.
func (c *Catalog) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog_records (
		partition_name TEXT NOT NULL,
		file_name TEXT NOT NULL,
		state TEXT NOT NULL,
		reason TEXT,
		digest TEXT,
		attempts INTEGER NOT NULL DEFAULT 0,
		first_seen INTEGER NOT NULL,
		last_seen INTEGER NOT NULL,
		run_id TEXT,
		PRIMARY KEY (partition_name, file_name)
	);

	CREATE INDEX IF NOT EXISTS idx_catalog_state ON catalog_records(state);
	CREATE INDEX IF NOT EXISTS idx_catalog_run ON catalog_records(run_id);
	`

	_, err := c.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (c *Catalog) prepareStatements() error {
	var err error

	c.getStmt, err = c.db.Prepare(`
		SELECT partition_name, file_name, state, reason, digest, attempts, first_seen, last_seen, run_id
		FROM catalog_records
		WHERE partition_name = ? AND file_name = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	c.upsertStmt, err = c.db.Prepare(`
		INSERT INTO catalog_records (partition_name, file_name, state, reason, digest, attempts, first_seen, last_seen, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (partition_name, file_name) DO UPDATE SET
			state = excluded.state,
			reason = excluded.reason,
			digest = excluded.digest,
			attempts = excluded.attempts,
			last_seen = excluded.last_seen,
			run_id = excluded.run_id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert statement: %w", err)
	}

	c.attemptsStmt, err = c.db.Prepare(`
		UPDATE catalog_records
		SET attempts = attempts + 1, last_seen = ?, run_id = ?
		WHERE partition_name = ? AND file_name = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare attempts statement: %w", err)
	}

	c.byStateStmt, err = c.db.Prepare(`
		SELECT partition_name, file_name, state, reason, digest, attempts, first_seen, last_seen, run_id
		FROM catalog_records
		WHERE state = ?
		ORDER BY partition_name, file_name
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare by-state statement: %w", err)
	}

	c.summaryStmt, err = c.db.Prepare(`
		SELECT state, COUNT(*)
		FROM catalog_records
		WHERE run_id = ?
		GROUP BY state
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare summary statement: %w", err)
	}

	return nil
}

// Get returns the record for (partition, file), or nil if the file has
// never been seen.
func (c *Catalog) Get(ctx context.Context, partition, file string) (*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.getStmt.QueryRowContext(ctx, partition, file)
	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog record: %w", err)
	}
	return rec, nil
}

// Upsert writes the record's state, reason, digest, attempts and run id.
// FirstSeen is preserved for existing rows and set to LastSeen for new
// ones. Called after each successful audit write so catalog and audit log
// advance in the same order.
func (c *Catalog) Upsert(ctx context.Context, rec *Record) error {
	if rec.Partition == "" || rec.File == "" {
		return fmt.Errorf("catalog record requires partition and file")
	}
	if rec.LastSeen.IsZero() {
		rec.LastSeen = time.Now()
	}
	if rec.FirstSeen.IsZero() {
		rec.FirstSeen = rec.LastSeen
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// first_seen participates in the INSERT only; the upsert clause
	// leaves it untouched for existing rows.
	_, err := c.upsertStmt.ExecContext(ctx,
		rec.Partition, rec.File,
		string(rec.State), rec.Reason, rec.Digest, rec.Attempts,
		rec.FirstSeen.Unix(), rec.LastSeen.Unix(), rec.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog record: %w", err)
	}
	return nil
}

// IncrementAttempts bumps the attempt counter for an existing record and
// returns the new count. A record is created at StateDiscovered if absent.
func (c *Catalog) IncrementAttempts(ctx context.Context, partition, file, runID string) (int, error) {
	existing, err := c.Get(ctx, partition, file)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		rec := &Record{
			Partition: partition,
			File:      file,
			State:     StateDiscovered,
			Attempts:  1,
			RunID:     runID,
		}
		if err := c.Upsert(ctx, rec); err != nil {
			return 0, err
		}
		return 1, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.attemptsStmt.ExecContext(ctx, time.Now().Unix(), runID, partition, file)
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	return existing.Attempts + 1, nil
}

// ListByState returns all records in the given state, ordered by
// partition then file name.
func (c *Catalog) ListByState(ctx context.Context, state State) ([]*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.byStateStmt.QueryContext(ctx, string(state))
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog records: %w", err)
	}
	return records, nil
}

// RunSummary returns per-state record counts for one run.
func (c *Catalog) RunSummary(ctx context.Context, runID string) (map[State]int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.summaryStmt.QueryContext(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize run: %w", err)
	}
	defer rows.Close()

	summary := make(map[State]int64)
	for rows.Next() {
		var state string
		var count int64
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary[State(state)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}
	return summary, nil
}

// Close releases resources held by the catalog.
// Close is idempotent and safe to call multiple times.
func (c *Catalog) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		close(c.done)

		for _, stmt := range []*sql.Stmt{c.getStmt, c.upsertStmt, c.attemptsStmt, c.byStateStmt, c.summaryStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if c.db != nil {
			_, _ = c.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = c.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints.
func (c *Catalog) checkpointLoop() {
	ticker := time.NewTicker(c.snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = c.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-c.done:
			return
		}
	}
}

// scanRecord scans one catalog row via the given Scan function.
func scanRecord(scan func(dest ...interface{}) error) (*Record, error) {
	var rec Record
	var state string
	var reason, digest, runID sql.NullString
	var firstSeen, lastSeen int64

	err := scan(
		&rec.Partition, &rec.File, &state, &reason, &digest,
		&rec.Attempts, &firstSeen, &lastSeen, &runID,
	)
	if err != nil {
		return nil, err
	}

	rec.State = State(state)
	if reason.Valid {
		rec.Reason = reason.String
	}
	if digest.Valid {
		rec.Digest = digest.String
	}
	if runID.Valid {
		rec.RunID = runID.String
	}
	rec.FirstSeen = time.Unix(firstSeen, 0)
	rec.LastSeen = time.Unix(lastSeen, 0)

	return &rec, nil
}
