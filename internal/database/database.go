package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-broker/internal/logging"
	"media-broker/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database manages the broker's persistent conversion cache.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New creates a new Database instance.
// dbPath must be the full path to the database FILE (e.g.
// "/data/conversions.db") and its parent directory must already exist
// and be writable. Use startup.LoadConfig() to validate that before
// calling this.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL mode plus busy_timeout prevents "database is locked" errors
	// when the ops surface reads while a producer writes.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The broker is the only writer; a small pool covers the ops reads.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversions (
		key TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		kind TEXT NOT NULL,
		extension TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		requester TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_conversions_kind ON conversions(kind);
	CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at);
	`

	start := time.Now()
	_, err := d.db.ExecContext(ctx, schema)
	observeQuery("initialize_schema", start, err)
	if err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the path of the database file.
func (d *Database) Path() string {
	return d.dbPath
}

// observeQuery records duration and status metrics for one query.
func observeQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
