package decisionlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// Schema creates the decisions table and its indexes.
const Schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS decisions (
	id               TEXT PRIMARY KEY,
	request_id       TEXT NOT NULL,
	timestamp        DATETIME NOT NULL,
	model            TEXT NOT NULL,
	tag              TEXT NOT NULL,
	chain            TEXT NOT NULL,
	provider         TEXT,
	served_model     TEXT,
	attempts         INTEGER NOT NULL DEFAULT 0,
	latency_ms       INTEGER NOT NULL DEFAULT 0,
	success          BOOLEAN NOT NULL,
	error_type       TEXT,
	error_message    TEXT,
	estimated_tokens INTEGER NOT NULL DEFAULT 0,
	session_id       TEXT
);

CREATE INDEX IF NOT EXISTS idx_decisions_timestamp ON decisions(timestamp);
CREATE INDEX IF NOT EXISTS idx_decisions_tag ON decisions(tag);
CREATE INDEX IF NOT EXISTS idx_decisions_provider ON decisions(provider);
`

// StoreConfig contains configuration for the SQLite store.
type StoreConfig struct {
	// Path is the database file path. Parent directories are created.
	Path string

	// MaxOpenConns limits concurrent connections. Default: 10.
	MaxOpenConns int

	// MaxIdleConns limits idle connections. Default: 5.
	MaxIdleConns int

	// BusyTimeout is how long a connection waits on a locked database.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig(path string) *StoreConfig {
	return &StoreConfig{
		Path:         path,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		BusyTimeout:  5 * time.Second,
	}
}

// Store is a SQLite-backed decision store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenStore opens (creating if necessary) the decision database at the
// configured path and applies the schema.
func OpenStore(config *StoreConfig) (*Store, error) {
	if config == nil {
		return nil, fmt.Errorf("store config is required")
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &Store{
		db:     db,
		logger: slog.Default().With("component", "decisionlog.store"),
	}

	if err := s.initialize(config); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("decision store opened", "path", config.Path)
	return s, nil
}

func (s *Store) initialize(config *StoreConfig) error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	if config.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout=%d;", config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("set busy timeout: %w", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := s.db.Exec(
		"INSERT OR IGNORE INTO schema_version (version) VALUES (?)", SchemaVersion,
	); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	var version int
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}

	return nil
}

// Insert persists a single decision record.
func (s *Store) Insert(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO decisions (
			id, request_id, timestamp, model, tag, chain,
			provider, served_model, attempts, latency_ms, success,
			error_type, error_message, estimated_tokens, session_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errType, errMsg any
	if record.ErrorType != "" {
		errType = record.ErrorType
	}
	if record.ErrorMessage != "" {
		errMsg = record.ErrorMessage
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RequestID, record.Timestamp.UTC(), record.Model,
		record.Tag, record.Chain,
		record.Provider, record.ServedModel, record.Attempts,
		record.LatencyMS, record.Success,
		errType, errMsg, record.EstimatedTokens, record.SessionID,
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// Recent returns the most recent records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, timestamp, model, tag, chain,
		       provider, served_model, attempts, latency_ms, success,
		       error_type, error_message, estimated_tokens, session_id
		FROM decisions
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var r Record
		var provider, servedModel, errType, errMsg, sessionID sql.NullString
		err := rows.Scan(
			&r.ID, &r.RequestID, &r.Timestamp, &r.Model, &r.Tag, &r.Chain,
			&provider, &servedModel, &r.Attempts, &r.LatencyMS, &r.Success,
			&errType, &errMsg, &r.EstimatedTokens, &sessionID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		r.Provider = provider.String
		r.ServedModel = servedModel.String
		r.ErrorType = errType.String
		r.ErrorMessage = errMsg.String
		r.SessionID = sessionID.String
		records = append(records, &r)
	}
	return records, rows.Err()
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM decisions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count decisions: %w", err)
	}
	return count, nil
}

// Prune deletes records older than the cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM decisions WHERE timestamp < ?", olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune decisions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune decisions: %w", err)
	}
	return deleted, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
