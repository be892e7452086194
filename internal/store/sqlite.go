package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite persists gate state in a single-file database so cooldowns survive
// restarts.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the state database at path and applies the
// schema.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state db '%s': %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS gate_state (
		class           TEXT PRIMARY KEY,
		last_fired_unix INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS watcher_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create state tables: %w", err)
	}
	return nil
}

// LastFired returns the last firing time for class.
func (s *SQLite) LastFired(class string) (time.Time, bool, error) {
	var unix int64
	err := s.db.QueryRow(
		`SELECT last_fired_unix FROM gate_state WHERE class = ?`, class,
	).Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read gate state: %w", err)
	}
	return time.Unix(unix, 0), true, nil
}

// SetLastFired records the last firing time for class.
func (s *SQLite) SetLastFired(class string, t time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO gate_state (class, last_fired_unix) VALUES (?, ?)
		 ON CONFLICT(class) DO UPDATE SET last_fired_unix = excluded.last_fired_unix`,
		class, t.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write gate state: %w", err)
	}
	return nil
}

// LastPool returns the last tracked pool.
func (s *SQLite) LastPool() (string, bool, error) {
	var pool string
	err := s.db.QueryRow(
		`SELECT value FROM watcher_state WHERE key = 'last_pool'`,
	).Scan(&pool)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read watcher state: %w", err)
	}
	return pool, true, nil
}

// SetLastPool records the tracked pool.
func (s *SQLite) SetLastPool(pool string) error {
	_, err := s.db.Exec(
		`INSERT INTO watcher_state (key, value) VALUES ('last_pool', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		pool,
	)
	if err != nil {
		return fmt.Errorf("failed to write watcher state: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Ensure SQLite implements Store
var _ Store = (*SQLite)(nil)
