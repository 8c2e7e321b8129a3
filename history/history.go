// Package history keeps a local ledger of command runs. Every dwf
// invocation appends one row per executed command; setup:doctor reads
// the tail back. The ledger is advisory: callers treat record failures
// as warnings, never as run failures.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultFile is the ledger filename under the cache root.
const DefaultFile = "history.db"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	command     TEXT NOT NULL,
	profile     TEXT NOT NULL,
	fingerprint TEXT NOT NULL DEFAULT '',
	exit_code   INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	started_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Entry is one recorded command run.
type Entry struct {
	RunID       string
	Command     string
	Profile     string
	Fingerprint string
	ExitCode    int
	Duration    time.Duration
	StartedAt   time.Time
}

// Store wraps the SQLite connection behind the ledger.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens or creates the ledger at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := conn.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=2000;`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

// OpenAt opens the ledger under its default filename in cacheRoot.
func OpenAt(cacheRoot string) (*Store, error) {
	return Open(filepath.Join(cacheRoot, DefaultFile))
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record appends one run to the ledger.
func (s *Store) Record(e Entry) error {
	_, err := s.conn.Exec(
		`INSERT INTO runs (run_id, command, profile, fingerprint, exit_code, duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Command, e.Profile, e.Fingerprint, e.ExitCode,
		e.Duration.Milliseconds(), e.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Last returns up to n most recent runs, newest first.
func (s *Store) Last(n int) ([]Entry, error) {
	rows, err := s.conn.Query(
		`SELECT run_id, command, profile, fingerprint, exit_code, duration_ms, started_at
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMs int64
		var started string
		if err := rows.Scan(&e.RunID, &e.Command, &e.Profile, &e.Fingerprint,
			&e.ExitCode, &durationMs, &started); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			e.StartedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
