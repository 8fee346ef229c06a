// Package journal provides a SQLite-backed record of classification
// outcomes. It is an observer: the pipeline writes one row per handled
// intake event and never reads the journal to make decisions.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS outcomes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	path         TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	token        TEXT NOT NULL DEFAULT '',
	destination  TEXT NOT NULL DEFAULT '',
	checksum     TEXT NOT NULL DEFAULT '',
	detail       TEXT NOT NULL DEFAULT '',
	processed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_processed_at ON outcomes(processed_at);
`

// Entry is one journal row.
type Entry struct {
	Path        string
	Outcome     string
	Token       string
	Destination string
	Checksum    string
	Detail      string
	ProcessedAt time.Time
}

// Recorder defines the journal operations. Consumers should depend on this
// interface rather than the concrete *DB type to facilitate testing.
type Recorder interface {
	Record(e Entry) error
	Recent(limit int) ([]Entry, error)
	Close() error
}

var _ Recorder = (*DB)(nil)

// DB wraps a sql.DB with journal-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record appends one outcome row.
func (db *DB) Record(e Entry) error {
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO outcomes (path, outcome, token, destination, checksum, detail, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.Path, e.Outcome, e.Token, e.Destination, e.Checksum, e.Detail, e.ProcessedAt)
	if err != nil {
		return fmt.Errorf("journal: record: %w", err)
	}
	return nil
}

// Recent returns the newest rows, most recent first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT path, outcome, token, destination, checksum, detail, processed_at
		FROM outcomes ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.Outcome, &e.Token, &e.Destination, &e.Checksum, &e.Detail, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
