// Package history is an optional, CLI-only log of past translation
// attempts, backed by sqlite. It is never consulted by pkg/translate
// itself — spec.md §6's one external interface stays a pure function —
// this is purely a side log a caller can opt into (DESIGN.md,
// "internal/history").
package history

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Log wraps a sqlite-backed store of translation attempts.
type Log struct {
	db *sql.DB
}

// Entry is one recorded translation attempt.
type Entry struct {
	ID        int64
	Path      string
	Success   bool
	Error     string
	Bytes     int
	Timestamp time.Time
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its one table exists.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Log{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL,
	success INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	output_bytes INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Record inserts one translation attempt.
func (l *Log) Record(path string, err error, outputBytes int) error {
	msg := ""
	success := true
	if err != nil {
		msg = err.Error()
		success = false
	}
	_, execErr := l.db.Exec(
		`INSERT INTO translations (path, success, error, output_bytes) VALUES (?, ?, ?, ?)`,
		path, success, msg, outputBytes,
	)
	return execErr
}

// Recent returns the n most recently recorded attempts, newest first.
func (l *Log) Recent(n int) ([]Entry, error) {
	rows, err := l.db.Query(
		`SELECT id, path, success, error, output_bytes, created_at
		 FROM translations ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var success int
		if err := rows.Scan(&e.ID, &e.Path, &success, &e.Error, &e.Bytes, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Success = success != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database handle.
func (l *Log) Close() error { return l.db.Close() }
