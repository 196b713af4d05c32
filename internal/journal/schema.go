// Package journal records the outcome of every joined-note write in SQLite.
//
// The journal is an audit trail only; the vault scan stays the single source of
// truth for whether a note exists.
package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS writes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	strategy   TEXT NOT NULL DEFAULT '',
	note_key   TEXT NOT NULL,
	path       TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	written_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_writes_key ON writes(note_key);
CREATE INDEX IF NOT EXISTS idx_writes_path ON writes(path);
`

// DB wraps a sql.DB with journal operations.
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
