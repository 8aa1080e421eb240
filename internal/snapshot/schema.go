// Package snapshot mirrors the pages and blocks of the in-memory state into
// SQLite for full-text search, using FTS5 when it is compiled in.
package snapshot

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS pages (
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	PRIMARY KEY (kind, name)
);

CREATE TABLE IF NOT EXISTS blocks (
	kind        TEXT    NOT NULL,
	name        TEXT    NOT NULL,
	idx         INTEGER NOT NULL,
	indentation INTEGER NOT NULL DEFAULT 0,
	body        TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (kind, name, idx)
);

DROP TABLE IF EXISTS backlinks;
DROP TABLE IF EXISTS todos;
DROP TABLE IF EXISTS properties;
`

// DB wraps a sql.DB with snapshot-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("snapshot: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("snapshot: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("snapshot: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("snapshot: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
