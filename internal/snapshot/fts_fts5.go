//go:build sqlite_fts5

package snapshot

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS blocks_fts USING fts5(
			kind UNINDEXED,
			name UNINDEXED,
			idx UNINDEXED,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsClear(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM blocks_fts`); err != nil {
		return fmt.Errorf("snapshot: clear fts: %w", err)
	}
	return nil
}

func ftsInsert(tx *sql.Tx, kind, name string, idx int, body string) error {
	_, err := tx.Exec(`INSERT INTO blocks_fts (kind, name, idx, body) VALUES (?, ?, ?, ?)`,
		kind, name, idx, body)
	if err != nil {
		return fmt.Errorf("snapshot: insert fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search and returns matching blocks with snippets.
func (db *DB) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT kind,
		       name,
		       idx,
		       snippet(blocks_fts, 3, '<b>', '</b>', '...', 64)
		FROM blocks_fts
		WHERE blocks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshot: search: %w", err)
	}
	return scanHits(rows)
}
