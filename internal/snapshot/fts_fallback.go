//go:build !sqlite_fts5

package snapshot

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE on blocks.body.
	return nil
}

func ftsClear(_ *sql.Tx) error { return nil }

func ftsInsert(_ *sql.Tx, _, _ string, _ int, _ string) error {
	// Body is already stored in the blocks table.
	return nil
}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT kind, name, idx, substr(body, 1, 200)
		FROM blocks
		WHERE body LIKE ? OR name LIKE ?
		ORDER BY kind, name, idx
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshot: search: %w", err)
	}
	return scanHits(rows)
}
