package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/sethvargo/go-retry"

	"github.com/starford/outliner/internal/index"
	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/parser"
)

// Hit represents one search hit.
type Hit struct {
	Page    models.PageID `json:"page"`
	Index   int           `json:"index"`
	Snippet string        `json:"snippet"`
}

// Save replaces the stored snapshot with s in a single transaction. A
// transaction that fails because the database is busy is retried with a
// Fibonacci backoff.
func (db *DB) Save(ctx context.Context, s index.State) error {
	b := retry.WithMaxRetries(5, retry.NewFibonacci(50*time.Millisecond))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := db.save(ctx, s)
		if isBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isBusy(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
}

func (db *DB) save(ctx context.Context, s index.State) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, table := range []string{"pages", "blocks"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("snapshot: clear %s: %w", table, err)
		}
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	if err := savePages(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit()
}

func savePages(ctx context.Context, tx *sql.Tx, s index.State) error {
	pageStmt, err := tx.PrepareContext(ctx, `INSERT INTO pages (kind, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare page insert: %w", err)
	}
	defer pageStmt.Close()
	blockStmt, err := tx.PrepareContext(ctx, `INSERT INTO blocks (kind, name, idx, indentation, body) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare block insert: %w", err)
	}
	defer blockStmt.Close()

	for _, id := range s.PageIDs() {
		page := s.Store(id.Kind)[id.Name]
		kind := id.Kind.String()
		if _, err := pageStmt.ExecContext(ctx, kind, id.Name); err != nil {
			return fmt.Errorf("snapshot: insert page %s: %w", id, err)
		}
		for i, b := range page.Blocks {
			body := parser.BlockMarkup(b)
			if _, err := blockStmt.ExecContext(ctx, kind, id.Name, i, b.Indentation, body); err != nil {
				return fmt.Errorf("snapshot: insert block %s#%d: %w", id, i, err)
			}
			if err := ftsInsert(tx, kind, id.Name, i, body); err != nil {
				return err
			}
		}
	}
	return nil
}

func scanHits(rows *sql.Rows) ([]Hit, error) {
	defer rows.Close()
	var out []Hit
	for rows.Next() {
		var h Hit
		var kind string
		if err := rows.Scan(&kind, &h.Page.Name, &h.Index, &h.Snippet); err != nil {
			return nil, err
		}
		h.Page.Kind = models.ParsePageKind(kind)
		out = append(out, h)
	}
	return out, rows.Err()
}
