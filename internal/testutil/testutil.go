// Package testutil provides shared test helpers for setting up graphs and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/outliner/internal/snapshot"
	"github.com/starford/outliner/internal/storage"
)

// TestDB creates a temporary SQLite snapshot database that is automatically cleaned up.
func TestDB(t *testing.T) *snapshot.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "outliner-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := snapshot.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestGraph creates a temporary graph directory with a file-system provider.
func TestGraph(t *testing.T) (string, *storage.FS) {
	t.Helper()
	graphDir := t.TempDir()
	store, err := storage.NewFS(graphDir)
	if err != nil {
		t.Fatal(err)
	}
	return graphDir, store
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
