package snapshot

import (
	"context"

	"github.com/starford/outliner/internal/index"
)

// Store persists index snapshots and answers full-text queries against
// the last saved one. Consumers depend on this interface rather than the
// concrete *DB type.
type Store interface {
	Save(ctx context.Context, s index.State) error
	Search(query string, limit int) ([]Hit, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
