// Package assets memoizes the inline state of files in the assets folder
// for the insert-file-content query.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/starford/outliner/internal/apperr"
)

// DefaultMaxInlineSize is the largest file that is inlined into a page.
const DefaultMaxInlineSize int64 = 16 << 20

// Kind is the outcome of looking up an asset.
type Kind int

const (
	Miss Kind = iota
	NotFound
	TooLarge
	NotText
	Found
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case TooLarge:
		return "too-large"
	case NotText:
		return "not-text"
	case Found:
		return "found"
	default:
		return "miss"
	}
}

// State is a cached asset lookup. Content is set for Found, FileSize and
// MaxSize for TooLarge.
type State struct {
	Kind     Kind
	Content  string
	FileSize int64
	MaxSize  int64
}

// Reader gives access to the raw asset files. Size returns an error
// wrapping apperr.ErrNotFound when the file does not exist.
type Reader interface {
	AssetSize(name string) (int64, error)
	ReadAsset(name string) ([]byte, error)
}

// Cache is a concurrency-safe memo of asset states backed by a Reader.
type Cache struct {
	mu      sync.Mutex
	entries map[string]State

	reader  Reader
	maxSize int64
}

// NewCache creates a cache. A maxSize <= 0 selects DefaultMaxInlineSize.
func NewCache(reader Reader, maxSize int64) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxInlineSize
	}
	return &Cache{entries: map[string]State{}, reader: reader, maxSize: maxSize}
}

// Get returns the cached state of name, or a Miss.
func (c *Cache) Get(name string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.entries[name]; ok {
		return s
	}
	return State{Kind: Miss}
}

// Insert stores the state of name.
func (c *Cache) Insert(name string, s State) {
	c.mu.Lock()
	c.entries[name] = s
	c.mu.Unlock()
}

// Invalidate forgets name so that the next lookup reloads it.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}

// Load reads name from the underlying reader without touching the cache.
func (c *Cache) Load(name string) (State, error) {
	if c.reader == nil {
		return State{Kind: NotFound}, nil
	}
	size, err := c.reader.AssetSize(name)
	if errors.Is(err, apperr.ErrNotFound) {
		return State{Kind: NotFound}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("assets: stat %s: %w", name, err)
	}
	if size > c.maxSize {
		return State{Kind: TooLarge, FileSize: size, MaxSize: c.maxSize}, nil
	}
	data, err := c.reader.ReadAsset(name)
	if errors.Is(err, apperr.ErrNotFound) {
		return State{Kind: NotFound}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("assets: read %s: %w", name, err)
	}
	if !IsText(data) {
		return State{Kind: NotText}, nil
	}
	return State{Kind: Found, Content: string(data)}, nil
}

// Lookup returns the cached state of name, loading and caching it on a
// miss. Read errors are reported as NotFound and not cached.
func (c *Cache) Lookup(name string) State {
	if s := c.Get(name); s.Kind != Miss {
		return s
	}
	s, err := c.Load(name)
	if err != nil {
		return State{Kind: NotFound}
	}
	c.Insert(name, s)
	return s
}

// IsText reports whether data looks like text: it contains neither a NUL
// nor a 0xff byte.
func IsText(data []byte) bool {
	return bytes.IndexByte(data, 0x00) < 0 && bytes.IndexByte(data, 0xff) < 0
}
