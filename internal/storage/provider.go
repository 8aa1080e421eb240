// Package storage defines the graph file-system abstraction.
package storage

import "github.com/starford/outliner/internal/models"

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks github.com/starford/outliner/internal/storage Provider

// Directory layout below the graph root.
const (
	PagesDir    = "pages"
	JournalsDir = "journals"
	AssetsDir   = "assets"
)

// Provider is the interface for graph file operations. Missing pages and
// assets are reported with errors wrapping apperr.ErrNotFound.
type Provider interface {
	// List returns metadata for every page of kind.
	List(kind models.PageKind) ([]models.PageMetadata, error)
	// ReadPage returns the stored markup of a page.
	ReadPage(id models.PageID) ([]byte, error)
	// WritePage atomically replaces the markup of a page.
	WritePage(id models.PageID, content []byte) error
	// DeletePage removes a page file.
	DeletePage(id models.PageID) error
	// AssetSize returns the size in bytes of an asset file.
	AssetSize(name string) (int64, error)
	// ReadAsset returns the raw bytes of an asset file.
	ReadAsset(name string) ([]byte, error)
	// WriteAsset atomically stores an asset file.
	WriteAsset(name string, content []byte) error
}
