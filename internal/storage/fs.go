package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/outliner/internal/apperr"
	"github.com/starford/outliner/internal/checksum"
	"github.com/starford/outliner/internal/models"
)

const (
	pageExt      = ".md"
	encodedSlash = "%2F"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to graph directory
}

// NewFS creates a new FS provider rooted at the given directory and
// creates the pages, journals and assets folders below it. The root must
// already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	for _, d := range []string{PagesDir, JournalsDir, AssetsDir} {
		if err := os.MkdirAll(filepath.Join(abs, d), 0o755); err != nil {
			return nil, fmt.Errorf("storage: mkdir %s: %w", d, err)
		}
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute graph directory.
func (f *FS) Root() string { return f.root }

// KindDir returns the folder holding pages of kind, relative to the root.
func KindDir(kind models.PageKind) string {
	if kind == models.JournalPage {
		return JournalsDir
	}
	return PagesDir
}

// FileName encodes a page name as a file name. Hierarchy separators are
// stored as %2F so that every page lives directly in its folder.
func FileName(name string) string {
	return strings.ReplaceAll(name, "/", encodedSlash) + pageExt
}

// PageName decodes a file name produced by FileName.
func PageName(file string) (string, bool) {
	base, ok := strings.CutSuffix(file, pageExt)
	if !ok || base == "" {
		return "", false
	}
	return strings.ReplaceAll(base, encodedSlash, "/"), true
}

// PagePath is the path of a page file relative to the root.
func PagePath(id models.PageID) string {
	return filepath.Join(KindDir(id.Kind), FileName(id.Name))
}

// safePath resolves a relative path against the graph root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s: %w", rel, apperr.ErrInvalid)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes graph root: %s: %w", rel, apperr.ErrInvalid)
	}
	return abs, nil
}

func (f *FS) assetPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("storage: invalid asset name %q: %w", name, apperr.ErrInvalid)
	}
	return f.safePath(filepath.Join(AssetsDir, name))
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	return err
}

// List returns metadata for every page file of kind.
func (f *FS) List(kind models.PageKind) ([]models.PageMetadata, error) {
	dir := filepath.Join(f.root, KindDir(kind))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", kind, notFound(err))
	}
	var out []models.PageMetadata
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := PageName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", e.Name(), err)
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("storage: read %s: %w", e.Name(), err)
		}
		out = append(out, models.PageMetadata{
			ID:        models.PageID{Name: name, Kind: kind},
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// ReadPage returns the raw markup of a page.
func (f *FS) ReadPage(id models.PageID) ([]byte, error) {
	abs, err := f.safePath(PagePath(id))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", id, notFound(err))
	}
	return data, nil
}

// WritePage atomically writes the markup of a page.
func (f *FS) WritePage(id models.PageID, content []byte) error {
	abs, err := f.safePath(PagePath(id))
	if err != nil {
		return err
	}
	return writeAtomic(abs, content)
}

// DeletePage removes a page file.
func (f *FS) DeletePage(id models.PageID) error {
	abs, err := f.safePath(PagePath(id))
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", id, notFound(err))
	}
	return nil
}

// AssetSize returns the size of an asset file.
func (f *FS) AssetSize(name string) (int64, error) {
	abs, err := f.assetPath(name)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return 0, fmt.Errorf("storage: stat asset %s: %w", name, notFound(err))
	}
	if info.IsDir() {
		return 0, fmt.Errorf("storage: asset %s is a directory: %w", name, apperr.ErrNotFound)
	}
	return info.Size(), nil
}

// ReadAsset returns the bytes of an asset file.
func (f *FS) ReadAsset(name string) ([]byte, error) {
	abs, err := f.assetPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read asset %s: %w", name, notFound(err))
	}
	return data, nil
}

// WriteAsset atomically stores an asset file.
func (f *FS) WriteAsset(name string, content []byte) error {
	abs, err := f.assetPath(name)
	if err != nil {
		return err
	}
	return writeAtomic(abs, content)
}

// writeAtomic writes content: tmp file → fsync → rename.
func writeAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".outliner-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
