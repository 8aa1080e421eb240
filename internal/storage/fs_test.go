package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/outliner/internal/apperr"
	"github.com/starford/outliner/internal/checksum"
	"github.com/starford/outliner/internal/models"
)

func tempGraph(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndReadPage(t *testing.T) {
	s := tempGraph(t)
	id := models.AsUserPage("hello")
	content := []byte("- Hello\n- World\n")
	if err := s.WritePage(id, content); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	got, err := s.ReadPage(id)
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), PagesDir, "hello.md")); err != nil {
		t.Errorf("page file: %v", err)
	}
}

func TestHierarchicalNamesAreEncoded(t *testing.T) {
	s := tempGraph(t)
	id := models.AsUserPage("project/alpha")
	if err := s.WritePage(id, []byte("- deep\n")); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), PagesDir, "project%2Falpha.md")); err != nil {
		t.Fatalf("encoded file: %v", err)
	}
	items, err := s.List(models.UserPage)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ID != id {
		t.Errorf("items = %+v", items)
	}
}

func TestJournalsLiveApart(t *testing.T) {
	s := tempGraph(t)
	_ = s.WritePage(models.AsUserPage("x"), []byte("- page\n"))
	_ = s.WritePage(models.AsJournalPage("2024_01_02"), []byte("- day\n"))

	pages, _ := s.List(models.UserPage)
	journals, _ := s.List(models.JournalPage)
	if len(pages) != 1 || len(journals) != 1 {
		t.Fatalf("pages=%d journals=%d", len(pages), len(journals))
	}
	if journals[0].ID != models.AsJournalPage("2024_01_02") {
		t.Errorf("journal = %+v", journals[0].ID)
	}
	if journals[0].Checksum != checksum.Sum([]byte("- day\n")) {
		t.Errorf("checksum = %s", journals[0].Checksum)
	}
}

func TestDeletePage(t *testing.T) {
	s := tempGraph(t)
	id := models.AsUserPage("del")
	_ = s.WritePage(id, []byte("bye"))
	if err := s.DeletePage(id); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if _, err := s.ReadPage(id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("ReadPage after delete: %v", err)
	}
	if err := s.DeletePage(id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestListSkipsForeignFiles(t *testing.T) {
	s := tempGraph(t)
	_ = s.WritePage(models.AsUserPage("a"), []byte("a"))
	_ = os.WriteFile(filepath.Join(s.Root(), PagesDir, "readme.txt"), []byte("not md"), 0o644)
	_ = os.Mkdir(filepath.Join(s.Root(), PagesDir, "sub"), 0o755)

	items, err := s.List(models.UserPage)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("len = %d, want 1", len(items))
	}
}

func TestAssets(t *testing.T) {
	s := tempGraph(t)
	if err := s.WriteAsset("image one.png", []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteAsset: %v", err)
	}
	size, err := s.AssetSize("image one.png")
	if err != nil || size != 3 {
		t.Fatalf("AssetSize = %d, %v", size, err)
	}
	data, err := s.ReadAsset("image one.png")
	if err != nil || len(data) != 3 {
		t.Fatalf("ReadAsset = %v, %v", data, err)
	}
	if _, err := s.AssetSize("missing.png"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing asset: %v", err)
	}
}

func TestAssetTraversalBlocked(t *testing.T) {
	s := tempGraph(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
		"",
	}
	for _, p := range cases {
		if _, err := s.ReadAsset(p); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("read %q: %v", p, err)
		}
		if err := s.WriteAsset(p, []byte("x")); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("write %q: %v", p, err)
		}
	}
}

func TestPageNamesCannotEscape(t *testing.T) {
	s := tempGraph(t)
	id := models.AsUserPage("../../outside")
	if err := s.WritePage(id, []byte("x")); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), PagesDir, "..%2F..%2Foutside.md")); err != nil {
		t.Errorf("expected file inside pages folder: %v", err)
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempGraph(t)
	id := models.AsUserPage("atomic")
	_ = s.WritePage(id, []byte("original content"))

	updated := []byte("updated content")
	if err := s.WritePage(id, updated); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	got, _ := s.ReadPage(id)
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.Root(), PagesDir, ".outliner-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestFileNameRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"plain", "plain.md"},
		{"a/b/c", "a%2Fb%2Fc.md"},
		{"with space", "with space.md"},
	}
	for _, tt := range tests {
		if got := FileName(tt.name); got != tt.file {
			t.Errorf("FileName(%q) = %q, want %q", tt.name, got, tt.file)
		}
		if got, ok := PageName(tt.file); !ok || got != tt.name {
			t.Errorf("PageName(%q) = %q, %v", tt.file, got, ok)
		}
	}
	if _, ok := PageName(".md"); ok {
		t.Error("empty base name accepted")
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/outliner-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "outliner-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
