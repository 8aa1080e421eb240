package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/storage"
	"github.com/starford/outliner/internal/testutil"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func watchedService(t *testing.T) (string, *Service) {
	t.Helper()
	dir, store := testutil.TestGraph(t)
	svc := NewService(store, nil, nil, testutil.Logger())
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Watch(ctx, dir)
	time.Sleep(100 * time.Millisecond)
	return dir, svc
}

func hasPage(svc *Service, id models.PageID) bool {
	_, ok := svc.State().Page(id)
	return ok
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	dir, svc := watchedService(t)

	var mu sync.Mutex
	var events []string
	svc.OnChange(func(kind string, id models.PageID) {
		mu.Lock()
		events = append(events, kind+":"+id.String())
		mu.Unlock()
	})

	_ = os.WriteFile(filepath.Join(dir, storage.PagesDir, "new.md"), []byte("- fresh [[other]]\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasPage(svc, models.AsUserPage("new"))
	}, "new file not indexed by watcher")

	if refs := svc.Backlinks(context.Background(), "other"); len(refs) != 1 {
		t.Errorf("backlinks = %v", refs)
	}

	want := "created:" + models.AsUserPage("new").String()
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == want {
				return true
			}
		}
		return false
	}, "expected created callback")
}

func TestWatcher_JournalIndexed(t *testing.T) {
	dir, svc := watchedService(t)

	_ = os.WriteFile(filepath.Join(dir, storage.JournalsDir, "2024_05_06.md"), []byte("- [ ] call\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return len(svc.State().Todos) == 1
	}, "journal todo not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	dir, store := testutil.TestGraph(t)
	_ = store.WritePage(models.AsUserPage("del"), []byte("- Delete Me\n"))

	svc := NewService(store, nil, nil, testutil.Logger())
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !hasPage(svc, models.AsUserPage("del")) {
		t.Fatal("precondition: page should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Watch(ctx, dir)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(dir, storage.PagesDir, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !hasPage(svc, models.AsUserPage("del"))
	}, "deleted file still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	dir, store := testutil.TestGraph(t)
	_ = store.WritePage(models.AsUserPage("old"), []byte("- Rename\n"))

	svc := NewService(store, nil, nil, testutil.Logger())
	_ = svc.Load(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Watch(ctx, dir)
	time.Sleep(100 * time.Millisecond)

	pages := filepath.Join(dir, storage.PagesDir)
	_ = os.Rename(filepath.Join(pages, "old.md"), filepath.Join(pages, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !hasPage(svc, models.AsUserPage("old")) && hasPage(svc, models.AsUserPage("renamed"))
	}, "rename reconciliation failed: old page should be removed and new page indexed")
}

func TestWatcher_AssetChangeInvalidatesCache(t *testing.T) {
	dir, svc := watchedService(t)
	path := filepath.Join(dir, storage.AssetsDir, "notes.txt")
	_ = os.WriteFile(path, []byte("v1"), 0o644)

	if got := svc.assets.Lookup("notes.txt"); got.Content != "v1" {
		t.Fatalf("first lookup = %+v", got)
	}
	_ = os.WriteFile(path, []byte("v2"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return svc.assets.Lookup("notes.txt").Content == "v2"
	}, "asset cache not invalidated")
}
