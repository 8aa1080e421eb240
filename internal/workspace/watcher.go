package workspace

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/outliner/internal/storage"
)

const debounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the pages, journals and assets
// folders below root and processes change events until ctx is cancelled.
//
// Page events are coalesced: after a quiet period of 200ms a Sync pass
// brings the index up to date. Asset events drop the cached asset state.
func (s *Service) Watch(ctx context.Context, root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range []string{storage.PagesDir, storage.JournalsDir, storage.AssetsDir} {
		if err := w.Add(filepath.Join(root, dir)); err != nil {
			return err
		}
	}

	s.logger.Info("watcher: started", slog.String("root", root))

	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(debounce)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			s.logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			n, err := s.Sync(ctx)
			if err != nil {
				s.logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
				continue
			}
			s.logger.Debug("watcher: synced", slog.Int("changed", n))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".") {
				// Temp files of atomic writes.
				continue
			}
			if filepath.Base(filepath.Dir(ev.Name)) == storage.AssetsDir {
				s.assets.Invalidate(name)
				continue
			}
			if _, ok := storage.PageName(name); !ok {
				continue
			}
			scheduleSync()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
