package workspace

import (
	"context"
	"log/slog"

	"github.com/starford/outliner/internal/checksum"
	"github.com/starford/outliner/internal/index"
	"github.com/starford/outliner/internal/models"
)

// Load reads every page from storage and rebuilds the index from scratch.
func (s *Service) Load(ctx context.Context) error {
	var pages []index.PageText
	checksums := map[models.PageID]string{}
	for _, kind := range []models.PageKind{models.JournalPage, models.UserPage} {
		metas, err := s.store.List(kind)
		if err != nil {
			return err
		}
		for _, m := range metas {
			data, err := s.store.ReadPage(m.ID)
			if err != nil {
				s.logger.Warn("load: read failed", slog.String("page", m.ID.String()), slog.String("error", err.Error()))
				continue
			}
			pages = append(pages, index.PageText{ID: m.ID, Text: string(data)})
			checksums[m.ID] = checksum.Sum(data)
		}
	}

	st := index.Refresh(pages)
	s.mu.Lock()
	s.state = st
	s.checksums = checksums
	s.mu.Unlock()

	s.persist(ctx, st)
	s.logger.Info("load: graph indexed",
		slog.Int("pages", len(st.UserPages)),
		slog.Int("journals", len(st.JournalPages)))
	return nil
}

// Sync brings the index up to date with storage:
//   - new/changed pages are parsed and written through the update protocol
//   - pages removed from disk are deleted from the index
//
// It returns the number of pages that changed.
func (s *Service) Sync(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type change struct {
		kind string
		id   models.PageID
	}
	var changes []change

	disk := map[models.PageID]struct{}{}
	for _, kind := range []models.PageKind{models.JournalPage, models.UserPage} {
		metas, err := s.store.List(kind)
		if err != nil {
			return 0, err
		}
		for _, m := range metas {
			disk[m.ID] = struct{}{}
			known, exists := s.checksums[m.ID]
			if exists && known == m.Checksum {
				continue
			}
			data, err := s.store.ReadPage(m.ID)
			if err != nil {
				s.logger.Warn("sync: read failed", slog.String("page", m.ID.String()), slog.String("error", err.Error()))
				continue
			}
			s.state = index.ApplyWriteText(m.ID, string(data), s.state)
			s.checksums[m.ID] = checksum.Sum(data)
			kind := EventUpdated
			if !exists {
				kind = EventCreated
			}
			changes = append(changes, change{kind, m.ID})
			s.logger.Debug("sync: indexed", slog.String("page", m.ID.String()))
		}
	}

	for id := range s.checksums {
		if _, ok := disk[id]; ok {
			continue
		}
		s.state = index.ApplyDelete(id, s.state)
		delete(s.checksums, id)
		changes = append(changes, change{EventDeleted, id})
		s.logger.Debug("sync: removed stale", slog.String("page", id.String()))
	}

	if len(changes) > 0 {
		s.persist(ctx, s.state)
	}
	for _, c := range changes {
		s.emit(c.kind, c.id)
	}
	return len(changes), nil
}
