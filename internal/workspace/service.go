// Package workspace owns the live index of a graph: it loads pages from
// storage, routes every write through the index update protocol and
// answers read queries against a consistent snapshot.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/starford/outliner/internal/apperr"
	"github.com/starford/outliner/internal/assets"
	"github.com/starford/outliner/internal/checksum"
	"github.com/starford/outliner/internal/index"
	"github.com/starford/outliner/internal/kanban"
	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/parser"
	"github.com/starford/outliner/internal/plot"
	"github.com/starford/outliner/internal/query"
	"github.com/starford/outliner/internal/render"
	"github.com/starford/outliner/internal/snapshot"
	"github.com/starford/outliner/internal/storage"
)

// Change kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a page was created, updated or deleted.
type EventCallback func(kind string, id models.PageID)

// PageDetail is the full representation of a page.
type PageDetail struct {
	ID         models.PageID       `json:"id"`
	Title      string              `json:"title"`
	Content    string              `json:"content"`
	Checksum   string              `json:"checksum"`
	Page       models.PreparedPage `json:"page"`
	References models.PreparedPage `json:"references"`
	Backlinks  []models.PageID     `json:"backlinks"`
}

// Service coordinates storage, the in-memory index and the snapshot.
type Service struct {
	mu        sync.RWMutex
	state     index.State
	checksums map[models.PageID]string

	store  storage.Provider
	assets *assets.Cache
	snap   snapshot.Store
	logger *slog.Logger

	cbMu     sync.RWMutex
	onChange EventCallback
}

// NewService creates a workspace over store. snap may be nil.
func NewService(store storage.Provider, cache *assets.Cache, snap snapshot.Store, logger *slog.Logger) *Service {
	if cache == nil {
		cache = assets.NewCache(store, 0)
	}
	return &Service{
		state:     index.NewState(),
		checksums: map[models.PageID]string{},
		store:     store,
		assets:    cache,
		snap:      snap,
		logger:    logger,
	}
}

// OnChange registers the callback invoked after every page change. The
// callback runs while the workspace is locked and must not call back into it.
func (s *Service) OnChange(cb EventCallback) {
	s.cbMu.Lock()
	s.onChange = cb
	s.cbMu.Unlock()
}

func (s *Service) emit(kind string, id models.PageID) {
	s.cbMu.RLock()
	cb := s.onChange
	s.cbMu.RUnlock()
	if cb != nil {
		cb(kind, id)
	}
}

// State returns the current index state. The returned value is never
// mutated.
func (s *Service) State() index.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) queryContext(st index.State) query.Context {
	return query.Context{State: st, Assets: s.assets}
}

// persist saves st to the snapshot store. Failures are logged; the
// in-memory index stays authoritative.
func (s *Service) persist(ctx context.Context, st index.State) {
	if s.snap == nil {
		return
	}
	if err := s.snap.Save(ctx, st); err != nil {
		s.logger.Warn("workspace: snapshot save failed", slog.String("error", err.Error()))
	}
}

// Pages returns the metadata of every non-empty page of kind. User pages
// are ordered by name, journals newest first.
func (s *Service) Pages(_ context.Context, kind models.PageKind) []models.PageMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	names := st.Store(kind).Names()
	out := make([]models.PageMetadata, 0, len(names))
	for _, name := range names {
		id := models.PageID{Name: name, Kind: kind}
		if _, ok := st.Page(id); !ok {
			continue
		}
		out = append(out, models.PageMetadata{ID: id, Checksum: s.checksums[id]})
	}
	if kind == models.JournalPage {
		slices.Reverse(out)
	}
	return out
}

// Page renders page id with its queries executed and its references.
func (s *Service) Page(_ context.Context, id models.PageID) (*PageDetail, error) {
	s.mu.RLock()
	st, cs := s.state, s.checksums[id]
	s.mu.RUnlock()

	page, ok := st.Page(id)
	if !ok {
		return nil, fmt.Errorf("workspace: page %s: %w", id, apperr.ErrNotFound)
	}
	// Links of every kind are keyed by user page name.
	key := models.AsUserPage(id.Name)
	return &PageDetail{
		ID:         id,
		Title:      title(id),
		Content:    parser.SerializePage(page),
		Checksum:   cs,
		Page:       render.Page(page, s.queryContext(st)),
		References: render.ReferencesPrepared(key, st),
		Backlinks:  nonNilSlice(st.Backlinks.Referrers(key)),
	}, nil
}

// PageHTML renders page id and its references as an HTML fragment.
func (s *Service) PageHTML(ctx context.Context, id models.PageID) (string, error) {
	d, err := s.Page(ctx, id)
	if err != nil {
		return "", err
	}
	body, err := render.HTML(d.Page)
	if err != nil {
		return "", err
	}
	refs, err := render.HTML(d.References)
	if err != nil {
		return "", err
	}
	return body + "<hr/>\n" + refs, nil
}

func title(id models.PageID) string {
	if id.IsJournal() {
		if d, ok := id.JournalDate(); ok {
			return d.Format("02.01.2006")
		}
	}
	return id.Name
}

// WritePage replaces the content of page id. A non-empty ifMatch must equal
// the checksum of the stored page.
func (s *Service) WritePage(ctx context.Context, id models.PageID, text, ifMatch string) (*PageDetail, error) {
	if strings.TrimSpace(id.Name) == "" {
		return nil, fmt.Errorf("workspace: empty page name: %w", apperr.ErrInvalid)
	}
	s.mu.Lock()
	err := s.writeLocked(ctx, id, parser.ParsePage(text), ifMatch)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Page(ctx, id)
}

// UpdateBlock replaces the markup of the block at index of page id.
func (s *Service) UpdateBlock(ctx context.Context, id models.PageID, update parser.BlockUpdate, ifMatch string) (*PageDetail, error) {
	s.mu.Lock()
	page, ok := s.state.Page(id)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("workspace: page %s: %w", id, apperr.ErrNotFound)
	}
	if update.Index < 0 || update.Index >= len(page.Blocks) {
		s.mu.Unlock()
		return nil, fmt.Errorf("workspace: block %d of %s: %w", update.Index, id, apperr.ErrNotFound)
	}
	text := parser.Join(parser.SerializeWithUpdate(page, update))
	err := s.writeLocked(ctx, id, parser.ParsePage(text), ifMatch)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Page(ctx, id)
}

// writeLocked persists page and feeds it through the update protocol. The
// caller holds s.mu.
func (s *Service) writeLocked(ctx context.Context, id models.PageID, page models.ParsedPage, ifMatch string) error {
	current, exists := s.checksums[id]
	if ifMatch != "" && exists && ifMatch != current {
		return fmt.Errorf("workspace: page %s changed: %w", id, apperr.ErrConflict)
	}
	content := []byte(parser.SerializePage(page))
	if err := s.store.WritePage(id, content); err != nil {
		return err
	}
	s.state = index.ApplyWrite(id, page, s.state)
	s.checksums[id] = checksum.Sum(content)
	s.persist(ctx, s.state)

	kind := EventUpdated
	if !exists {
		kind = EventCreated
	}
	s.emit(kind, id)
	return nil
}

// DeletePage removes page id from storage and every index.
func (s *Service) DeletePage(ctx context.Context, id models.PageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.DeletePage(id); err != nil {
		return err
	}
	s.state = index.ApplyDelete(id, s.state)
	delete(s.checksums, id)
	s.persist(ctx, s.state)
	s.emit(EventDeleted, id)
	return nil
}

// Rename renames user page oldName to newName, rewriting every link to it.
// It returns the ids of the pages that were written.
func (s *Service) Rename(ctx context.Context, oldName, newName string) ([]models.PageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldID := models.AsUserPage(strings.TrimSpace(oldName))
	_, stored := s.state.UserPages[oldID.Name]
	if !stored && len(s.state.Backlinks.Referrers(oldID)) == 0 {
		return nil, fmt.Errorf("workspace: page %s: %w", oldID, apperr.ErrNotFound)
	}
	res, err := index.Rename(oldName, newName, s.state)
	if err != nil {
		return nil, err
	}

	changed := res.ChangedIDs()
	for _, id := range changed {
		content := []byte(parser.SerializePage(res.Changed[id]))
		if err := s.store.WritePage(id, content); err != nil {
			return nil, err
		}
		s.checksums[id] = checksum.Sum(content)
	}
	for _, id := range res.Deleted {
		if err := s.store.DeletePage(id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		delete(s.checksums, id)
	}

	s.state = index.ApplyRename(res, s.state)
	s.persist(ctx, s.state)

	for _, id := range res.Deleted {
		s.emit(EventDeleted, id)
	}
	for _, id := range changed {
		s.emit(EventUpdated, id)
	}
	return changed, nil
}

// Templates lists the template pages.
func (s *Service) Templates(_ context.Context) []index.Template {
	return index.ListTemplates(s.State())
}

// InsertTemplate merges template into the block at blockIndex of target.
// A missing target page is created.
func (s *Service) InsertTemplate(ctx context.Context, template string, target models.PageID, blockIndex int) (*PageDetail, error) {
	s.mu.Lock()
	tpl, ok := s.state.Page(models.AsUserPage(template))
	if !ok || !index.IsTemplate(template) {
		s.mu.Unlock()
		return nil, fmt.Errorf("workspace: template %q: %w", template, apperr.ErrNotFound)
	}
	current := s.state.Store(target.Kind)[target.Name]
	merged := index.InsertTemplate(tpl, current, blockIndex)
	err := s.writeLocked(ctx, target, merged, "")
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Page(ctx, target)
}

// Backlinks returns the pages linking to the user page name.
func (s *Service) Backlinks(_ context.Context, name string) []models.PageID {
	return nonNilSlice(s.State().Backlinks.Referrers(models.AsUserPage(name)))
}

// Todos returns the todo entries in state, restricted to tag when set.
func (s *Service) Todos(_ context.Context, tag string, state index.TodoState) []index.TodoEntry {
	st := s.State()
	if tag != "" {
		return nonNilSlice(st.Todos.Filter(tag, state))
	}
	out := []index.TodoEntry{}
	for _, e := range st.Todos {
		if e.State == state {
			out = append(out, e)
		}
	}
	return out
}

// PropertyKeys returns every block property key in ascending order.
func (s *Service) PropertyKeys(_ context.Context) []string {
	return nonNilSlice(s.State().Properties.Keys())
}

// PropertyValues returns the distinct values of a block property key in
// first-seen order.
func (s *Service) PropertyValues(_ context.Context, key string) []string {
	return nonNilSlice(s.State().Properties.Values(key))
}

// Overview renders the table of every user page, including pages that
// only exist as link targets.
func (s *Service) Overview(_ context.Context) models.PreparedPage {
	return render.PageFlat(render.Overview(s.State()))
}

// JournalOverview renders the journal calendar.
func (s *Service) JournalOverview(_ context.Context) models.PreparedPage {
	return render.PageFlat(render.JournalOverview(s.State()))
}

// Search returns every raw line containing term.
func (s *Service) Search(_ context.Context, term string) index.SearchResult {
	return index.Search(term, s.State())
}

// FullTextSearch searches the snapshot store.
func (s *Service) FullTextSearch(_ context.Context, q string, limit int) ([]snapshot.Hit, error) {
	if s.snap == nil {
		return nil, fmt.Errorf("workspace: full-text search disabled: %w", apperr.ErrNotFound)
	}
	hits, err := s.snap.Search(q, limit)
	return nonNilSlice(hits), err
}

// Query renders a single query payload against the current state.
func (s *Service) Query(_ context.Context, raw string) models.QueryResult {
	return query.Render(raw, s.queryContext(s.State()))
}

// Kanban assembles a board.
func (s *Service) Kanban(_ context.Context, req kanban.Request) kanban.PreparedBoard {
	return kanban.Prepare(kanban.Build(req, s.State()))
}

// PlotRequest describes a line chart of a journal property.
type PlotRequest struct {
	Label       string
	PropertyKey string
	Caption     string
	Width       int
	Height      int
	From        time.Time
	To          time.Time
}

// Plot draws the values of a journal property as SVG.
func (s *Service) Plot(_ context.Context, req PlotRequest) (string, error) {
	if req.PropertyKey == "" {
		return "", fmt.Errorf("workspace: plot: missing property key: %w", apperr.ErrInvalid)
	}
	points := plot.Collect(req.PropertyKey, req.From, req.To, s.State())
	return plot.SVG(plot.Chart{
		Label:   req.Label,
		Caption: req.Caption,
		Width:   req.Width,
		Height:  req.Height,
		Points:  points,
	})
}

// Asset returns the bytes of an asset.
func (s *Service) Asset(_ context.Context, name string) ([]byte, error) {
	return s.store.ReadAsset(name)
}

// UploadAsset stores an asset and drops its cached state.
func (s *Service) UploadAsset(_ context.Context, name string, data []byte) error {
	if err := s.store.WriteAsset(name, data); err != nil {
		return err
	}
	s.assets.Invalidate(name)
	return nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
