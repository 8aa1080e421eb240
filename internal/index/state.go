// Package index keeps the page stores and the derived backlink, todo and
// property indexes consistent. Every operation is a pure function over an
// explicit State; callers own locking.
package index

import (
	"fmt"
	"maps"
	"slices"

	"github.com/starford/outliner/internal/models"
)

// PageStore maps page names of one namespace to their parsed content.
type PageStore map[string]models.ParsedPage

// Names returns the page names in ascending order.
func (s PageStore) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// State is the bundle of both page stores and the three derived indexes.
// A State returned by this package is never mutated afterwards.
type State struct {
	UserPages    PageStore
	JournalPages PageStore
	Backlinks    BacklinkIndex
	Todos        TodoIndex
	Properties   PropertyIndex
}

// NewState returns an empty state.
func NewState() State {
	return State{
		UserPages:    PageStore{},
		JournalPages: PageStore{},
		Backlinks:    BacklinkIndex{},
		Todos:        TodoIndex{},
		Properties:   PropertyIndex{},
	}
}

// Store returns the page store of kind.
func (s State) Store(kind models.PageKind) PageStore {
	if kind == models.JournalPage {
		return s.JournalPages
	}
	return s.UserPages
}

// Page returns the page with id. Pages without blocks count as missing.
func (s State) Page(id models.PageID) (models.ParsedPage, bool) {
	p, ok := s.Store(id.Kind)[id.Name]
	if !ok || p.IsEmpty() {
		return models.ParsedPage{}, false
	}
	return p, true
}

// LookupBlock resolves ref against the page stores.
func (s State) LookupBlock(ref models.BlockReference) (models.ParsedBlock, bool) {
	p, ok := s.Page(ref.Page)
	if !ok {
		return models.ParsedBlock{}, false
	}
	return p.Block(ref.Index)
}

// Block resolves a reference taken from one of the derived indexes. Such a
// reference always resolves unless the update protocol was bypassed, so a
// miss panics.
func (s State) Block(ref models.BlockReference) models.ParsedBlock {
	b, ok := s.LookupBlock(ref)
	if !ok {
		panic(fmt.Sprintf("index: dangling block reference %s#%d", ref.Page, ref.Index))
	}
	return b
}

// PageIDs returns every page id, journal pages first, each namespace in
// name order.
func (s State) PageIDs() []models.PageID {
	ids := make([]models.PageID, 0, len(s.JournalPages)+len(s.UserPages))
	for _, n := range s.JournalPages.Names() {
		ids = append(ids, models.AsJournalPage(n))
	}
	for _, n := range s.UserPages.Names() {
		ids = append(ids, models.AsUserPage(n))
	}
	return ids
}

// clone copies the containers of s so that the copy can be modified
// without touching s. Pages and blocks are shared; they are never mutated.
func (s State) clone() State {
	out := State{
		UserPages:    maps.Clone(s.UserPages),
		JournalPages: maps.Clone(s.JournalPages),
		Backlinks:    make(BacklinkIndex, len(s.Backlinks)),
		Todos:        slices.Clone(s.Todos),
		Properties:   make(PropertyIndex, len(s.Properties)),
	}
	if out.UserPages == nil {
		out.UserPages = PageStore{}
	}
	if out.JournalPages == nil {
		out.JournalPages = PageStore{}
	}
	for k, v := range s.Backlinks {
		out.Backlinks[k] = maps.Clone(v)
	}
	for k, v := range s.Properties {
		out.Properties[k] = slices.Clone(v)
	}
	return out
}
