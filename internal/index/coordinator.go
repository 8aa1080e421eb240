package index

import (
	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/parser"
)

// PageText is the stored markup of one page.
type PageText struct {
	ID   models.PageID
	Text string
}

// Refresh parses every page and derives all indexes from scratch.
func Refresh(pages []PageText) State {
	s := NewState()
	for _, p := range pages {
		s.Store(p.ID.Kind)[p.ID.Name] = parser.ParsePage(p.Text)
	}
	s.Backlinks = BuildBacklinks(s)
	s.Todos = BuildTodos(s)
	s.Properties = BuildProperties(s)
	return s
}

// ApplyWrite replaces the content of page id and its contributions to
// every derived index. The input state is left untouched.
func ApplyWrite(id models.PageID, page models.ParsedPage, s State) State {
	next := remove(id, s)
	next.Store(id.Kind)[id.Name] = page
	IndexPageBacklinks(next.Backlinks, id, page)
	next.Todos = IndexPageTodos(next.Todos, id, page)
	insertPageProperties(next.Properties, id, page)
	return next
}

// ApplyWriteText parses text and applies it as the new content of id.
func ApplyWriteText(id models.PageID, text string, s State) State {
	return ApplyWrite(id, parser.ParsePage(text), s)
}

// ApplyDelete removes page id and all of its index contributions.
func ApplyDelete(id models.PageID, s State) State {
	return remove(id, s)
}

// remove strips id from every derived index and from its store. Todos are
// matched by page name only.
func remove(id models.PageID, s State) State {
	next := s.clone()
	next.Backlinks.removeReferrer(id)
	next.Todos = next.Todos.withoutPageName(id.Name)
	next.Properties.removePage(id)
	delete(next.Store(id.Kind), id.Name)
	return next
}
