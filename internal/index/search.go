package index

import (
	"strings"

	"github.com/starford/outliner/internal/models"
)

// Finding is one line containing a search term.
type Finding struct {
	Reference models.BlockReference `json:"reference"`
	Line      string                `json:"line"`
}

// SearchResult groups findings by namespace.
type SearchResult struct {
	Pages    []Finding `json:"pages"`
	Journals []Finding `json:"journals"`
}

// Search returns every raw line containing term, in page order.
func Search(term string, s State) SearchResult {
	var res SearchResult
	if term == "" {
		return res
	}
	for _, id := range s.PageIDs() {
		page := s.Store(id.Kind)[id.Name]
		for i, block := range page.Blocks {
			for _, c := range block.Content {
				if !strings.Contains(c.RawText, term) {
					continue
				}
				f := Finding{Reference: models.BlockReference{Page: id, Index: i}, Line: c.RawText}
				if id.IsJournal() {
					res.Journals = append(res.Journals, f)
				} else {
					res.Pages = append(res.Pages, f)
				}
			}
		}
	}
	return res
}
