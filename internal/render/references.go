package render

import (
	"github.com/starford/outliner/internal/index"
	"github.com/starford/outliner/internal/models"
)

const noReferences = "No references found"

// References builds the "referenced by" section of page id: one group of
// wiki pages and one of journal pages, each sorted by name.
func References(id models.PageID, s index.State) models.ParsedPage {
	refs := s.Backlinks.Referrers(id)
	if len(refs) == 0 {
		return models.ParsedPage{Blocks: []models.ParsedBlock{textBlock(0, noReferences)}}
	}
	var pages, journals []models.PageID
	for _, r := range refs {
		if r.IsJournal() {
			journals = append(journals, r)
		} else {
			pages = append(pages, r)
		}
	}
	var blocks []models.ParsedBlock
	blocks = append(blocks, referenceGroup("Wiki-Pages", pages)...)
	blocks = append(blocks, referenceGroup("Journal-Pages", journals)...)
	return models.ParsedPage{Blocks: blocks}
}

// ReferencesPrepared renders the references section of id.
func ReferencesPrepared(id models.PageID, s index.State) models.PreparedPage {
	return PageFlat(References(id, s))
}

func referenceGroup(name string, ids []models.PageID) []models.ParsedBlock {
	blocks := []models.ParsedBlock{textBlock(0, name+" that reference this page")}
	for _, id := range ids {
		tok := models.Link(id.Name)
		if id.IsJournal() {
			tok = models.DateLink(id.Name)
		}
		blocks = append(blocks, models.ParsedBlock{
			Indentation: 1,
			Content:     []models.BlockContent{{RawText: id.Name, Tokens: []models.BlockToken{tok}}},
		})
	}
	if len(ids) == 0 {
		blocks = append(blocks, textBlock(1, noReferences))
	}
	return blocks
}

func textBlock(indentation int, text string) models.ParsedBlock {
	return models.ParsedBlock{
		Indentation: indentation,
		Content:     []models.BlockContent{{RawText: text, Tokens: []models.BlockToken{models.Text(text)}}},
	}
}
