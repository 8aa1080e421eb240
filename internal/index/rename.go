package index

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/starford/outliner/internal/apperr"
	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/parser"
)

// RenameResult lists the pages a rename rewrote and the pages it removed.
// The derived indexes are not touched; pass the result to ApplyRename.
type RenameResult struct {
	Changed map[models.PageID]models.ParsedPage
	Deleted []models.PageID
}

// ChangedIDs returns the ids of the rewritten pages in name order.
func (r RenameResult) ChangedIDs() []models.PageID {
	return slices.SortedFunc(maps.Keys(r.Changed), models.ComparePageIDs)
}

// Rename rewrites every page linking to oldName so that it links to
// newName and moves the blocks of oldName to newName. When newName already
// exists its blocks come first. oldName is always scheduled for deletion.
func Rename(oldName, newName string, s State) (RenameResult, error) {
	oldName, newName = strings.TrimSpace(oldName), strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return RenameResult{}, fmt.Errorf("index: rename: empty page name: %w", apperr.ErrInvalid)
	}
	if oldName == newName {
		return RenameResult{}, fmt.Errorf("index: rename: %q to itself: %w", oldName, apperr.ErrInvalid)
	}

	oldID := models.AsUserPage(oldName)
	newID := models.AsUserPage(newName)
	res := RenameResult{Changed: map[models.PageID]models.ParsedPage{}}

	oldTag := parser.TokenMarkup(models.Link(oldName))
	newTag := parser.TokenMarkup(models.Link(newName))
	for _, ref := range s.Backlinks.Referrers(oldID) {
		page, ok := s.Store(ref.Kind)[ref.Name]
		if !ok {
			continue
		}
		if rewritten, changed := replaceTag(page, oldTag, newTag); changed {
			res.Changed[ref] = rewritten
		}
	}

	current := func(id models.PageID) (models.ParsedPage, bool) {
		if p, ok := res.Changed[id]; ok {
			return p, true
		}
		p, ok := s.UserPages[id.Name]
		return p, ok
	}

	if oldPage, ok := current(oldID); ok {
		target, exists := current(newID)
		switch {
		case exists:
			merged := models.ParsedPage{Blocks: slices.Concat(target.Blocks, oldPage.Blocks)}
			res.Changed[newID] = merged
		case !oldPage.IsEmpty():
			res.Changed[newID] = oldPage
		}
	}
	delete(res.Changed, oldID)
	res.Deleted = []models.PageID{oldID}
	return res, nil
}

// replaceTag substitutes the literal tag markup in the raw text of every
// line and re-tokenizes the blocks that changed.
func replaceTag(page models.ParsedPage, oldTag, newTag string) (models.ParsedPage, bool) {
	changed := false
	out := models.ParsedPage{Blocks: make([]models.ParsedBlock, len(page.Blocks))}
	for i, block := range page.Blocks {
		if !blockContains(block, oldTag) {
			out.Blocks[i] = block
			continue
		}
		lines := make([]string, len(block.Content))
		for j, c := range block.Content {
			lines[j] = strings.ReplaceAll(c.RawText, oldTag, newTag)
		}
		out.Blocks[i] = parser.ParseLines(block.Indentation, lines)
		changed = true
	}
	return out, changed
}

func blockContains(block models.ParsedBlock, tag string) bool {
	for _, c := range block.Content {
		if strings.Contains(c.RawText, tag) {
			return true
		}
	}
	return false
}

// ApplyRename feeds a rename result through the update protocol: every
// deleted page is removed, then every changed page is written.
func ApplyRename(res RenameResult, s State) State {
	for _, id := range res.Deleted {
		s = ApplyDelete(id, s)
	}
	for _, id := range res.ChangedIDs() {
		s = ApplyWrite(id, res.Changed[id], s)
	}
	return s
}
