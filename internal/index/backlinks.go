package index

import (
	"slices"

	"github.com/starford/outliner/internal/models"
)

// BacklinkIndex maps a link target to the set of pages linking to it.
// Targets are always user pages; referrers may be of either kind.
type BacklinkIndex map[models.PageID]map[models.PageID]struct{}

// Referrers returns the pages linking to target, sorted by name.
func (b BacklinkIndex) Referrers(target models.PageID) []models.PageID {
	set := b[target]
	out := make([]models.PageID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.SortFunc(out, models.ComparePageIDs)
	return out
}

// Contains reports whether referrer links to target.
func (b BacklinkIndex) Contains(target, referrer models.PageID) bool {
	_, ok := b[target][referrer]
	return ok
}

func (b BacklinkIndex) add(target, referrer models.PageID) {
	set, ok := b[target]
	if !ok {
		set = make(map[models.PageID]struct{})
		b[target] = set
	}
	set[referrer] = struct{}{}
}

// removeReferrer drops referrer from every set and forgets targets that
// end up without referrers.
func (b BacklinkIndex) removeReferrer(referrer models.PageID) {
	for target, set := range b {
		delete(set, referrer)
		if len(set) == 0 {
			delete(b, target)
		}
	}
}

// IndexPageBacklinks adds the links of page to acc. Link and date link
// targets are both keyed as user pages.
func IndexPageBacklinks(acc BacklinkIndex, id models.PageID, page models.ParsedPage) {
	for _, block := range page.Blocks {
		for _, content := range block.Content {
			for _, tok := range content.Tokens {
				if tok.IsLinkLike() {
					acc.add(models.AsUserPage(tok.Payload), id)
				}
			}
		}
	}
}

// BuildBacklinks derives the backlink index from both page stores.
func BuildBacklinks(s State) BacklinkIndex {
	acc := BacklinkIndex{}
	for _, id := range s.PageIDs() {
		IndexPageBacklinks(acc, id, s.Store(id.Kind)[id.Name])
	}
	return acc
}
