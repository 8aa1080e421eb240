package index

import "github.com/starford/outliner/internal/models"

type frame struct {
	indentation int
	links       []string
}

// Tracker computes the tags a block inherits from its ancestors. Blocks
// must be fed in document order without skipping any, since every block
// can close ancestors.
type Tracker struct {
	page  string
	stack []frame
}

// NewTracker starts tracking the blocks of the page called page.
func NewTracker(page string) *Tracker {
	return &Tracker{page: page}
}

// Feed closes every open ancestor at or below block's indentation and
// opens block itself.
func (t *Tracker) Feed(block models.ParsedBlock) {
	for len(t.stack) > 0 && t.stack[len(t.stack)-1].indentation >= block.Indentation {
		t.stack = t.stack[:len(t.stack)-1]
	}
	t.stack = append(t.stack, frame{indentation: block.Indentation, links: block.Links()})
}

// TagSet returns the page name followed by the links of every open block,
// root first. Duplicates are kept.
func (t *Tracker) TagSet() []string {
	tags := []string{t.page}
	for _, f := range t.stack {
		tags = append(tags, f.links...)
	}
	return tags
}
