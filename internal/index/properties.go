package index

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/starford/outliner/internal/models"
)

// PropertyOccurrence is one key:: value found in a block.
type PropertyOccurrence struct {
	Value string                `json:"value"`
	Block models.BlockReference `json:"block"`
}

// PropertyIndex maps a property key to its occurrences in scan order.
type PropertyIndex map[string][]PropertyOccurrence

// Keys returns the property keys in ascending order.
func (p PropertyIndex) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Values returns the distinct values of key in first-seen order.
func (p PropertyIndex) Values(key string) []string {
	var out []string
	for _, o := range p[key] {
		if !slices.Contains(out, o.Value) {
			out = append(out, o.Value)
		}
	}
	return out
}

func (p PropertyIndex) removePage(id models.PageID) {
	for key, occ := range p {
		occ = slices.DeleteFunc(occ, func(o PropertyOccurrence) bool {
			return o.Block.Page == id
		})
		if len(occ) == 0 {
			delete(p, key)
			continue
		}
		p[key] = occ
	}
}

// IndexPageProperties appends the property occurrences of page to acc.
func IndexPageProperties(acc PropertyIndex, id models.PageID, page models.ParsedPage) {
	for i, block := range page.Blocks {
		ref := models.BlockReference{Page: id, Index: i}
		for _, prop := range block.Properties {
			acc[prop.Key] = append(acc[prop.Key], PropertyOccurrence{Value: prop.Value, Block: ref})
		}
	}
}

// insertPageProperties indexes page and moves its occurrences to the
// position BuildProperties would have given them.
func insertPageProperties(acc PropertyIndex, id models.PageID, page models.ParsedPage) {
	IndexPageProperties(acc, id, page)
	touched := map[string]bool{}
	for _, block := range page.Blocks {
		for _, prop := range block.Properties {
			touched[prop.Key] = true
		}
	}
	for key := range touched {
		slices.SortStableFunc(acc[key], func(a, b PropertyOccurrence) int {
			return compareRefs(a.Block, b.Block)
		})
	}
}

// compareRefs orders references journal pages first, then by page name
// and block index.
func compareRefs(a, b models.BlockReference) int {
	aj, bj := a.Page.Kind == models.JournalPage, b.Page.Kind == models.JournalPage
	if aj != bj {
		if aj {
			return -1
		}
		return 1
	}
	return cmp.Or(
		strings.Compare(a.Page.Name, b.Page.Name),
		cmp.Compare(a.Index, b.Index),
	)
}

// BuildProperties derives the property index, journal pages first.
func BuildProperties(s State) PropertyIndex {
	acc := PropertyIndex{}
	for _, id := range s.PageIDs() {
		IndexPageProperties(acc, id, s.Store(id.Kind)[id.Name])
	}
	return acc
}
