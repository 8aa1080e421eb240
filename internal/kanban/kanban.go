// Package kanban assembles board columns from the block property index.
package kanban

import (
	"github.com/starford/outliner/internal/index"
	"github.com/starford/outliner/internal/markdown"
	"github.com/starford/outliner/internal/models"
)

// Request describes a board, as encoded in a board query link.
type Request struct {
	Title        string   `json:"title"`
	Tag          string   `json:"tag"`
	ColumnKey    string   `json:"columnKey"`
	ColumnValues []string `json:"columnValues"`
	PriorityKey  string   `json:"priorityKey"`
}

// Item is one card.
type Item struct {
	Block    models.ReferencedBlock
	Priority string
}

// List is one column.
type List struct {
	Title string
	Items []Item
}

// Board is the assembled board.
type Board struct {
	Title string
	Lists []List
}

// Build collects, for every column value, the blocks whose ColumnKey
// property has that value and that belong to the tag's page or link to
// the tag.
func Build(req Request, s index.State) Board {
	board := Board{Title: req.Title, Lists: make([]List, 0, len(req.ColumnValues))}
	occurrences := s.Properties[req.ColumnKey]
	for _, value := range req.ColumnValues {
		list := List{Title: value}
		for _, occ := range occurrences {
			if occ.Value != value {
				continue
			}
			block := s.Block(occ.Block)
			if !belongsTo(req.Tag, occ.Block.Page, block) {
				continue
			}
			priority, _ := block.Property(req.PriorityKey)
			list.Items = append(list.Items, Item{
				Block:    models.ReferencedBlock{Block: block, Reference: occ.Block},
				Priority: priority,
			})
		}
		board.Lists = append(board.Lists, list)
	}
	return board
}

func belongsTo(tag string, page models.PageID, block models.ParsedBlock) bool {
	if !page.IsJournal() && page.Name == tag {
		return true
	}
	return block.ContainsReference(tag)
}

// PreparedItem is a card rendered for display.
type PreparedItem struct {
	Block    models.PreparedReferencedBlock `json:"block"`
	Priority string                         `json:"priority"`
}

// PreparedList is a column rendered for display.
type PreparedList struct {
	Title string         `json:"title"`
	Items []PreparedItem `json:"items"`
}

// PreparedBoard is a board rendered for display.
type PreparedBoard struct {
	Title string         `json:"title"`
	Lists []PreparedList `json:"lists"`
}

// Prepare renders every card of b flat.
func Prepare(b Board) PreparedBoard {
	out := PreparedBoard{Title: b.Title, Lists: make([]PreparedList, 0, len(b.Lists))}
	for _, l := range b.Lists {
		pl := PreparedList{Title: l.Title, Items: make([]PreparedItem, 0, len(l.Items))}
		for _, it := range l.Items {
			pl.Items = append(pl.Items, PreparedItem{
				Block:    markdown.FlatReference(it.Block),
				Priority: it.Priority,
			})
		}
		out.Lists = append(out.Lists, pl)
	}
	return out
}
