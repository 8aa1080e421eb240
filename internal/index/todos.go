package index

import (
	"slices"

	"github.com/starford/outliner/internal/models"
)

// TodoState is the checkbox state of a todo.
type TodoState int

const (
	Todo TodoState = iota
	Done
)

func (s TodoState) String() string {
	if s == Done {
		return "done"
	}
	return "todo"
}

// TodoEntry is one block whose first token is a checkbox.
type TodoEntry struct {
	Block  models.ParsedBlock    `json:"block"`
	Source models.BlockReference `json:"source"`
	State  TodoState             `json:"state"`
	Tags   []string              `json:"tags"`
}

// HasTag reports whether tag is among the entry's inherited tags.
func (e TodoEntry) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// TodoIndex is the unordered collection of todo entries.
type TodoIndex []TodoEntry

// Filter returns the entries carrying tag in state.
func (t TodoIndex) Filter(tag string, state TodoState) []TodoEntry {
	var out []TodoEntry
	for _, e := range t {
		if e.State == state && e.HasTag(tag) {
			out = append(out, e)
		}
	}
	return out
}

// withoutPageName drops every entry whose source page has name, whatever
// its namespace.
func (t TodoIndex) withoutPageName(name string) TodoIndex {
	return slices.DeleteFunc(t, func(e TodoEntry) bool {
		return e.Source.Page.Name == name
	})
}

// IndexPageTodos appends the todo entries of page to acc.
func IndexPageTodos(acc TodoIndex, id models.PageID, page models.ParsedPage) TodoIndex {
	tracker := NewTracker(id.Name)
	for i, block := range page.Blocks {
		tracker.Feed(block)
		first, ok := block.FirstToken()
		if !ok || first.Type != models.TokenCheckbox {
			continue
		}
		state := Done
		if first.Payload == models.CheckboxOpen {
			state = Todo
		}
		acc = append(acc, TodoEntry{
			Block:  block,
			Source: models.BlockReference{Page: id, Index: i},
			State:  state,
			Tags:   tracker.TagSet(),
		})
	}
	return acc
}

// BuildTodos derives the todo index from both page stores.
func BuildTodos(s State) TodoIndex {
	acc := TodoIndex{}
	for _, id := range s.PageIDs() {
		acc = IndexPageTodos(acc, id, s.Store(id.Kind)[id.Name])
	}
	return acc
}
