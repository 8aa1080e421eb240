// Package models defines the document types shared by the outliner core.
package models

import (
	"strings"
	"time"
)

// PageKind selects one of the two disjoint page namespaces.
type PageKind int

const (
	UserPage PageKind = iota
	JournalPage
)

// String returns the namespace name used in URLs and storage directories.
func (k PageKind) String() string {
	if k == JournalPage {
		return "journal"
	}
	return "page"
}

// MarshalText encodes the kind as its namespace name.
func (k PageKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a namespace name.
func (k *PageKind) UnmarshalText(b []byte) error {
	*k = ParsePageKind(string(b))
	return nil
}

// ParsePageKind maps "journal"/"journals" to JournalPage and everything else to UserPage.
func ParsePageKind(s string) PageKind {
	switch strings.ToLower(s) {
	case "journal", "journals":
		return JournalPage
	default:
		return UserPage
	}
}

// JournalDateLayout is the name format of journal pages.
const JournalDateLayout = "2006_01_02"

// PageID identifies a page within its namespace. Two ids with the same
// name but different kinds are different pages.
type PageID struct {
	Name string   `json:"name"`
	Kind PageKind `json:"kind"`
}

// AsUserPage returns the user page id for name.
func AsUserPage(name string) PageID {
	return PageID{Name: name, Kind: UserPage}
}

// AsJournalPage returns the journal page id for name.
func AsJournalPage(name string) PageID {
	return PageID{Name: name, Kind: JournalPage}
}

// IsJournal reports whether the id lives in the journal namespace.
func (id PageID) IsJournal() bool { return id.Kind == JournalPage }

func (id PageID) String() string {
	return id.Kind.String() + ":" + id.Name
}

// JournalDate parses the journal name as a date.
func (id PageID) JournalDate() (time.Time, bool) {
	if !id.IsJournal() {
		return time.Time{}, false
	}
	t, err := time.Parse(JournalDateLayout, id.Name)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ComparePageIDs orders ids by name, then user pages before journal pages.
func ComparePageIDs(a, b PageID) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return int(a.Kind) - int(b.Kind)
}

// ParsedPage is an ordered list of blocks. Order is the visual and storage order.
type ParsedPage struct {
	Blocks []ParsedBlock `json:"blocks"`
}

// IsEmpty reports whether the page has no blocks. An empty page behaves
// like a missing one for rendering and lookups.
func (p ParsedPage) IsEmpty() bool { return len(p.Blocks) == 0 }

// Block returns the block at index i.
func (p ParsedPage) Block(i int) (ParsedBlock, bool) {
	if i < 0 || i >= len(p.Blocks) {
		return ParsedBlock{}, false
	}
	return p.Blocks[i], true
}

// Clone returns a deep copy of the page.
func (p ParsedPage) Clone() ParsedPage {
	out := ParsedPage{Blocks: make([]ParsedBlock, len(p.Blocks))}
	for i, b := range p.Blocks {
		out.Blocks[i] = b.Clone()
	}
	return out
}

// BlockReference points at one block of one page as of the last index
// rebuild of that page.
type BlockReference struct {
	Page  PageID `json:"page"`
	Index int    `json:"index"`
}

// PageMetadata is the lightweight listing entry of a stored page.
type PageMetadata struct {
	ID        PageID    `json:"id"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
