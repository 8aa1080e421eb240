package index

import (
	"slices"
	"strings"

	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/parser"
)

// TemplatePrefix marks user pages that serve as templates.
const TemplatePrefix = "Template /"

// Template is a user page whose name starts with TemplatePrefix.
type Template struct {
	Title string `json:"title"`
	ID    string `json:"id"`
}

// IsTemplate reports whether the user page name is a template.
func IsTemplate(name string) bool {
	return strings.HasPrefix(name, TemplatePrefix)
}

// ListTemplates returns all templates sorted by title.
func ListTemplates(s State) []Template {
	var out []Template
	for name := range s.UserPages {
		if !IsTemplate(name) {
			continue
		}
		out = append(out, Template{
			Title: strings.TrimSpace(strings.TrimPrefix(name, TemplatePrefix)),
			ID:    name,
		})
	}
	slices.SortFunc(out, func(a, b Template) int { return strings.Compare(a.Title, b.Title) })
	return out
}

// InsertTemplate merges template into target at the block with index
// blockIndex. The first line of the template is appended to that block's
// last line, the rest of the template follows it, indented relative to
// it. An index past the end appends the template at indentation 0.
func InsertTemplate(template, target models.ParsedPage, blockIndex int) models.ParsedPage {
	if blockIndex < 0 || blockIndex >= len(target.Blocks) {
		out := target.Clone()
		out.Blocks = append(out.Blocks, indentBlocks(template, 0)...)
		return out
	}

	anchor := target.Blocks[blockIndex]
	rendered := indentBlocks(template, anchor.Indentation)

	out := models.ParsedPage{Blocks: make([]models.ParsedBlock, 0, len(target.Blocks)+len(rendered))}
	out.Blocks = append(out.Blocks, target.Blocks[:blockIndex]...)
	if len(rendered) == 0 {
		out.Blocks = append(out.Blocks, anchor)
	} else {
		out.Blocks = append(out.Blocks, mergeFirst(anchor, rendered[0]))
		out.Blocks = append(out.Blocks, rendered[1:]...)
	}
	out.Blocks = append(out.Blocks, target.Blocks[blockIndex+1:]...)
	return out
}

func indentBlocks(page models.ParsedPage, base int) []models.ParsedBlock {
	out := make([]models.ParsedBlock, len(page.Blocks))
	for i, b := range page.Blocks {
		b = b.Clone()
		b.Indentation += base
		out[i] = b
	}
	return out
}

// mergeFirst appends the lines of from to block, joining the first line
// of from onto block's last line. The result is tokenized again so that it
// matches what reading the serialized page yields.
func mergeFirst(block, from models.ParsedBlock) models.ParsedBlock {
	lines := make([]string, 0, len(block.Content)+len(from.Content))
	for _, c := range block.Content {
		lines = append(lines, c.RawText)
	}
	for i, c := range from.Content {
		if i == 0 && len(lines) > 0 {
			lines[len(lines)-1] += c.RawText
			continue
		}
		lines = append(lines, c.RawText)
	}
	return parser.ParseLines(block.Indentation, lines)
}
