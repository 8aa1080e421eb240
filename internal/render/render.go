// Package render turns parsed pages into their display form, executing
// embedded queries and collecting transcluded blocks.
package render

import (
	"strings"

	"github.com/starford/outliner/internal/markdown"
	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/query"
)

// Page renders every block of page deeply.
func Page(page models.ParsedPage, ctx query.Context) models.PreparedPage {
	out := models.PreparedPage{Blocks: make([]models.PreparedBlock, 0, len(page.Blocks))}
	for _, b := range page.Blocks {
		out.Blocks = append(out.Blocks, Block(b, ctx))
	}
	return out
}

// PageFlat renders every block of page without executing queries.
func PageFlat(page models.ParsedPage) models.PreparedPage {
	out := models.PreparedPage{Blocks: make([]models.PreparedBlock, 0, len(page.Blocks))}
	for _, b := range page.Blocks {
		out.Blocks = append(out.Blocks, markdown.FlatBlock(b))
	}
	return out
}

// Block renders one block. Queries are executed and their referenced
// blocks are rendered flat, so query results never run queries.
func Block(b models.ParsedBlock, ctx query.Context) models.PreparedBlock {
	out := models.PreparedBlock{
		Indentation: b.Indentation,
		Content:     models.PreparedContent{OriginalText: markdown.OriginalText(b)},
	}
	lines := make([]string, len(b.Content))
	for i, c := range b.Content {
		var sb strings.Builder
		for _, t := range c.Tokens {
			if s, ok := markdown.Token(t); ok {
				sb.WriteString(s)
				continue
			}
			res := query.Render(t.Payload, ctx)
			sb.WriteString(res.InplaceMarkdown)
			for _, r := range res.Referenced {
				out.Referenced = append(out.Referenced, markdown.FlatReference(r))
			}
			out.HasDynamicContent = out.HasDynamicContent || res.HasDynamicContent
		}
		lines[i] = sb.String()
	}
	out.Content.PreparedMarkdown = strings.Join(lines, "\n")
	return out
}

// BlockFlat renders one block without executing queries.
func BlockFlat(b models.ParsedBlock) models.PreparedBlock {
	return markdown.FlatBlock(b)
}
