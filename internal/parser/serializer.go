package parser

import (
	"strings"

	"github.com/starford/outliner/internal/models"
)

// BlockUpdate replaces the markup of one block.
type BlockUpdate struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// Serialize renders a page back into markup lines.
func Serialize(page models.ParsedPage) []string {
	var out []string
	for _, b := range page.Blocks {
		out = appendBlock(out, b.Indentation, BlockMarkup(b))
	}
	return out
}

// SerializeWithUpdate renders a page with the block at update.Index
// replaced by update.Markdown. An index past the end leaves the page as is.
func SerializeWithUpdate(page models.ParsedPage, update BlockUpdate) []string {
	var out []string
	for i, b := range page.Blocks {
		if i == update.Index {
			out = appendBlock(out, b.Indentation, update.Markdown)
			continue
		}
		out = appendBlock(out, b.Indentation, BlockMarkup(b))
	}
	return out
}

// Join turns serialized lines into file content with a trailing newline.
func Join(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

// SerializePage is Join(Serialize(page)).
func SerializePage(page models.ParsedPage) string {
	return Join(Serialize(page))
}

// BlockMarkup returns the markup of a block's lines joined by newlines.
func BlockMarkup(b models.ParsedBlock) string {
	lines := make([]string, len(b.Content))
	for i, c := range b.Content {
		lines[i] = LineMarkup(c.Tokens)
	}
	return strings.Join(lines, "\n")
}

// LineMarkup serializes the tokens of one line.
func LineMarkup(tokens []models.BlockToken) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(TokenMarkup(t))
	}
	return sb.String()
}

// TokenMarkup serializes a single token.
func TokenMarkup(t models.BlockToken) string {
	switch t.Type {
	case models.TokenLink:
		return linkStart + t.Payload + linkEnd
	case models.TokenDateLink:
		return linkStart + DateLinkPrefix + t.Payload + linkEnd
	case models.TokenQuery:
		return queryStart + t.Payload + queryEnd
	case models.TokenCheckbox:
		return "[" + t.Payload + "] "
	default:
		return t.Payload
	}
}

// appendBlock emits a bullet line and its continuation lines. A leading
// hyphen is stripped so that content never parses as a new bullet.
func appendBlock(out []string, indentation int, markup string) []string {
	indent := strings.Repeat(string(indentChar), indentation)
	lines := strings.Split(markup, "\n")
	for i, line := range lines {
		if i == 0 {
			if len(lines) == 1 {
				line = stripBullet(line)
			}
			out = append(out, indent+"- "+line)
			continue
		}
		out = append(out, indent+strings.TrimLeft(line, "\t-"))
	}
	return out
}

func stripBullet(line string) string {
	return strings.TrimLeft(line, string(bulletChar))
}
