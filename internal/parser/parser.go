// Package parser turns outline markup into blocks and typed inline tokens,
// and serializes parsed pages back into markup.
package parser

import (
	"strings"

	"github.com/starford/outliner/internal/models"
)

const (
	indentChar = '\t'
	bulletChar = '-'
)

// Read splits page text into raw blocks. A line whose first non-tab
// character is a bullet starts a new block; other lines continue the
// current one. Lines before the first bullet are dropped.
func Read(text string) []models.RawBlock {
	var (
		out     []models.RawBlock
		current *models.RawBlock
	)
	for _, line := range splitLines(text) {
		rest := strings.TrimLeft(line, string(indentChar))
		if strings.HasPrefix(rest, string(bulletChar)) {
			if current != nil {
				out = append(out, *current)
			}
			current = &models.RawBlock{
				Indentation: indentation(line),
				Lines:       []string{strings.TrimLeft(rest[1:], " ")},
			}
			continue
		}
		if current == nil {
			continue
		}
		current.Lines = append(current.Lines, rest)
	}
	if current != nil {
		out = append(out, *current)
	}
	return out
}

// splitLines splits on \n, drops a trailing \r per line and ignores the
// empty element after a final newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func indentation(line string) int {
	n := 0
	for _, c := range line {
		if c != indentChar {
			break
		}
		n++
	}
	return n
}

// ParseLines tokenizes the lines of one block.
func ParseLines(indentation int, lines []string) models.ParsedBlock {
	block := models.ParsedBlock{
		Indentation: indentation,
		Content:     make([]models.BlockContent, 0, len(lines)),
	}
	for _, line := range lines {
		tokens, props := Tokenize(line)
		block.Content = append(block.Content, models.BlockContent{RawText: line, Tokens: tokens})
		block.Properties = append(block.Properties, props...)
	}
	return block
}

// ParseBlock tokenizes a raw block.
func ParseBlock(raw models.RawBlock) models.ParsedBlock {
	return ParseLines(raw.Indentation, raw.Lines)
}

// ParsePage reads and tokenizes a whole page.
func ParsePage(text string) models.ParsedPage {
	raw := Read(text)
	page := models.ParsedPage{Blocks: make([]models.ParsedBlock, 0, len(raw))}
	for _, b := range raw {
		page.Blocks = append(page.Blocks, ParseBlock(b))
	}
	return page
}
