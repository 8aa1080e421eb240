package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/starford/outliner/internal/models"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		// Queries emit raw <video>, <audio>, <img> and <progress> markup.
		ghhtml.WithUnsafe(),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Outline joins the prepared blocks of page into one markdown list,
// indenting each block by its level.
func Outline(page models.PreparedPage) string {
	var sb strings.Builder
	for _, b := range page.Blocks {
		indent := strings.Repeat("  ", b.Indentation)
		for i, line := range strings.Split(b.Content.PreparedMarkdown, "\n") {
			if i == 0 {
				sb.WriteString(indent + "- " + line + "\n")
				continue
			}
			sb.WriteString(indent + "  " + line + "\n")
		}
	}
	return sb.String()
}

// HTML converts the prepared markdown of page into an HTML fragment.
func HTML(page models.PreparedPage) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Outline(page)), &buf); err != nil {
		return "", fmt.Errorf("render: convert markdown: %w", err)
	}
	return buf.String(), nil
}
