// Package markdown holds the small rendering helpers shared by the query
// executor and the page renderer: links, journal titles, media snippets
// and the flat rendering of blocks.
package markdown

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/starford/outliner/internal/models"
)

// AssetsPath is the URL prefix under which assets are served.
const AssetsPath = "/assets"

// QueryPlaceholder replaces query tokens in flat rendering.
const QueryPlaceholder = "query hidden"

// encodedSlash is how hierarchical page names store "/" on disk.
const encodedSlash = "%2F"

// Encode percent-encodes s as a URL component. Spaces become %20.
func Encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Link renders a markdown link.
func Link(text, dest string) string {
	return "[" + text + "](" + dest + ")"
}

// UserPagePath is the app route of a user page.
func UserPagePath(name string) string { return "page/" + Encode(name) }

// JournalPagePath is the app route of a journal page.
func JournalPagePath(name string) string { return "journal/" + Encode(name) }

// PagePath dispatches on the page kind.
func PagePath(id models.PageID) string {
	if id.IsJournal() {
		return JournalPagePath(id.Name)
	}
	return UserPagePath(id.Name)
}

// DisplayName turns a stored page name into its display form.
func DisplayName(name string) string {
	return strings.ReplaceAll(name, encodedSlash, "/")
}

// JournalTitle formats a YYYY_MM_DD journal name as DD.MM.YYYY. Names
// that are not dates are returned unchanged.
func JournalTitle(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) != 3 {
		return name
	}
	return parts[2] + "." + parts[1] + "." + parts[0]
}

// UserLink links to a user page.
func UserLink(name string) string {
	return Link(DisplayName(name), UserPagePath(name))
}

// JournalLink links to a journal page, titled by its date.
func JournalLink(name string) string {
	return Link(JournalTitle(name), JournalPagePath(name))
}

// PageLink links to either kind of page.
func PageLink(id models.PageID) string {
	if id.IsJournal() {
		return JournalLink(id.Name)
	}
	return UserLink(id.Name)
}

// BlockLink links to the page of ref, titled "name:index".
func BlockLink(ref models.BlockReference) string {
	return Link(DisplayName(ref.Page.Name)+":"+strconv.Itoa(ref.Index), PagePath(ref.Page))
}

// MediaPath is the served location of an asset file.
func MediaPath(name string) string {
	name = strings.ReplaceAll(name, " ", "%20")
	name = strings.ReplaceAll(name, "#", "%23")
	return AssetsPath + "/" + name
}

// Extension returns the text after the last dot of name, or def when
// name has no dot.
func Extension(name, def string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return def
	}
	return name[i+1:]
}

// AssetLink links to an asset file.
func AssetLink(name string) string { return Link(name, MediaPath(name)) }

// Image embeds an asset as an image.
func Image(name string) string { return "!" + AssetLink(name) }

// Video embeds an asset as an HTML video element.
func Video(name string) string {
	return fmt.Sprintf("<video width=\"720\" controls>\n<source src=\"%s\" type=\"video/%s\">\n</video>",
		MediaPath(name), Extension(name, "mp4"))
}

// Audio embeds an asset as an HTML audio element.
func Audio(name string) string {
	return fmt.Sprintf("<audio controls>\n<source src=\"%s\" type=\"audio/%s\">\n</audio>",
		MediaPath(name), Extension(name, "mp3"))
}

// CodeBlock renders a fenced code block.
func CodeBlock(lang, content string) string {
	return "```" + lang + "\n" + content + "\n```"
}

// Checkbox renders a checkbox payload as a bracketed literal.
func Checkbox(payload string) string {
	return "[" + payload + "] "
}

// Token renders a single token without executing queries. The bool is
// false for query tokens, which the caller may execute instead.
func Token(t models.BlockToken) (string, bool) {
	switch t.Type {
	case models.TokenLink:
		return UserLink(t.Payload), true
	case models.TokenDateLink:
		return JournalLink(t.Payload), true
	case models.TokenCheckbox:
		return Checkbox(t.Payload), true
	case models.TokenQuery:
		return QueryPlaceholder, false
	default:
		return t.Payload, true
	}
}

// FlatTokens renders one line with queries replaced by QueryPlaceholder.
func FlatTokens(tokens []models.BlockToken) string {
	var sb strings.Builder
	for _, t := range tokens {
		s, _ := Token(t)
		sb.WriteString(s)
	}
	return sb.String()
}

// Flat renders all lines of a block without executing queries.
func Flat(b models.ParsedBlock) string {
	lines := make([]string, len(b.Content))
	for i, c := range b.Content {
		lines[i] = FlatTokens(c.Tokens)
	}
	return strings.Join(lines, "\n")
}

// OriginalText joins the raw lines of a block.
func OriginalText(b models.ParsedBlock) string {
	lines := make([]string, len(b.Content))
	for i, c := range b.Content {
		lines[i] = c.RawText
	}
	return strings.Join(lines, "\n")
}

// FlatContent pairs the raw text of a block with its flat rendering.
func FlatContent(b models.ParsedBlock) models.PreparedContent {
	return models.PreparedContent{OriginalText: OriginalText(b), PreparedMarkdown: Flat(b)}
}

// FlatBlock renders a block in flat mode.
func FlatBlock(b models.ParsedBlock) models.PreparedBlock {
	return models.PreparedBlock{Indentation: b.Indentation, Content: FlatContent(b)}
}

// FlatReference renders a transcluded block in flat mode.
func FlatReference(r models.ReferencedBlock) models.PreparedReferencedBlock {
	return models.PreparedReferencedBlock{Content: FlatContent(r.Block), Reference: r.Reference}
}
