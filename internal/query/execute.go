package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/starford/outliner/internal/assets"
	"github.com/starford/outliner/internal/index"
	"github.com/starford/outliner/internal/markdown"
	"github.com/starford/outliner/internal/models"
)

// AssetLookup resolves the inline state of an asset, loading it on a miss.
type AssetLookup interface {
	Lookup(name string) assets.State
}

// Context is what a query executes against.
type Context struct {
	State  index.State
	Assets AssetLookup
}

// Render parses and executes one query payload. Parse failures render as
// an inline error message.
func Render(raw string, ctx Context) models.QueryResult {
	q, err := Parse(raw)
	if err != nil {
		return inplace(fmt.Sprintf("\n\nError on parsing query: %s\n\n", err))
	}
	return Execute(q, ctx)
}

// Execute runs a parsed query.
func Execute(q Query, ctx Context) models.QueryResult {
	switch q.Kind {
	case PageHierarchy:
		return pageHierarchy(q, ctx.State)
	case Todos:
		return todos(q, ctx.State)
	case ReferencesTo:
		return referencesTo(q, ctx.State)
	case Blocks:
		return blocks(q, ctx.State)
	case Board:
		return board(q)
	case PlotProperty:
		return plotProperty(q)
	case InsertFileContent:
		return insertFileContent(q, ctx.Assets)
	case TodoProgress:
		return todoProgress(q, ctx.State)
	default:
		return inplace("Query type unknown. Allowed types: " + AvailableKinds())
	}
}

func inplace(s string) models.QueryResult {
	return models.QueryResult{InplaceMarkdown: s}
}

func count(n int) models.QueryResult {
	return inplace(strconv.Itoa(n))
}

func unsupported(q Query) models.QueryResult {
	display := q.RawDisplay
	if display == "" {
		display = q.Display.String()
	}
	return inplace(fmt.Sprintf("display type %s not supported for querytype", display))
}

func pageHierarchy(q Query, s index.State) models.QueryResult {
	root := q.Arg(ParamRoot)
	var names []string
	for name, page := range s.UserPages {
		if !page.IsEmpty() && strings.HasPrefix(name, root) {
			names = append(names, name)
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	switch q.Display {
	case DisplayInplaceList:
		var sb strings.Builder
		sb.WriteString(root + ":\n")
		for _, n := range names {
			sb.WriteString("- " + markdown.UserLink(n) + "\n")
		}
		return inplace(sb.String())
	case DisplayCount:
		return count(len(names))
	default:
		return unsupported(q)
	}
}

func parseTodoState(s string) index.TodoState {
	if strings.EqualFold(s, "done") {
		return index.Done
	}
	return index.Todo
}

func todos(q Query, s index.State) models.QueryResult {
	entries := s.Todos.Filter(q.Arg(ParamTag), parseTodoState(q.Arg(ParamState)))

	var res models.QueryResult
	switch q.Display {
	case DisplayInplaceList:
		var sb strings.Builder
		sb.WriteString("\n\n")
		for _, e := range entries {
			marker := ":white large square:"
			if e.State == index.Done {
				marker = ":check mark:"
			}
			first, _ := e.Block.FirstToken()
			text := strings.TrimPrefix(markdown.Flat(e.Block), markdown.Checkbox(first.Payload))
			fmt.Fprintf(&sb, "* %s %s: %s\n\n", marker, markdown.PageLink(e.Source.Page), text)
		}
		res = inplace(sb.String())
	case DisplayCount:
		res = count(len(entries))
	case DisplayReferencedList:
		for _, e := range entries {
			res.Referenced = append(res.Referenced, models.ReferencedBlock{Block: e.Block, Reference: e.Source})
		}
	default:
		return unsupported(q)
	}
	res.HasDynamicContent = true
	return res
}

func referencesTo(q Query, s index.State) models.QueryResult {
	target := q.Arg(ParamTarget)
	refs := s.Backlinks.Referrers(models.AsUserPage(target))

	switch q.Display {
	case DisplayInplaceList:
		var sb strings.Builder
		sb.WriteString("Pages that reference " + markdown.UserLink(target) + "\n")
		for _, r := range refs {
			sb.WriteString("* " + markdown.PageLink(r) + "\n")
		}
		if len(refs) == 0 {
			sb.WriteString("* No references found!\n")
		}
		return inplace(sb.String())
	case DisplayCount:
		return count(len(refs))
	default:
		return unsupported(q)
	}
}

// referencingBlocks returns every block of a referrer page that links to
// target, referrers in page order.
func referencingBlocks(target string, s index.State) []models.ReferencedBlock {
	var out []models.ReferencedBlock
	for _, id := range s.Backlinks.Referrers(models.AsUserPage(target)) {
		page, ok := s.Page(id)
		if !ok {
			continue
		}
		for i, b := range page.Blocks {
			if b.ContainsReference(target) {
				out = append(out, models.ReferencedBlock{
					Block:     b,
					Reference: models.BlockReference{Page: id, Index: i},
				})
			}
		}
	}
	return out
}

func blocks(q Query, s index.State) models.QueryResult {
	target := q.Arg(ParamTarget)
	found := referencingBlocks(target, s)
	header := "Blocks that reference " + markdown.UserLink(target) + ":\n\n"

	switch q.Display {
	case DisplayInplaceList:
		var sb strings.Builder
		sb.WriteString(header)
		for _, r := range found {
			sb.WriteString("* " + markdown.BlockLink(r.Reference) + ":" + markdown.Flat(r.Block) + "\n")
		}
		if len(found) == 0 {
			sb.WriteString("* No blocks found!\n")
		}
		return inplace(sb.String())
	case DisplayParagraphs:
		var sb strings.Builder
		sb.WriteString(header)
		for _, r := range found {
			fmt.Fprintf(&sb, "### %s\n\n%s\n\n---\n\n", markdown.BlockLink(r.Reference), markdown.Flat(r.Block))
		}
		if len(found) == 0 {
			sb.WriteString("* No blocks found!\n")
		}
		return inplace(sb.String())
	case DisplayCount:
		return count(len(found))
	case DisplayReferencedList:
		return models.QueryResult{Referenced: found}
	default:
		return unsupported(q)
	}
}

// boardLink is the payload of the kanban deep link.
type boardLink struct {
	Title        string   `json:"title"`
	Tag          string   `json:"tag"`
	ColumnKey    string   `json:"columnKey"`
	ColumnValues []string `json:"columnValues"`
	PriorityKey  string   `json:"priorityKey"`
}

// ColumnValues splits a comma separated column list, ignoring leading and
// trailing commas.
func ColumnValues(s string) []string {
	return strings.Split(strings.Trim(s, ","), ",")
}

func board(q Query) models.QueryResult {
	if q.Display != DisplayLink {
		return unsupported(q)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of strings cannot fail.
	_ = enc.Encode(boardLink{
		Title:        q.Arg(ParamTitle),
		Tag:          q.Arg(ParamTag),
		ColumnKey:    q.Arg(ParamColumnKey),
		ColumnValues: ColumnValues(q.Arg(ParamColumnValues)),
		PriorityKey:  q.Arg(ParamPriorityKey),
	})
	data := strings.TrimSuffix(buf.String(), "\n")
	return inplace(fmt.Sprintf("[%s](/special-page/kanban?data=%s)", q.Arg(ParamTitle), markdown.Encode(data)))
}

// DateLayout is the date format of plot ranges.
const DateLayout = "2006-01-02"

type validator struct {
	errors []string
}

func (v *validator) integer(q Query, name string) {
	value := q.Arg(name)
	if _, err := strconv.ParseInt(value, 10, 32); err != nil {
		v.errors = append(v.errors, fmt.Sprintf("Parameter '%s' with value '%s' is not a valid integer.", name, value))
	}
}

func (v *validator) date(q Query, name string) {
	value := q.Arg(name)
	if _, err := time.Parse(DateLayout, value); err != nil {
		v.errors = append(v.errors, fmt.Sprintf(
			"Parameter '%s' with value '%s' is not a valid date (expected format: YYYY-MM-DD).", name, value))
	}
}

func (v *validator) markdown() string {
	var sb strings.Builder
	sb.WriteString("**Parameter Validation Errors:**\n")
	for _, e := range v.errors {
		sb.WriteString("- " + e + "\n")
	}
	return sb.String()
}

func plotProperty(q Query) models.QueryResult {
	if q.Display != DisplayLinechart {
		return unsupported(q)
	}
	var v validator
	v.integer(q, ParamWidth)
	v.integer(q, ParamHeight)
	v.date(q, ParamStartingAt)
	v.date(q, ParamEndingAt)
	if len(v.errors) > 0 {
		return inplace(v.markdown())
	}

	var src strings.Builder
	src.WriteString("/api/plot/?")
	for i, key := range []string{ParamLabel, ParamPropertyKey, ParamCaption, ParamWidth, ParamHeight, ParamStartingAt, ParamEndingAt} {
		if i > 0 {
			src.WriteByte('&')
		}
		src.WriteString(key + "=" + markdown.Encode(q.Arg(key)))
	}
	return inplace(fmt.Sprintf(`<img alt="%s" src="%s"/>`, q.Arg(ParamLabel), src.String()))
}

// InferLanguage guesses the code block language of a file name.
func InferLanguage(name string) string {
	ext := markdown.Extension(name, "")
	switch ext {
	case "":
		if !strings.Contains(name, ".") {
			return "text"
		}
		return ""
	case "rs":
		return "rust"
	case "py":
		return "python"
	case "js":
		return "javascript"
	case "ts":
		return "typescript"
	case "h":
		return "c"
	case "hpp":
		return "cpp"
	default:
		return ext
	}
}

func insertFileContent(q Query, lookup AssetLookup) models.QueryResult {
	name := q.Arg(ParamTargetFile)
	switch q.Display {
	case DisplayLink:
		return inplace(markdown.AssetLink(name))
	case DisplayVideo:
		return inplace(markdown.Video(name))
	case DisplayAudio:
		return inplace(markdown.Audio(name))
	case DisplayInlineText, DisplayCodeBlock:
	default:
		return unsupported(q)
	}

	state := assets.State{Kind: assets.NotFound}
	if lookup != nil {
		state = lookup.Lookup(name)
	}
	switch state.Kind {
	case assets.Found:
		if q.Display == DisplayCodeBlock {
			return inplace(markdown.CodeBlock(InferLanguage(name), state.Content))
		}
		return inplace(state.Content)
	case assets.NotText:
		return inplace("File is not a text file. Can not inline a binary file. " +
			`Try display type "link" to render a link: ` + markdown.AssetLink(name))
	case assets.TooLarge:
		return inplace(fmt.Sprintf("File is too large. Max size is %d. File size is %d. "+
			`Try display type "link" to render a link: %s`, state.MaxSize, state.FileSize, markdown.AssetLink(name)))
	default:
		return inplace("File not found")
	}
}

func todoProgress(q Query, s index.State) models.QueryResult {
	tag := q.Arg(ParamTag)
	total, done := 0, 0
	for _, e := range s.Todos {
		if !e.HasTag(tag) {
			continue
		}
		total++
		if e.State == index.Done {
			done++
		}
	}
	pct := 100
	if total > 0 {
		pct = int(math.Round(float64(done) / float64(total) * 100))
	}
	res := inplace(fmt.Sprintf("<label>\n%s -Todos : %d/%d done (%d%%)\n <progress value=\"%d\" max=\"100\"></progress>\n</label>",
		tag, done, total, pct, pct))
	res.HasDynamicContent = true
	return res
}
