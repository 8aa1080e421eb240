package query

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/starford/outliner/internal/assets"
	"github.com/starford/outliner/internal/index"
	"github.com/starford/outliner/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		kind    Kind
		display Display
		args    map[string]string
		wantErr bool
	}{
		{
			name:    "blocks stores tag as target",
			raw:     `blocks tag:"foo" display:"inplace-list"`,
			kind:    Blocks,
			display: DisplayInplaceList,
			args:    map[string]string{ParamTarget: "foo"},
		},
		{
			name:    "todos",
			raw:     ` todos tag:"work" state:"done" display:"count" `,
			kind:    Todos,
			display: DisplayCount,
			args:    map[string]string{ParamTag: "work", ParamState: "done"},
		},
		{
			name:    "board",
			raw:     `board title:"Board" tag:"proj" columnKey:"status" columnValues:"todo,doing" priorityKey:"prio" display:"link"`,
			kind:    Board,
			display: DisplayLink,
			args: map[string]string{
				ParamTitle: "Board", ParamTag: "proj", ParamColumnKey: "status",
				ParamColumnValues: "todo,doing", ParamPriorityKey: "prio",
			},
		},
		{
			name:    "todo progress has no display",
			raw:     `todo-progress tag:"x"`,
			kind:    TodoProgress,
			display: DisplayNone,
			args:    map[string]string{ParamTag: "x"},
		},
		{
			name:    "unknown display value",
			raw:     `references-to target:"X" display:"fancy"`,
			kind:    ReferencesTo,
			display: DisplayUnknown,
			args:    map[string]string{ParamTarget: "X"},
		},
		{name: "wrong order", raw: `blocks display:"inplace-list" tag:"foo"`, wantErr: true},
		{name: "swapped params", raw: `todos state:"todo" tag:"x" display:"count"`, wantErr: true},
		{name: "missing display", raw: `page-hierarchy root:"a"`, wantErr: true},
		{name: "unterminated value", raw: `page-hierarchy root:"a`, wantErr: true},
		{name: "unknown kind", raw: `something else`, kind: Unknown, display: DisplayUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.raw)
			if tt.wantErr {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("err = %v, want ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if q.Kind != tt.kind || q.Display != tt.display {
				t.Errorf("got %v/%v, want %v/%v", q.Kind, q.Display, tt.kind, tt.display)
			}
			for k, v := range tt.args {
				if q.Arg(k) != v {
					t.Errorf("arg %s = %q, want %q", k, q.Arg(k), v)
				}
			}
			if tt.args != nil && len(q.Args) != len(tt.args) {
				t.Errorf("args = %v, want %v", q.Args, tt.args)
			}
		})
	}
}

func stateOf(pages map[models.PageID]string) index.State {
	var texts []index.PageText
	for id, text := range pages {
		texts = append(texts, index.PageText{ID: id, Text: text})
	}
	return index.Refresh(texts)
}

func render(t *testing.T, raw string, s index.State) models.QueryResult {
	t.Helper()
	return Render(raw, Context{State: s})
}

func TestRender_ParseError(t *testing.T) {
	res := render(t, `todos state:"x"`, index.NewState())
	if !strings.HasPrefix(res.InplaceMarkdown, "\n\nError on parsing query: ") || !strings.HasSuffix(res.InplaceMarkdown, "\n\n") {
		t.Errorf("got %q", res.InplaceMarkdown)
	}
}

func TestRender_UnknownKind(t *testing.T) {
	res := render(t, `nope`, index.NewState())
	if !strings.HasPrefix(res.InplaceMarkdown, "Query type unknown. Allowed types: page-hierarchy") {
		t.Errorf("got %q", res.InplaceMarkdown)
	}
}

func TestRender_UnsupportedDisplay(t *testing.T) {
	res := render(t, `references-to target:"X" display:"paragraphs"`, index.NewState())
	if res.InplaceMarkdown != "display type paragraphs not supported for querytype" {
		t.Errorf("got %q", res.InplaceMarkdown)
	}
}

func TestPageHierarchy(t *testing.T) {
	s := stateOf(map[models.PageID]string{
		models.AsUserPage("proj%2Fb"): "- b",
		models.AsUserPage("proj%2FA"): "- a",
		models.AsUserPage("other"):    "- o",
		models.AsUserPage("proj%2Fe"): "",
	})
	res := render(t, `page-hierarchy root:"proj" display:"inplace-list"`, s)
	want := "proj:\n- [proj/A](page/proj%252FA)\n- [proj/b](page/proj%252Fb)\n"
	if res.InplaceMarkdown != want {
		t.Errorf("got %q, want %q", res.InplaceMarkdown, want)
	}
	if res := render(t, `page-hierarchy root:"proj" display:"count"`, s); res.InplaceMarkdown != "2" {
		t.Errorf("count = %q", res.InplaceMarkdown)
	}
}

func TestTodos(t *testing.T) {
	s := stateOf(map[models.PageID]string{
		models.AsUserPage("work"):          "- [ ] write report\n- [x] send mail",
		models.AsJournalPage("2024_01_02"): "- [[work]]\n\t- [ ] call bob",
	})

	res := render(t, `todos tag:"work" state:"todo" display:"inplace-list"`, s)
	want := "\n\n" +
		"* :white large square: [02.01.2024](journal/2024_01_02): call bob\n\n" +
		"* :white large square: [work](page/work): write report\n\n"
	if res.InplaceMarkdown != want {
		t.Errorf("got %q\nwant %q", res.InplaceMarkdown, want)
	}
	if !res.HasDynamicContent {
		t.Error("todo lists are dynamic")
	}

	done := render(t, `todos tag:"work" state:"DONE" display:"inplace-list"`, s)
	if done.InplaceMarkdown != "\n\n* :check mark: [work](page/work): send mail\n\n" {
		t.Errorf("done = %q", done.InplaceMarkdown)
	}

	refs := render(t, `todos tag:"work" state:"todo" display:"referenced-list"`, s)
	if len(refs.Referenced) != 2 || refs.InplaceMarkdown != "" {
		t.Errorf("referenced = %+v", refs)
	}
	if got := refs.Referenced[0].Reference; got != (models.BlockReference{Page: models.AsJournalPage("2024_01_02"), Index: 1}) {
		t.Errorf("first reference = %+v", got)
	}
}

func TestReferencesTo(t *testing.T) {
	s := stateOf(map[models.PageID]string{
		models.AsUserPage("A"):             "- [[X]]",
		models.AsJournalPage("2024_03_04"): "- [[X]]",
	})
	res := render(t, `references-to target:"X" display:"inplace-list"`, s)
	want := "Pages that reference [X](page/X)\n* [04.03.2024](journal/2024_03_04)\n* [A](page/A)\n"
	if res.InplaceMarkdown != want {
		t.Errorf("got %q, want %q", res.InplaceMarkdown, want)
	}

	empty := render(t, `references-to target:"Y" display:"inplace-list"`, s)
	if empty.InplaceMarkdown != "Pages that reference [Y](page/Y)\n* No references found!\n" {
		t.Errorf("empty = %q", empty.InplaceMarkdown)
	}
	if c := render(t, `references-to target:"Y" display:"count"`, s); c.InplaceMarkdown != "0" {
		t.Errorf("count = %q", c.InplaceMarkdown)
	}
}

func TestBlocks(t *testing.T) {
	s := stateOf(map[models.PageID]string{
		models.AsUserPage("A"): "- intro\n- about [[foo]]\n- more [[foo]]",
	})
	res := render(t, `blocks tag:"foo" display:"inplace-list"`, s)
	want := "Blocks that reference [foo](page/foo):\n\n" +
		"* [A:1](page/A):about [foo](page/foo)\n" +
		"* [A:2](page/A):more [foo](page/foo)\n"
	if res.InplaceMarkdown != want {
		t.Errorf("got %q\nwant %q", res.InplaceMarkdown, want)
	}

	para := render(t, `blocks tag:"foo" display:"paragraphs"`, s)
	if !strings.Contains(para.InplaceMarkdown, "### [A:1](page/A)\n\nabout [foo](page/foo)\n\n---\n\n") {
		t.Errorf("paragraphs = %q", para.InplaceMarkdown)
	}

	if c := render(t, `blocks tag:"foo" display:"count"`, s); c.InplaceMarkdown != "2" {
		t.Errorf("count = %q", c.InplaceMarkdown)
	}
	if r := render(t, `blocks tag:"foo" display:"referenced-list"`, s); len(r.Referenced) != 2 {
		t.Errorf("referenced = %+v", r.Referenced)
	}
	none := render(t, `blocks tag:"bar" display:"inplace-list"`, s)
	if !strings.HasSuffix(none.InplaceMarkdown, "* No blocks found!\n") {
		t.Errorf("none = %q", none.InplaceMarkdown)
	}
}

func TestBoard(t *testing.T) {
	res := render(t, `board title:"My Board" tag:"p" columnKey:"s" columnValues:",a,b," priorityKey:"prio" display:"link"`, index.NewState())
	prefix := "[My Board](/special-page/kanban?data="
	if !strings.HasPrefix(res.InplaceMarkdown, prefix) {
		t.Fatalf("got %q", res.InplaceMarkdown)
	}
	encoded := strings.TrimSuffix(strings.TrimPrefix(res.InplaceMarkdown, prefix), ")")
	data, err := url.QueryUnescape(encoded)
	if err != nil {
		t.Fatalf("unescape: %v", err)
	}
	want := `{"title":"My Board","tag":"p","columnKey":"s","columnValues":["a","b"],"priorityKey":"prio"}`
	if data != want {
		t.Errorf("data = %s, want %s", data, want)
	}
}

func TestPlotProperty(t *testing.T) {
	bad := render(t, `plot-property propertyKey:"w" label:"L" caption:"C" width:"wide" height:"10" startingAt:"2024-01-01" endingAt:"soon" display:"linechart"`, index.NewState())
	want := "**Parameter Validation Errors:**\n" +
		"- Parameter 'width' with value 'wide' is not a valid integer.\n" +
		"- Parameter 'endingAt' with value 'soon' is not a valid date (expected format: YYYY-MM-DD).\n"
	if bad.InplaceMarkdown != want {
		t.Errorf("got %q\nwant %q", bad.InplaceMarkdown, want)
	}

	ok := render(t, `plot-property propertyKey:"weight" label:"Weight" caption:"Body weight" width:"800" height:"400" startingAt:"2024-01-01" endingAt:"2024-02-01" display:"linechart"`, index.NewState())
	wantImg := `<img alt="Weight" src="/api/plot/?label=Weight&propertyKey=weight&caption=Body%20weight&width=800&height=400&startingAt=2024-01-01&endingAt=2024-02-01"/>`
	if ok.InplaceMarkdown != wantImg {
		t.Errorf("got %q\nwant %q", ok.InplaceMarkdown, wantImg)
	}
}

type stubAssets map[string]assets.State

func (s stubAssets) Lookup(name string) assets.State {
	if st, ok := s[name]; ok {
		return st
	}
	return assets.State{Kind: assets.NotFound}
}

func TestInsertFileContent(t *testing.T) {
	ctx := Context{State: index.NewState(), Assets: stubAssets{
		"main.rs":   {Kind: assets.Found, Content: "fn main() {}"},
		"photo.jpg": {Kind: assets.NotText},
		"huge.txt":  {Kind: assets.TooLarge, FileSize: 20, MaxSize: 10},
	}}
	tests := []struct {
		raw  string
		want string
	}{
		{`insert-file-content target-file:"main.rs" display:"inline-text"`, "fn main() {}"},
		{`insert-file-content target-file:"main.rs" display:"code-block"`, "```rust\nfn main() {}\n```"},
		{`insert-file-content target-file:"gone.txt" display:"inline-text"`, "File not found"},
		{`insert-file-content target-file:"photo.jpg" display:"code-block"`,
			`File is not a text file. Can not inline a binary file. Try display type "link" to render a link: [photo.jpg](/assets/photo.jpg)`},
		{`insert-file-content target-file:"huge.txt" display:"inline-text"`,
			`File is too large. Max size is 10. File size is 20. Try display type "link" to render a link: [huge.txt](/assets/huge.txt)`},
		{`insert-file-content target-file:"a b.pdf" display:"link"`, "[a b.pdf](/assets/a%20b.pdf)"},
		{`insert-file-content target-file:"clip.webm" display:"video"`,
			"<video width=\"720\" controls>\n<source src=\"/assets/clip.webm\" type=\"video/webm\">\n</video>"},
		{`insert-file-content target-file:"x" display:"count"`, "display type count not supported for querytype"},
	}
	for _, tt := range tests {
		if got := Render(tt.raw, ctx).InplaceMarkdown; got != tt.want {
			t.Errorf("%s:\n got %q\nwant %q", tt.raw, got, tt.want)
		}
	}
}

func TestInferLanguage(t *testing.T) {
	for name, want := range map[string]string{
		"Makefile": "text",
		"a.py":     "python",
		"a.hpp":    "cpp",
		"a.go":     "go",
		"a.tar.gz": "gz",
	} {
		if got := InferLanguage(name); got != want {
			t.Errorf("InferLanguage(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestTodoProgress(t *testing.T) {
	s := stateOf(map[models.PageID]string{
		models.AsUserPage("p"): "- [x] a\n- [ ] b\n- [x] c",
	})
	res := render(t, `todo-progress tag:"p"`, s)
	want := "<label>\np -Todos : 2/3 done (67%)\n <progress value=\"67\" max=\"100\"></progress>\n</label>"
	if res.InplaceMarkdown != want {
		t.Errorf("got %q\nwant %q", res.InplaceMarkdown, want)
	}

	empty := render(t, `todo-progress tag:"none"`, s)
	if !strings.Contains(empty.InplaceMarkdown, "0/0 done (100%)") {
		t.Errorf("empty = %q", empty.InplaceMarkdown)
	}
}

func TestAssetMarkup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"filename", "[filename](/assets/filename)"},
		{"report.pdf", "[report.pdf](/assets/report.pdf)"},
		{"shot one.PNG", "![shot one.PNG](/assets/shot%20one.PNG)"},
		{"clip.mp4", `{query: insert-file-content target-file:"clip.mp4" display:"video" }`},
		{"song.mp3", `{query: insert-file-content target-file:"song.mp3" display:"audio" }`},
		{"notes.txt", `{query: insert-file-content target-file:"notes.txt" display:"inline-text" }`},
		{"main.go", `{query: insert-file-content target-file:"main.go" display:"code-block" }`},
	}
	for _, tt := range tests {
		if got := AssetMarkup(tt.name); got != tt.want {
			t.Errorf("AssetMarkup(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAssetMarkup_QueryParses(t *testing.T) {
	markup := AssetMarkup("main.go")
	payload := strings.TrimSuffix(strings.TrimPrefix(markup, "{query:"), "}")
	q, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if q.Kind != InsertFileContent || q.Display != DisplayCodeBlock || q.Arg(ParamTargetFile) != "main.go" {
		t.Errorf("query = %+v", q)
	}
}
