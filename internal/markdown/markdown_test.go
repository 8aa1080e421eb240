package markdown

import (
	"testing"

	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/parser"
)

func TestLinks(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"user page", UserLink("Test%2FPage"), "[Test/Page](page/Test%252FPage)"},
		{"user page with slash", UserLink("Test/Page"), "[Test/Page](page/Test%2FPage)"},
		{"user page with space", UserLink("my page"), "[my page](page/my%20page)"},
		{"journal page", JournalLink("2023_10_01"), "[01.10.2023](journal/2023_10_01)"},
		{"journal not a date", JournalLink("misc"), "[misc](journal/misc)"},
		{"page link dispatch", PageLink(models.AsJournalPage("2024_01_02")), "[02.01.2024](journal/2024_01_02)"},
		{
			"block link",
			BlockLink(models.BlockReference{Page: models.AsUserPage("Test/Page"), Index: 42}),
			"[Test/Page:42](page/Test%2FPage)",
		},
		{
			"journal block link",
			BlockLink(models.BlockReference{Page: models.AsJournalPage("2024_10_24"), Index: 3}),
			"[2024_10_24:3](journal/2024_10_24)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestMedia(t *testing.T) {
	if got := Video("filename.mp4"); got != "<video width=\"720\" controls>\n<source src=\"/assets/filename.mp4\" type=\"video/mp4\">\n</video>" {
		t.Errorf("Video = %q", got)
	}
	if got := Audio("filename.ogg"); got != "<audio controls>\n<source src=\"/assets/filename.ogg\" type=\"audio/ogg\">\n</audio>" {
		t.Errorf("Audio = %q", got)
	}
	if got := Audio("noext"); got != "<audio controls>\n<source src=\"/assets/noext\" type=\"audio/mp3\">\n</audio>" {
		t.Errorf("Audio default ext = %q", got)
	}
	if got := CodeBlock("go", "content"); got != "```go\ncontent\n```" {
		t.Errorf("CodeBlock = %q", got)
	}
	if got := AssetLink("my file#1.txt"); got != "[my file#1.txt](/assets/my%20file%231.txt)" {
		t.Errorf("AssetLink = %q", got)
	}
}

func TestFlat(t *testing.T) {
	page := parser.ParsePage("- [ ] see [[A]] {query: todos tag:\"x\" state:\"todo\" display:\"count\" } k:: v\n\ton [[journal::2024_01_01]]")
	b := page.Blocks[0]

	want := "[ ] see [A](page/A) query hidden k:: v\non [01.01.2024](journal/2024_01_01)"
	if got := Flat(b); got != want {
		t.Errorf("Flat =\n%q\nwant\n%q", got, want)
	}
	content := FlatContent(b)
	if content.OriginalText != b.Content[0].RawText+"\n"+b.Content[1].RawText {
		t.Errorf("OriginalText = %q", content.OriginalText)
	}

	ref := FlatReference(models.ReferencedBlock{Block: b, Reference: models.BlockReference{Page: models.AsUserPage("p"), Index: 2}})
	if ref.Reference.Index != 2 || ref.Content.PreparedMarkdown != want {
		t.Errorf("FlatReference = %+v", ref)
	}
}
