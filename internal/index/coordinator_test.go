package index

import (
	"errors"
	"reflect"
	"testing"

	"github.com/starford/outliner/internal/apperr"
	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/parser"
)

func TestApplyWrite_Idempotent(t *testing.T) {
	s := stateOf(t, map[models.PageID]string{
		user("A"): "- [[B]]\n\t- [ ] do it\n- prio:: high",
		user("B"): "- [[A]]",
	})
	page := parser.ParsePage("- now [[C]]\n- [x] closed\n- prio:: low")

	once := ApplyWrite(user("A"), page, s)
	twice := ApplyWrite(user("A"), page, once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second write changed state:\n once  %+v\n twice %+v", once, twice)
	}
}

func TestApplyWrite_LeavesInputUntouched(t *testing.T) {
	s := stateOf(t, map[models.PageID]string{user("A"): "- [[B]]\n- [ ] x"})
	_ = ApplyWriteText(user("A"), "- nothing", s)

	if !s.Backlinks.Contains(user("B"), user("A")) {
		t.Error("input backlinks were modified")
	}
	if len(s.Todos) != 1 {
		t.Errorf("input todos = %d, want 1", len(s.Todos))
	}
	if p, _ := s.Page(user("A")); p.Blocks[0].Content[0].RawText != "[[B]]" {
		t.Errorf("input page was modified: %+v", p)
	}
}

func TestApplyWrite_RemovesStaleBacklinks(t *testing.T) {
	s := stateOf(t, map[models.PageID]string{
		user("A"):            "- [[B]] and [[C]]",
		user("D"):            "- [[C]]",
		journal("2024_01_01"): "- [[B]]",
	})

	s = ApplyWriteText(user("A"), "- only [[C]]", s)
	if got := s.Backlinks.Referrers(user("B")); !reflect.DeepEqual(got, []models.PageID{journal("2024_01_01")}) {
		t.Errorf("Referrers(B) = %v", got)
	}
	if got := s.Backlinks.Referrers(user("C")); len(got) != 2 {
		t.Errorf("Referrers(C) = %v, want A and D", got)
	}

	// Journal referrers are removed like any other.
	s = ApplyWriteText(journal("2024_01_01"), "- quiet day", s)
	if _, ok := s.Backlinks[user("B")]; ok {
		t.Errorf("B still has referrers: %v", s.Backlinks.Referrers(user("B")))
	}
}

func TestApplyWrite_ReplacesProperties(t *testing.T) {
	s := stateOf(t, map[models.PageID]string{
		user("A"): "- status:: open",
		user("B"): "- status:: closed",
	})
	s = ApplyWriteText(user("A"), "- owner:: me", s)

	if got := s.Properties.Values("status"); !reflect.DeepEqual(got, []string{"closed"}) {
		t.Errorf("status values = %v", got)
	}
	if got := s.Properties.Values("owner"); !reflect.DeepEqual(got, []string{"me"}) {
		t.Errorf("owner values = %v", got)
	}

	s = ApplyWriteText(user("A"), "- plain", s)
	if _, ok := s.Properties["owner"]; ok {
		t.Error("key without occurrences should be dropped")
	}
}

func TestApplyWrite_PropertyOrderMatchesRebuild(t *testing.T) {
	s := stateOf(t, map[models.PageID]string{
		user("a"):             "- status:: doing",
		user("b"):             "- status:: todo\n- status:: done",
		journal("2024_01_01"): "- status:: later",
	})
	s = ApplyWriteText(user("a"), "- status:: doing", s)
	s = ApplyWriteText(journal("2024_01_01"), "- status:: later", s)

	if got, want := s.Properties.Values("status"), []string{"later", "doing", "todo", "done"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Values(status) = %v, want %v", got, want)
	}
	if want := BuildProperties(s); !reflect.DeepEqual(s.Properties, want) {
		t.Errorf("incremental properties differ from rebuild:\n got  %+v\n want %+v", s.Properties, want)
	}
}

func TestApplyDelete_TodosMatchedByName(t *testing.T) {
	s := stateOf(t, map[models.PageID]string{
		user("2024_01_01"):    "- [ ] page todo",
		journal("2024_01_01"): "- [ ] journal todo",
		user("other"):         "- [ ] keep me",
	})
	if len(s.Todos) != 3 {
		t.Fatalf("todos = %d, want 3", len(s.Todos))
	}

	s = ApplyDelete(user("2024_01_01"), s)
	if len(s.Todos) != 1 || s.Todos[0].Source.Page != user("other") {
		t.Errorf("todos after delete = %+v", s.Todos)
	}
	if _, ok := s.JournalPages["2024_01_01"]; !ok {
		t.Error("journal page of the same name must survive")
	}
}

func TestApplyDelete(t *testing.T) {
	s := stateOf(t, map[models.PageID]string{
		user("A"): "- [[B]]\n- k:: v",
		user("B"): "- text",
	})
	s = ApplyDelete(user("A"), s)

	if _, ok := s.UserPages["A"]; ok {
		t.Error("page still stored")
	}
	if len(s.Backlinks) != 0 {
		t.Errorf("backlinks = %v, want none", s.Backlinks)
	}
	if len(s.Properties) != 0 {
		t.Errorf("properties = %v, want none", s.Properties)
	}
}

func TestRename_MergesIntoExistingPage(t *testing.T) {
	s := stateOf(t, map[models.PageID]string{
		user("A"): "- A",
		user("B"): "- B",
		user("C"): "- see [[A]]",
	})

	res, err := Rename("A", "B", s)
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if !reflect.DeepEqual(res.Deleted, []models.PageID{user("A")}) {
		t.Errorf("Deleted = %v", res.Deleted)
	}
	if _, ok := res.Changed[user("A")]; ok {
		t.Error("old page must not be in Changed")
	}

	merged := res.Changed[user("B")]
	var texts []string
	for _, b := range merged.Blocks {
		texts = append(texts, b.Content[0].RawText)
	}
	if !reflect.DeepEqual(texts, []string{"B", "A"}) {
		t.Errorf("merged blocks = %v, want [B A]", texts)
	}

	referrer := res.Changed[user("C")]
	if got := referrer.Blocks[0].Content[0].RawText; got != "see [[B]]" {
		t.Errorf("referrer text = %q", got)
	}
	if !referrer.Blocks[0].ContainsReference("B") {
		t.Error("referrer was not re-tokenized")
	}
}

func TestRename_MovesPageAndReindexes(t *testing.T) {
	s := stateOf(t, map[models.PageID]string{
		user("old"):          "- [ ] task\n- self [[old]]",
		journal("2024_01_01"): "- met [[old]]\n- untouched [[x]]",
	})

	res, err := Rename("old", "new", s)
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	moved := res.Changed[user("new")]
	if len(moved.Blocks) != 2 || moved.Blocks[1].Content[0].RawText != "self [[new]]" {
		t.Errorf("moved page = %+v", moved)
	}

	s = ApplyRename(res, s)
	if _, ok := s.UserPages["old"]; ok {
		t.Error("old page still stored")
	}
	if _, ok := s.Backlinks[user("old")]; ok {
		t.Error("old page still has backlinks")
	}
	want := []models.PageID{journal("2024_01_01"), user("new")}
	if got := s.Backlinks.Referrers(user("new")); !reflect.DeepEqual(got, want) {
		t.Errorf("Referrers(new) = %v, want %v", got, want)
	}
	if len(s.Todos) != 1 || s.Todos[0].Source.Page != user("new") {
		t.Errorf("todos = %+v", s.Todos)
	}
	if !s.Backlinks.Contains(user("x"), journal("2024_01_01")) {
		t.Error("unrelated link lost")
	}
}

func TestRename_Invalid(t *testing.T) {
	s := NewState()
	for _, tc := range [][2]string{{"", "b"}, {"a", " "}, {"a", "a"}} {
		if _, err := Rename(tc[0], tc[1], s); !errors.Is(err, apperr.ErrInvalid) {
			t.Errorf("Rename(%q, %q) err = %v, want ErrInvalid", tc[0], tc[1], err)
		}
	}
}

func TestRename_MissingOldPage(t *testing.T) {
	res, err := Rename("ghost", "real", NewState())
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if len(res.Changed) != 0 {
		t.Errorf("Changed = %v, want empty", res.Changed)
	}
	if !reflect.DeepEqual(res.Deleted, []models.PageID{user("ghost")}) {
		t.Errorf("Deleted = %v", res.Deleted)
	}
}

func TestListTemplates(t *testing.T) {
	s := stateOf(t, map[models.PageID]string{
		user("Template / Weekly"):  "- w",
		user("Template / Meeting"): "- m",
		user("Notes"):              "- n",
	})
	got := ListTemplates(s)
	want := []Template{
		{Title: "Meeting", ID: "Template / Meeting"},
		{Title: "Weekly", ID: "Template / Weekly"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListTemplates = %+v, want %+v", got, want)
	}
}

func TestInsertTemplate(t *testing.T) {
	tmpl := parser.ParsePage("- x\n\t- y")
	target := parser.ParsePage("- a\n\t- b\n- c")

	out := InsertTemplate(tmpl, target, 1)
	if len(out.Blocks) != 4 {
		t.Fatalf("blocks = %d, want 4", len(out.Blocks))
	}
	if got := out.Blocks[1].Content[0].RawText; got != "bx" {
		t.Errorf("anchor text = %q, want bx", got)
	}
	if out.Blocks[2].Indentation != 2 || out.Blocks[2].Content[0].RawText != "y" {
		t.Errorf("inserted child = %+v", out.Blocks[2])
	}
	if out.Blocks[3].Content[0].RawText != "c" {
		t.Errorf("tail block = %+v", out.Blocks[3])
	}
	if target.Blocks[1].Content[0].RawText != "b" {
		t.Error("target page was modified")
	}

	appended := InsertTemplate(tmpl, target, 99)
	if len(appended.Blocks) != 5 || appended.Blocks[3].Indentation != 0 {
		t.Errorf("appended = %+v", appended.Blocks)
	}
}

func TestInsertTemplate_MergedLineIsRetokenized(t *testing.T) {
	tmpl := parser.ParsePage("- [ ] b")
	target := parser.ParsePage("- [ ] a")

	out := InsertTemplate(tmpl, target, 0)
	reread := parser.ParsePage(parser.SerializePage(out))
	if len(out.Blocks) != 1 || len(reread.Blocks) != 1 {
		t.Fatalf("blocks = %d, reread = %d", len(out.Blocks), len(reread.Blocks))
	}
	got, want := out.Blocks[0].Content[0].Tokens, reread.Blocks[0].Content[0].Tokens
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokens = %+v, want %+v", got, want)
	}
}
