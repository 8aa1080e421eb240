package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/starford/outliner/internal/index"
	"github.com/starford/outliner/internal/markdown"
	"github.com/starford/outliner/internal/models"
)

const (
	overviewTitle  = "Overview over all user pages"
	noPagesFound   = "No pages found"
	noJournalsText = "No journal entries found"
	overviewHeader = "| page | backlinks | has content |\n| :-- | :-- | :-- |\n"
)

// Overview lists every user page that exists or is linked to, with its
// backlink count and whether it has content. Pages that only exist as
// link targets are included.
func Overview(s index.State) models.ParsedPage {
	names := map[string]struct{}{}
	for target := range s.Backlinks {
		names[target.Name] = struct{}{}
	}
	for name := range s.UserPages {
		names[name] = struct{}{}
	}
	title := textBlock(0, overviewTitle)
	if len(names) == 0 {
		return models.ParsedPage{Blocks: []models.ParsedBlock{title, textBlock(1, noPagesFound)}}
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	slices.Sort(sorted)

	tokens := []models.BlockToken{models.Text(overviewHeader)}
	for _, name := range sorted {
		id := models.AsUserPage(name)
		content := "not yet"
		if _, ok := s.Page(id); ok {
			content = "yes"
		}
		tokens = append(tokens,
			models.Text("| "),
			models.Link(name),
			models.Text(fmt.Sprintf(" | %d | %s |\n", len(s.Backlinks[id]), content)),
		)
	}
	table := models.ParsedBlock{
		Indentation: 1,
		Content:     []models.BlockContent{{Tokens: tokens}},
	}
	return models.ParsedPage{Blocks: []models.ParsedBlock{title, table}}
}

const calendarHeader = "| Monday | Tuesday | Wednesday | Thursday | Friday | Saturday | Sunday |\n" +
	"| --- | --- | --- | --- | --- | --- | --- |\n"

// JournalOverview renders one calendar table per month between the
// oldest and the newest journal entry, newest month first. The first
// month of every year carries a year heading. Journal pages whose names
// are not dates are ignored.
func JournalOverview(s index.State) models.ParsedPage {
	var days []time.Time
	for name := range s.JournalPages {
		if d, ok := models.AsJournalPage(name).JournalDate(); ok {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return models.ParsedPage{Blocks: []models.ParsedBlock{textBlock(0, noJournalsText)}}
	}
	slices.SortFunc(days, time.Time.Compare)
	present := make(map[time.Time]bool, len(days))
	for _, d := range days {
		present[d] = true
	}

	first, last := days[0], days[len(days)-1]
	var blocks []models.ParsedBlock
	newest := firstOfMonth(last)
	stop := firstOfMonth(first)
	for month := newest; !month.Before(stop); month = month.AddDate(0, -1, 0) {
		var sb strings.Builder
		if month.Equal(newest) || month.Month() == time.December {
			fmt.Fprintf(&sb, "## %d\n\n", month.Year())
		}
		writeMonth(&sb, month, present)
		blocks = append(blocks, textBlock(0, sb.String()))
	}
	return models.ParsedPage{Blocks: blocks}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// writeMonth writes the calendar table of the month starting at start.
// Weeks start on Monday.
func writeMonth(sb *strings.Builder, start time.Time, present map[time.Time]bool) {
	fmt.Fprintf(sb, "### %s\n\n", start.Format("January 2006"))
	sb.WriteString(calendarHeader)

	weekday := (int(start.Weekday()) + 6) % 7
	sb.WriteString("|")
	for range weekday {
		sb.WriteString("  |")
	}
	for d := start; d.Month() == start.Month(); d = d.AddDate(0, 0, 1) {
		if weekday == 0 && d.Day() != 1 {
			sb.WriteString("\n|")
		}
		name := d.Format("2006_01_02")
		day := strconv.Itoa(d.Day())
		if present[d] {
			day = "**" + day + "**"
		}
		fmt.Fprintf(sb, " %s |", markdown.Link(day, markdown.JournalPagePath(name)))
		weekday = (weekday + 1) % 7
	}
	if weekday != 0 {
		for range 7 - weekday {
			sb.WriteString("  |")
		}
	}
	sb.WriteString("\n")
}
