// Package plot extracts time series from journal block properties and
// draws them as SVG line charts.
package plot

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/starford/outliner/internal/apperr"
	"github.com/starford/outliner/internal/index"
)

const dateLayout = "2006-01-02"

// Point is one dated value.
type Point struct {
	Date  time.Time `json:"date"`
	Value int       `json:"value"`
}

// Collect returns the integer values of property key found on journal
// pages dated within [from, to], ordered by date. When a day has several
// values the last one in document order wins. Values that are not
// integers are skipped.
func Collect(key string, from, to time.Time, s index.State) []Point {
	byDay := map[time.Time]int{}
	for _, occ := range s.Properties[key] {
		day, ok := occ.Block.Page.JournalDate()
		if !ok || day.Before(from) || day.After(to) {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(occ.Value))
		if err != nil {
			continue
		}
		byDay[day] = v
	}
	out := make([]Point, 0, len(byDay))
	for day, v := range byDay {
		out = append(out, Point{Date: day, Value: v})
	}
	slices.SortFunc(out, func(a, b Point) int { return a.Date.Compare(b.Date) })
	return out
}

// Chart describes a chart to draw.
type Chart struct {
	Label   string
	Caption string
	Width   int
	Height  int
	Points  []Point
}

const minSide = 80

// SVG draws c as a standalone SVG document. The y axis is padded by one
// unit on both ends; a single point is centred on a two day x axis.
func SVG(c Chart) (string, error) {
	if c.Width <= minSide || c.Height <= minSide {
		return "", fmt.Errorf("plot: chart of %dx%d is too small: %w", c.Width, c.Height, apperr.ErrInvalid)
	}
	graph := chart.Chart{
		Title:  c.Caption,
		Width:  c.Width,
		Height: c.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
	}
	if len(c.Points) == 0 {
		noData(&graph)
	} else {
		lineChart(&graph, c.Label, c.Points)
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return "", fmt.Errorf("plot: render: %w", err)
	}
	return buf.String(), nil
}

func lineChart(graph *chart.Chart, label string, points []Point) {
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	minY, maxY := points[0].Value, points[0].Value
	for i, p := range points {
		xs[i], ys[i] = p.Date, float64(p.Value)
		minY = min(minY, p.Value)
		maxY = max(maxY, p.Value)
	}
	minY--
	maxY++

	first, last := points[0].Date, points[len(points)-1].Date
	if first.Equal(last) {
		first, last = first.AddDate(0, 0, -1), last.AddDate(0, 0, 1)
	}

	graph.XAxis = chart.XAxis{
		Range: &chart.ContinuousRange{Min: chart.TimeToFloat64(first), Max: chart.TimeToFloat64(last)},
		Ticks: []chart.Tick{
			{Value: chart.TimeToFloat64(first), Label: first.Format(dateLayout)},
			{Value: chart.TimeToFloat64(last), Label: last.Format(dateLayout)},
		},
	}
	graph.YAxis = chart.YAxis{
		Name:  label,
		Range: &chart.ContinuousRange{Min: float64(minY), Max: float64(maxY)},
		Ticks: yTicks(minY, maxY),
	}
	graph.Series = []chart.Series{chart.TimeSeries{
		Name: label,
		Style: chart.Style{
			StrokeColor: chart.ColorRed,
			StrokeWidth: 2,
		},
		XValues: xs,
		YValues: ys,
	}}
}

// yTicks labels every integer between lo and hi, or only the ends and
// the middle when there are more than ten.
func yTicks(lo, hi int) []chart.Tick {
	step := 1
	if hi-lo > 10 {
		step = (hi - lo) / 2
	}
	var ticks []chart.Tick
	for v := lo; v < hi; v += step {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return append(ticks, chart.Tick{Value: float64(hi), Label: strconv.Itoa(hi)})
}

// noData draws empty axes with a centred notice.
func noData(graph *chart.Chart) {
	unit := &chart.ContinuousRange{Min: 0, Max: 1}
	graph.XAxis = chart.XAxis{Range: unit, Style: chart.Style{Hidden: true}}
	graph.YAxis = chart.YAxis{Range: unit, Style: chart.Style{Hidden: true}}
	graph.Series = []chart.Series{chart.AnnotationSeries{
		Annotations: []chart.Value2{{XValue: 0.5, YValue: 0.5, Label: "no data"}},
	}}
}

// Dates parses an inclusive YYYY-MM-DD range.
func Dates(from, to string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("plot: starting date %q: %w", from, apperr.ErrInvalid)
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("plot: ending date %q: %w", to, apperr.ErrInvalid)
	}
	return start, end, nil
}
