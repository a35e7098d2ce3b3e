package chart

import (
	"bytes"
	"errors"
	"image/png"
	"math/rand"
	"testing"
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/selection"
)

func testSeries(t *testing.T, days int) []covid.DailyPoint {
	t.Helper()
	now := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	points, err := covid.GenerateSeries(rand.New(rand.NewSource(1)), now, covid.Global, days)
	if err != nil {
		t.Fatal(err)
	}
	return points
}

func TestRenderStyles(t *testing.T) {
	for _, style := range selection.Styles {
		for _, dark := range []bool{false, true} {
			var buf bytes.Buffer
			err := Render(&buf, testSeries(t, 30), Options{Title: "Global", Style: style, Window: 30, Width: 640, Height: 320, Dark: dark})
			if err != nil {
				t.Fatalf("style %s dark=%v: %v", style, dark, err)
			}
			img, err := png.Decode(&buf)
			if err != nil {
				t.Fatalf("style %s: output is not a PNG: %v", style, err)
			}
			if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 320 {
				t.Fatalf("style %s: unexpected size %v", style, b)
			}
		}
	}
}

func TestRenderAllZero(t *testing.T) {
	points := testSeries(t, 7)
	for i := range points {
		points[i].Cases, points[i].Deaths, points[i].Recovered = 0, 0, 0
	}
	var buf bytes.Buffer
	if err := Render(&buf, points, Options{Style: selection.StyleLine}); err != nil {
		t.Fatalf("zero series should still render: %v", err)
	}
}

func TestRenderNeedsTwoPoints(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, testSeries(t, 7)[:1], Options{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestFormatters(t *testing.T) {
	if got := countFormatter(2500000.0); got != "2.5M" {
		t.Fatalf("count formatter: %q", got)
	}
	d := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	if got := dateFormatter(30)(float64(d.UnixNano())); got != "3/3" {
		t.Fatalf("date formatter: %q", got)
	}
	if got := dateFormatter(90)(d); got != "Mar 3" {
		t.Fatalf("date formatter: %q", got)
	}
}

func TestBarValuesGroupsEverySeries(t *testing.T) {
	points := testSeries(t, 7)
	bars, maxY := barValues(points, 7)
	if len(bars) != 3*len(points) {
		t.Fatalf("got %d bars for %d days", len(bars), len(points))
	}
	for i, p := range points {
		group := bars[3*i : 3*i+3]
		want := []int64{p.Cases, p.Deaths, p.Recovered}
		colors := []drawing.Color{casesColor, deathsColor, recoveredColor}
		for j := range group {
			if group[j].Value != float64(want[j]) {
				t.Errorf("day %d bar %d = %v, want %d", i, j, group[j].Value, want[j])
			}
			if group[j].Style.FillColor != colors[j] {
				t.Errorf("day %d bar %d has the wrong color", i, j)
			}
		}
		if group[0].Label == "" || group[1].Label != "" || group[2].Label != "" {
			t.Errorf("day %d labels = %q %q %q", i, group[0].Label, group[1].Label, group[2].Label)
		}
		if float64(p.Cases) > maxY {
			t.Errorf("maxY %v below cases %d", maxY, p.Cases)
		}
	}
}
