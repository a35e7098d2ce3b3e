// Package chart draws a daily series as a PNG trend chart.
package chart

import (
	"errors"
	"fmt"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/viralscope/viralscope/pkg/covid"
	"github.com/viralscope/viralscope/pkg/selection"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 400
)

var (
	casesColor     = drawing.ColorFromHex("3b82f6")
	deathsColor    = drawing.ColorFromHex("ef4444")
	recoveredColor = drawing.ColorFromHex("10b981")

	darkBackground = drawing.ColorFromHex("0f172a")
	darkText       = drawing.ColorFromHex("cbd5e1")
)

// ErrNoData is returned when there are fewer than two points to draw.
var ErrNoData = errors.New("chart needs at least two points")

// Options control how a series is drawn.
type Options struct {
	Title  string
	Style  selection.ChartStyle
	Window int
	Width  int
	Height int
	Dark   bool
}

// Render writes points as a PNG image to w.
func Render(w io.Writer, points []covid.DailyPoint, opts Options) error {
	if len(points) < 2 {
		return ErrNoData
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Window <= 0 {
		opts.Window = len(points) - 1
	}

	if opts.Style == selection.StyleBar {
		return renderBars(w, points, opts)
	}
	return renderLines(w, points, opts)
}

func renderLines(w io.Writer, points []covid.DailyPoint, opts Options) error {
	xs := make([]time.Time, len(points))
	cases := make([]float64, len(points))
	deaths := make([]float64, len(points))
	recovered := make([]float64, len(points))
	var maxY float64
	for i, p := range points {
		xs[i] = p.Date
		cases[i] = float64(p.Cases)
		deaths[i] = float64(p.Deaths)
		recovered[i] = float64(p.Recovered)
		if cases[i] > maxY {
			maxY = cases[i]
		}
	}

	fill := opts.Style == selection.StyleArea
	ch := gochart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: backgroundStyle(opts.Dark),
		Canvas:     canvasStyle(opts.Dark),
		XAxis: gochart.XAxis{
			Style:          axisStyle(opts.Dark),
			ValueFormatter: dateFormatter(opts.Window),
		},
		YAxis: gochart.YAxis{
			Style:          axisStyle(opts.Dark),
			Range:          yRange(maxY),
			ValueFormatter: countFormatter,
		},
		Series: []gochart.Series{
			gochart.TimeSeries{Name: "Cases", XValues: xs, YValues: cases, Style: seriesStyle(casesColor, fill)},
			gochart.TimeSeries{Name: "Deaths", XValues: xs, YValues: deaths, Style: seriesStyle(deathsColor, fill)},
			gochart.TimeSeries{Name: "Recovered", XValues: xs, YValues: recovered, Style: seriesStyle(recoveredColor, fill)},
		},
	}
	if opts.Dark {
		ch.TitleStyle = gochart.Style{FontColor: darkText}
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}

// renderBars draws one group per day: cases, deaths and recovered side by
// side. go-chart shrinks bar widths when the groups do not fit the canvas.
func renderBars(w io.Writer, points []covid.DailyPoint, opts Options) error {
	bars, maxY := barValues(points, opts.Window)

	barWidth := (opts.Width - 120) / len(bars)
	if barWidth < 2 {
		barWidth = 2
	}

	bc := gochart.BarChart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: backgroundStyle(opts.Dark),
		Canvas:     canvasStyle(opts.Dark),
		BarWidth:   barWidth,
		BarSpacing: 1,
		XAxis:      axisStyle(opts.Dark),
		YAxis: gochart.YAxis{
			Style:          axisStyle(opts.Dark),
			Range:          yRange(maxY),
			ValueFormatter: countFormatter,
		},
		Bars: bars,
	}
	if opts.Dark {
		bc.TitleStyle = gochart.Style{FontColor: darkText}
	}

	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// barValues lays out the grouped bars. Only the first bar of a labelled
// day carries the date.
func barValues(points []covid.DailyPoint, window int) ([]gochart.Value, float64) {
	bars := make([]gochart.Value, 0, len(points)*3)
	var maxY float64
	step := labelStep(len(points))
	for i, p := range points {
		label := ""
		// Thin out labels so long windows stay readable.
		if i%step == 0 || i == len(points)-1 {
			label = covid.AxisDateLabel(p.Date, window)
		}
		for j, v := range []struct {
			n int64
			c drawing.Color
		}{{p.Cases, casesColor}, {p.Deaths, deathsColor}, {p.Recovered, recoveredColor}} {
			bar := gochart.Value{
				Value: float64(v.n),
				Style: gochart.Style{FillColor: v.c, StrokeColor: v.c},
			}
			if j == 0 {
				bar.Label = label
			}
			if bar.Value > maxY {
				maxY = bar.Value
			}
			bars = append(bars, bar)
		}
	}
	return bars, maxY
}

func labelStep(n int) int {
	switch {
	case n > 60:
		return 15
	case n > 20:
		return 5
	default:
		return 1
	}
}

func seriesStyle(c drawing.Color, fill bool) gochart.Style {
	st := gochart.Style{StrokeColor: c, StrokeWidth: 3}
	if fill {
		st.FillColor = c.WithAlpha(48)
	}
	return st
}

func backgroundStyle(dark bool) gochart.Style {
	st := gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}}
	if dark {
		st.FillColor = darkBackground
	}
	return st
}

func canvasStyle(dark bool) gochart.Style {
	if dark {
		return gochart.Style{FillColor: darkBackground}
	}
	return gochart.Style{}
}

func axisStyle(dark bool) gochart.Style {
	st := gochart.Style{FontSize: 9}
	if dark {
		st.FontColor = darkText
		st.StrokeColor = darkText
	}
	return st
}

// yRange pins the axis at zero and avoids a zero-height range when every
// value is zero.
func yRange(maxY float64) *gochart.ContinuousRange {
	if maxY <= 0 {
		maxY = 1
	}
	return &gochart.ContinuousRange{Min: 0, Max: maxY * 1.1}
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return covid.CompactCount(int64(f))
	}
	return fmt.Sprintf("%v", v)
}

func dateFormatter(window int) gochart.ValueFormatter {
	return func(v interface{}) string {
		switch t := v.(type) {
		case time.Time:
			return covid.AxisDateLabel(t, window)
		case float64:
			return covid.AxisDateLabel(time.Unix(0, int64(t)).UTC(), window)
		}
		return ""
	}
}
