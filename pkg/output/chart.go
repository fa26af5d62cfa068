package output

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"

	"github.com/foldprof/foldprof/pkg/flat"
)

// Bar is one horizontal bar in a chart.
type Bar struct {
	Label   string
	Value   float64
	Display string // text shown next to the bar
}

// ChartOptions configures an SVG bar chart.
type ChartOptions struct {
	Title string
	Width int
	Color string
}

// DefaultChartOptions returns sensible chart defaults.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Width: 750,
		Color: "#7ed3ab",
	}
}

// PercentLabel formats a percentage for display: tiny non-zero shares
// collapse to "<1.0%" instead of rounding down to a misleading "0.0%".
func PercentLabel(pct float64) string {
	if pct > 0 && pct < 1.0 {
		return "<1.0%"
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FlatBars converts ranked flat rows into chart bars of self-percentage.
func FlatBars(rows []flat.Row) []Bar {
	bars := make([]Bar, len(rows))
	for i, r := range rows {
		bars[i] = Bar{Label: r.Symbol, Value: r.Percent, Display: PercentLabel(r.Percent)}
	}
	return bars
}

// RenderBarChart writes a horizontal bar chart as SVG, one bar per entry in
// the given order.
func RenderBarChart(w io.Writer, bars []Bar, opts ChartOptions) error {
	if len(bars) == 0 {
		return fmt.Errorf("no rows to chart")
	}
	if opts.Width == 0 {
		opts.Width = 750
	}
	if opts.Color == "" {
		opts.Color = "#7ed3ab"
	}

	maxVal := 0.0
	labelW := 0
	for _, b := range bars {
		if b.Value > maxVal {
			maxVal = b.Value
		}
		if len(b.Label) > labelW {
			labelW = len(b.Label)
		}
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	barHeight := 18
	gap := 6
	headerHeight := 40
	margin := 10
	labelPx := labelW*7 + 10
	plotW := opts.Width - labelPx - 80 - 2*margin
	if plotW < 100 {
		plotW = 100
	}
	height := headerHeight + len(bars)*(barHeight+gap) + margin

	fmt.Fprintf(w, `<?xml version="1.0" standalone="no"?>
<svg version="1.1" width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<style>
  text { font-family: monospace; font-size: 12px; }
</style>
<rect x="0" y="0" width="%d" height="%d" fill="white"/>
<text x="%d" y="22" text-anchor="middle" style="font-size:15px; font-weight:bold;">%s</text>
`,
		opts.Width, height,
		opts.Width, height,
		opts.Width/2, html.EscapeString(opts.Title))

	for i, b := range bars {
		y := headerHeight + i*(barHeight+gap)
		w0 := int(float64(plotW) * b.Value / maxVal)
		if w0 < 1 && b.Value > 0 {
			w0 = 1
		}
		fmt.Fprintf(w, `<text x="%d" y="%d" text-anchor="end">%s</text>
<rect x="%d" y="%d" width="%d" height="%d" fill="%s" rx="1"/>
<text x="%d" y="%d">%s</text>
`,
			margin+labelPx-6, y+barHeight-5, html.EscapeString(b.Label),
			margin+labelPx, y, w0, barHeight, opts.Color,
			margin+labelPx+w0+4, y+barHeight-5, html.EscapeString(b.Display))
	}

	fmt.Fprintln(w, "</svg>")
	return nil
}

// WriteChartFile renders the bar chart to path, creating parent directories.
func WriteChartFile(path string, bars []Bar, opts ChartOptions) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot write chart: %w", err)
	}
	defer f.Close()
	return RenderBarChart(f, bars, opts)
}
