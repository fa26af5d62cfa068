package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/foldprof/foldprof/pkg/output"
)

var (
	rpTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	rpHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	rpCell   = lipgloss.NewStyle().Padding(0, 1)
	rpDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	rpBest   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// RenderBenchmarks outputs the per-benchmark comparison as a styled table,
// marking the lowest CPI as the most efficient run.
func RenderBenchmarks(w io.Writer, benchmarks []Benchmark) {
	fmt.Fprintln(w, rpTitle.Render("Benchmark Performance Summary"))
	fmt.Fprintln(w, rpDim.Render(strings.Repeat("═", 60)))
	fmt.Fprintln(w)

	if len(benchmarks) == 0 {
		fmt.Fprintln(w, "no .prof files found")
		return
	}

	bestCPI := benchmarks[0].CPI
	for _, b := range benchmarks {
		if b.CPI < bestCPI {
			bestCPI = b.CPI
		}
	}

	rows := make([][]string, len(benchmarks))
	for i, b := range benchmarks {
		cpi := fmt.Sprintf("%.3f", b.CPI)
		if b.CPI == bestCPI {
			cpi = rpBest.Render(cpi)
		}
		rows[i] = []string{
			b.Name,
			FormatCount(b.Instructions),
			FormatCount(b.Cycles),
			cpi,
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(rpDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return rpHeader
			}
			return rpCell
		}).
		Headers("BENCHMARK", "INSTRUCTIONS", "CYCLES", "CPI").
		Rows(rows...)

	fmt.Fprintln(w, t)
}

// RenderInsnMix outputs the instruction-mix breakdown: group shares first,
// then the top executed instructions.
func RenderInsnMix(w io.Writer, insns []InsnCount, topN int) {
	var total int64
	for _, in := range insns {
		total += in.Count
	}

	fmt.Fprintln(w, rpTitle.Render("Instruction Group Percentage"))
	fmt.Fprintln(w, rpDim.Render(strings.Repeat("─", 44)))
	for _, g := range GroupTotals(insns) {
		pct := 100.0 * float64(g.Count) / float64(total)
		fmt.Fprintf(w, "  %-12s %10s %8s\n", g.Name, FormatCount(g.Count), output.PercentLabel(pct))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rpTitle.Render(fmt.Sprintf("Top %d Executed Instructions", topN)))
	fmt.Fprintln(w, rpDim.Render(strings.Repeat("─", 44)))
	for _, in := range TopInsns(insns, topN) {
		fmt.Fprintf(w, "  %-10s %-12s %10s\n", in.Name, rpDim.Render(in.Group), FormatCount(in.Count))
	}
}

// InsnBars converts group totals into chart bars for the SVG sink.
func InsnBars(insns []InsnCount) []output.Bar {
	var total int64
	for _, in := range insns {
		total += in.Count
	}
	groups := GroupTotals(insns)
	bars := make([]output.Bar, len(groups))
	for i, g := range groups {
		pct := 100.0 * float64(g.Count) / float64(total)
		bars[i] = output.Bar{Label: g.Name, Value: pct, Display: output.PercentLabel(pct)}
	}
	return bars
}
