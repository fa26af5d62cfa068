package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/foldprof/foldprof/pkg/combine"
	"github.com/foldprof/foldprof/pkg/flat"
	"github.com/foldprof/foldprof/pkg/trace"
)

func buildFlat(t *testing.T, folded string, clkMHz float64) ([]flat.Row, flat.Meta) {
	t.Helper()
	c, err := trace.Accumulate(strings.NewReader(folded))
	if err != nil {
		t.Fatalf("Accumulate: %v", err)
	}
	rows, meta, err := flat.Build(c, clkMHz)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return rows, meta
}

func TestTimeUnitBoundaries(t *testing.T) {
	tests := []struct {
		maxSeconds float64
		unit       string
	}{
		{0.0005, "us"},
		{0.000999999, "us"},
		{1e-3, "ms"}, // exactly 1 ms is no longer "< 1ms"
		{0.5, "ms"},
		{0.999, "ms"},
		{1.0, "s"}, // exactly 1 s is no longer "< 1s"
		{7.25, "s"},
	}
	for _, tt := range tests {
		_, unit := timeUnit(tt.maxSeconds)
		if unit != tt.unit {
			t.Errorf("timeUnit(%v) = %s, want %s", tt.maxSeconds, unit, tt.unit)
		}
	}
}

func TestPrintFlatNoTime(t *testing.T) {
	rows, meta := buildFlat(t, "_start; 4\n_start;memset; 720\n_start;main;Proc0; 80000018\n", 0)

	var buf bytes.Buffer
	PrintFlat(&buf, rows, meta)
	out := buf.String()

	if strings.Contains(out, "self[") {
		t.Error("time columns present without clock frequency")
	}
	if !strings.Contains(out, "total_samples: 80000743") {
		t.Errorf("missing total_samples metadata:\n%s", out)
	}
	if strings.Contains(out, "clk_mhz") || strings.Contains(out, "total_time_s") {
		t.Error("time metadata present without clock frequency")
	}

	// rank order in output
	iProc := strings.Index(out, "Proc0")
	iMem := strings.Index(out, "memset")
	iStart := strings.Index(out, "_start")
	if !(iProc < iMem && iMem < iStart) {
		t.Errorf("rows out of rank order:\n%s", out)
	}
}

func TestPrintFlatMillisecondUnit(t *testing.T) {
	// Proc0 self time = 0.80000018 s at 100 MHz → ms column, "800.000"
	rows, meta := buildFlat(t, "_start; 4\n_start;memset; 720\n_start;main;Proc0; 80000018\n", 100)

	var buf bytes.Buffer
	PrintFlat(&buf, rows, meta)
	out := buf.String()

	if !strings.Contains(out, "self[ms]") || !strings.Contains(out, "total[ms]") {
		t.Errorf("expected millisecond columns:\n%s", out)
	}
	if !strings.Contains(out, "800.000") {
		t.Errorf("expected Proc0 self time 800.000 ms:\n%s", out)
	}
	if !strings.Contains(out, "clk_mhz: 100") {
		t.Errorf("missing clk_mhz metadata:\n%s", out)
	}
	if !strings.Contains(out, "total_time_s: 0.80000743") {
		t.Errorf("missing total_time_s metadata:\n%s", out)
	}
}

func TestPrintFlatSecondUnit(t *testing.T) {
	// 2e8 cycles at 100 MHz = 2 s → unit must be seconds
	rows, meta := buildFlat(t, "main;busy 200000000\n", 100)

	var buf bytes.Buffer
	PrintFlat(&buf, rows, meta)
	out := buf.String()
	if !strings.Contains(out, "self[s]") {
		t.Errorf("expected second columns:\n%s", out)
	}
	if !strings.Contains(out, "2.000") {
		t.Errorf("expected 2.000 s self time:\n%s", out)
	}
}

func TestPrintFlatMicrosecondUnit(t *testing.T) {
	// 50 cycles at 100 MHz = 0.5 us → unit must be microseconds
	rows, meta := buildFlat(t, "main;tiny 50\n", 100)

	var buf bytes.Buffer
	PrintFlat(&buf, rows, meta)
	if !strings.Contains(buf.String(), "self[us]") {
		t.Errorf("expected microsecond columns:\n%s", buf.String())
	}
}

func TestPrintCombined(t *testing.T) {
	inst, instMeta := buildFlat(t, "main;alu 800\nmain;onlyinst 200\n", 0)
	cyc, cycMeta := buildFlat(t, "main;alu 1600\nmain;onlycyc 400\n", 100)

	rows, sum := combine.Merge(inst, instMeta, cyc, cycMeta, combine.Options{})

	var buf bytes.Buffer
	PrintCombined(&buf, rows, sum)
	out := buf.String()

	if !strings.Contains(out, "total_instructions: 1000") {
		t.Errorf("missing total_instructions:\n%s", out)
	}
	if !strings.Contains(out, "total_cycles: 2000") {
		t.Errorf("missing total_cycles:\n%s", out)
	}
	if !strings.Contains(out, "CPI: 2") || !strings.Contains(out, "IPC: 0.5") {
		t.Errorf("missing overall CPI/IPC:\n%s", out)
	}
	if !strings.Contains(out, "clk_mhz: 100") {
		t.Errorf("missing cycle clock:\n%s", out)
	}

	// alu: ipc 0.5, cpi 2.000
	var aluLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasSuffix(line, "  alu") {
			aluLine = line
		}
	}
	if aluLine == "" {
		t.Fatalf("alu row missing:\n%s", out)
	}
	if !strings.Contains(aluLine, "0.500") || !strings.Contains(aluLine, "2.000") {
		t.Errorf("alu row %q lacks ipc/cpi cells", aluLine)
	}

	// onlyinst has no cycles: ipc is blank, cpi is a defined 0.000
	for _, line := range strings.Split(out, "\n") {
		if strings.HasSuffix(line, "  onlyinst") {
			if n := strings.Count(line, "0.000"); n != 1 {
				t.Errorf("onlyinst row %q has %d ratio cells, want only cpi=0.000", line, n)
			}
		}
	}
}

func TestWriteCSV(t *testing.T) {
	rows, _ := buildFlat(t, "main;alu 750\nmain;mem 250\n", 100)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "symbol,percent,cum_percent,self_count,total_count,self_time_s,total_time_s" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "alu,75.000000,75.000000,750,750,") {
		t.Errorf("alu record = %q", lines[1])
	}
}

func TestWriteCSVNoTimeBlankCells(t *testing.T) {
	rows, _ := buildFlat(t, "main;alu 750\n", 0)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasSuffix(lines[1], ",,") {
		t.Errorf("record %q should end with blank time cells", lines[1])
	}
}

func TestPercentLabel(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "0.0%"},
		{0.05, "<1.0%"},
		{0.999, "<1.0%"},
		{1.0, "1.0%"},
		{12.34, "12.3%"},
		{100, "100.0%"},
	}
	for _, tt := range tests {
		if got := PercentLabel(tt.pct); got != tt.want {
			t.Errorf("PercentLabel(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestRenderBarChart(t *testing.T) {
	rows, _ := buildFlat(t, "main;alu 995\nmain;mem 5\n", 0)

	var buf bytes.Buffer
	err := RenderBarChart(&buf, FlatBars(rows), ChartOptions{Title: "Profile - inst"})
	if err != nil {
		t.Fatalf("RenderBarChart: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Error("output is not an SVG document")
	}
	if !strings.Contains(out, "Profile - inst") {
		t.Error("title missing from chart")
	}
	if !strings.Contains(out, "&lt;1.0%") {
		t.Errorf("sub-percent label not rendered as <1.0%%:\n%s", out)
	}
}

func TestRenderBarChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderBarChart(&buf, nil, ChartOptions{}); err == nil {
		t.Error("expected error for empty chart")
	}
}
