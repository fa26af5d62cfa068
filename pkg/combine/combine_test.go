package combine

import (
	"math"
	"strings"
	"testing"

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

func findRow(t *testing.T, rows []Row, sym string) Row {
	t.Helper()
	for _, r := range rows {
		if r.Symbol == sym {
			return r
		}
	}
	t.Fatalf("symbol %s missing from merged rows", sym)
	return Row{}
}

func TestMergeUnion(t *testing.T) {
	inst, instMeta := buildFlat(t, "main;alu 800\nmain;onlyinst 200\n", 0)
	cyc, cycMeta := buildFlat(t, "main;alu 1600\nmain;onlycyc 400\n", 0)

	rows, _ := Merge(inst, instMeta, cyc, cycMeta, Options{})

	syms := make(map[string]bool)
	for _, r := range rows {
		syms[r.Symbol] = true
	}
	for _, want := range []string{"alu", "onlyinst", "onlycyc"} {
		if !syms[want] {
			t.Errorf("merged set missing %s", want)
		}
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3 (union of both symbol sets)", len(rows))
	}
}

func TestMergeAbsentSideZeroes(t *testing.T) {
	inst, instMeta := buildFlat(t, "main;onlyinst 200\n", 0)
	cyc, cycMeta := buildFlat(t, "main;onlycyc 400\n", 0)

	rows, _ := Merge(inst, instMeta, cyc, cycMeta, Options{})

	oc := findRow(t, rows, "onlycyc")
	if oc.InstSelf != 0 || oc.InstTotal != 0 || oc.InstPercent != 0 {
		t.Errorf("onlycyc instruction side = %+v, want zeros", oc)
	}
	if !oc.HasIPC {
		t.Error("onlycyc IPC should be defined (cycle total > 0)")
	}
	if oc.IPC != 0 {
		t.Errorf("onlycyc IPC = %f, want 0 (no instructions)", oc.IPC)
	}
	if oc.HasCPI {
		t.Error("onlycyc CPI should be absent (instruction total is 0)")
	}

	oi := findRow(t, rows, "onlyinst")
	if oi.HasIPC {
		t.Error("onlyinst IPC should be absent (cycle total is 0)")
	}
	if !oi.HasCPI || oi.CPI != 0 {
		t.Errorf("onlyinst CPI = %+v, want defined 0", oi)
	}
}

func TestMergeIPCAndCPI(t *testing.T) {
	inst, instMeta := buildFlat(t, "main;alu 800\n", 0)
	cyc, cycMeta := buildFlat(t, "main;alu 1600\n", 0)

	rows, sum := Merge(inst, instMeta, cyc, cycMeta, Options{})

	r := findRow(t, rows, "alu")
	if !r.HasIPC || math.Abs(r.IPC-0.5) > 1e-12 {
		t.Errorf("alu IPC = %v, want 0.5", r.IPC)
	}
	if !r.HasCPI || math.Abs(r.CPI-2.0) > 1e-12 {
		t.Errorf("alu CPI = %v, want 2.0", r.CPI)
	}

	if sum.TotalInstructions != 800 || sum.TotalCycles != 1600 {
		t.Errorf("summary totals = %d/%d, want 800/1600", sum.TotalInstructions, sum.TotalCycles)
	}
	if !sum.HasCPI || math.Abs(sum.CPI-2.0) > 1e-12 {
		t.Errorf("overall CPI = %v, want 2.0", sum.CPI)
	}
	if !sum.HasIPC || math.Abs(sum.IPC-0.5) > 1e-12 {
		t.Errorf("overall IPC = %v, want 0.5", sum.IPC)
	}
}

func TestMergeRankedByCyclePercent(t *testing.T) {
	inst, instMeta := buildFlat(t, "hot 900\ncold 100\n", 0)
	// cycle trace ranks them the other way round
	cyc, cycMeta := buildFlat(t, "hot 100\ncold 900\n", 0)

	rows, _ := Merge(inst, instMeta, cyc, cycMeta, Options{})
	if rows[0].Symbol != "cold" || rows[1].Symbol != "hot" {
		t.Errorf("order = %s,%s; want cold,hot (cycle trace is the ranking axis)",
			rows[0].Symbol, rows[1].Symbol)
	}
}

func TestMergeTieBreakBySymbol(t *testing.T) {
	inst, instMeta := buildFlat(t, "b 10\na 10\n", 0)
	cyc, cycMeta := buildFlat(t, "b 50\na 50\n", 0)

	rows, _ := Merge(inst, instMeta, cyc, cycMeta, Options{})
	if rows[0].Symbol != "a" || rows[1].Symbol != "b" {
		t.Errorf("tie order = %s,%s; want a,b", rows[0].Symbol, rows[1].Symbol)
	}
}

func TestMergeFilterAfterJoin(t *testing.T) {
	inst, instMeta := buildFlat(t, "big 990\nsmall 10\n", 0)
	cyc, cycMeta := buildFlat(t, "big 950\nsmall 50\n", 0)

	thr := 10.0
	rows, sum := Merge(inst, instMeta, cyc, cycMeta, Options{CycleThreshold: &thr})
	if len(rows) != 1 || rows[0].Symbol != "big" {
		t.Fatalf("filtered rows = %+v, want only big", rows)
	}
	// summary stays global regardless of row filtering
	if sum.TotalInstructions != 1000 || sum.TotalCycles != 1000 {
		t.Errorf("summary totals = %d/%d, want 1000/1000", sum.TotalInstructions, sum.TotalCycles)
	}

	top := 1
	rows, _ = Merge(inst, instMeta, cyc, cycMeta, Options{Top: &top})
	if len(rows) != 1 || rows[0].Symbol != "big" {
		t.Errorf("top-capped rows = %+v, want only big", rows)
	}

	neg := -2
	rows, _ = Merge(inst, instMeta, cyc, cycMeta, Options{Top: &neg})
	if len(rows) != 0 {
		t.Errorf("negative top kept %d rows, want 0", len(rows))
	}
}

func TestMergeCarriesCycleClock(t *testing.T) {
	inst, instMeta := buildFlat(t, "alu 800\n", 0)
	cyc, cycMeta := buildFlat(t, "alu 1600\n", 100)

	_, sum := Merge(inst, instMeta, cyc, cycMeta, Options{})
	if !sum.HasTime || sum.ClkMHz != 100 {
		t.Fatalf("summary = %+v, want cycle clock 100 MHz", sum)
	}
	want := 1600.0 / 1e8
	if math.Abs(sum.TotalTimeS-want) > 1e-15 {
		t.Errorf("TotalTimeS = %v, want %v", sum.TotalTimeS, want)
	}
}
