// Package combine merges two flat profiles of the same execution, typically
// a retired-instruction trace and a cycle trace, into one per-symbol table
// with IPC/CPI ratios.
package combine

import (
	"sort"

	"github.com/foldprof/foldprof/pkg/flat"
)

// Row carries both traces' counts for one symbol. A symbol missing from one
// trace gets zeros for that side; a true zero-count symbol looks identical,
// which is accepted rather than disambiguated.
type Row struct {
	Symbol string

	InstSelf    int64
	InstTotal   int64
	InstPercent float64

	CycleSelf    int64
	CycleTotal   int64
	CyclePercent float64

	// IPC = InstTotal/CycleTotal, defined only when CycleTotal > 0.
	// CPI = CycleTotal/InstTotal, defined only when InstTotal > 0.
	// Each is computed independently, so one can be defined without the
	// other.
	IPC    float64
	HasIPC bool
	CPI    float64
	HasCPI bool
}

// Summary aggregates both traces, independent of row filtering.
type Summary struct {
	TotalInstructions int64
	TotalCycles       int64

	CPI    float64
	HasCPI bool
	IPC    float64
	HasIPC bool

	// Clock and wall time come from the cycle trace when available.
	ClkMHz     float64
	TotalTimeS float64
	HasTime    bool
}

// Options filters the merged table. The threshold applies to the cycle
// self-percentage, then the cap, both after the merge so the full outer
// join sees every symbol from both traces.
type Options struct {
	CycleThreshold *float64
	Top            *int
}

// Merge joins two complete (unfiltered) flat profiles by symbol name. The
// combined table is ranked by cycle self-percentage descending, symbol
// ascending on ties: the cycle trace is the ranking axis.
func Merge(inst []flat.Row, instMeta flat.Meta, cyc []flat.Row, cycMeta flat.Meta, opts Options) ([]Row, Summary) {
	instMap := make(map[string]flat.Row, len(inst))
	for _, r := range inst {
		instMap[r.Symbol] = r
	}
	cycMap := make(map[string]flat.Row, len(cyc))
	for _, r := range cyc {
		cycMap[r.Symbol] = r
	}

	seen := make(map[string]bool, len(instMap)+len(cycMap))
	var rows []Row
	add := func(sym string) {
		if seen[sym] {
			return
		}
		seen[sym] = true

		row := Row{Symbol: sym}
		if ir, ok := instMap[sym]; ok {
			row.InstSelf = ir.SelfCount
			row.InstTotal = ir.TotalCount
			row.InstPercent = ir.Percent
		}
		if cr, ok := cycMap[sym]; ok {
			row.CycleSelf = cr.SelfCount
			row.CycleTotal = cr.TotalCount
			row.CyclePercent = cr.Percent
		}
		if row.CycleTotal > 0 {
			row.IPC = float64(row.InstTotal) / float64(row.CycleTotal)
			row.HasIPC = true
		}
		if row.InstTotal > 0 {
			row.CPI = float64(row.CycleTotal) / float64(row.InstTotal)
			row.HasCPI = true
		}
		rows = append(rows, row)
	}
	for _, r := range inst {
		add(r.Symbol)
	}
	for _, r := range cyc {
		add(r.Symbol)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CyclePercent != rows[j].CyclePercent {
			return rows[i].CyclePercent > rows[j].CyclePercent
		}
		return rows[i].Symbol < rows[j].Symbol
	})

	if opts.CycleThreshold != nil {
		kept := rows[:0]
		for _, r := range rows {
			if r.CyclePercent >= *opts.CycleThreshold {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	if opts.Top != nil {
		n := *opts.Top
		if n < 0 {
			n = 0
		}
		if n < len(rows) {
			rows = rows[:n]
		}
	}

	sum := Summary{
		TotalInstructions: instMeta.TotalSamples,
		TotalCycles:       cycMeta.TotalSamples,
	}
	if sum.TotalInstructions > 0 {
		sum.CPI = float64(sum.TotalCycles) / float64(sum.TotalInstructions)
		sum.HasCPI = true
	}
	if sum.TotalCycles > 0 {
		sum.IPC = float64(sum.TotalInstructions) / float64(sum.TotalCycles)
		sum.HasIPC = true
	}
	if cycMeta.HasTime {
		sum.ClkMHz = cycMeta.ClkMHz
		sum.TotalTimeS = cycMeta.TotalTimeS
		sum.HasTime = true
	}
	return rows, sum
}
