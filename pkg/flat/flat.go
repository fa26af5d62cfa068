// Package flat builds ranked flat profiles from accumulated trace counts.
package flat

import (
	"errors"
	"sort"

	"github.com/foldprof/foldprof/pkg/trace"
)

// Row is one symbol's entry in the flat profile.
type Row struct {
	Symbol     string
	SelfCount  int64   // events where the symbol is the leaf frame
	TotalCount int64   // events where the symbol appears anywhere
	Percent    float64 // self count as percent of all samples
	CumPercent float64 // running sum of Percent in rank order

	// SelfTime and TotalTime are seconds derived from the clock frequency;
	// valid only when HasTime is set.
	SelfTime  float64
	TotalTime float64
	HasTime   bool
}

// Meta describes the whole trace.
type Meta struct {
	TotalSamples int64

	// ClkMHz and TotalTimeS are present only when HasTime is set.
	ClkMHz     float64
	TotalTimeS float64
	HasTime    bool
}

// ErrNoSamples is returned when the grand total is not positive.
var ErrNoSamples = errors.New("no samples")

// Build converts accumulated counts into rows sorted by self count
// descending, symbol ascending on ties. Only symbols that appear as a leaf
// get a row; pure non-leaf symbols still feed other rows' total counts.
//
// A clkMHz > 0 treats each count as one cycle and derives wall time;
// clkMHz <= 0 disables the time columns entirely.
func Build(c *trace.Counts, clkMHz float64) ([]Row, Meta, error) {
	if c == nil || c.GrandTotal <= 0 {
		return nil, Meta{}, ErrNoSamples
	}

	rows := make([]Row, 0, len(c.Self))
	for sym, self := range c.Self {
		rows = append(rows, Row{
			Symbol:     sym,
			SelfCount:  self,
			TotalCount: c.Total[sym],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SelfCount != rows[j].SelfCount {
			return rows[i].SelfCount > rows[j].SelfCount
		}
		return rows[i].Symbol < rows[j].Symbol
	})

	useTime := clkMHz > 0
	denom := clkMHz * 1e6 // events per second

	cum := 0.0
	for i := range rows {
		r := &rows[i]
		r.Percent = 100.0 * float64(r.SelfCount) / float64(c.GrandTotal)
		cum += r.Percent
		r.CumPercent = cum
		if useTime {
			r.SelfTime = float64(r.SelfCount) / denom
			r.TotalTime = float64(r.TotalCount) / denom
			r.HasTime = true
		}
	}

	meta := Meta{TotalSamples: c.GrandTotal}
	if useTime {
		meta.ClkMHz = clkMHz
		meta.TotalTimeS = float64(c.GrandTotal) / denom
		meta.HasTime = true
	}
	return rows, meta, nil
}

// FilterOptions reduces a ranked row list. Nil fields mean "no limit".
type FilterOptions struct {
	// MinPercent keeps only rows with Percent >= *MinPercent. Applied
	// before Top.
	MinPercent *float64
	// Top keeps only the first *Top rows; negative values clamp to zero.
	Top *int
}

// Filter removes rows without re-sorting, preserving relative order.
func Filter(rows []Row, opts FilterOptions) []Row {
	out := make([]Row, 0, len(rows))
	out = append(out, rows...)
	if opts.MinPercent != nil {
		kept := out[:0]
		for _, r := range out {
			if r.Percent >= *opts.MinPercent {
				kept = append(kept, r)
			}
		}
		out = kept
	}
	if opts.Top != nil {
		n := *opts.Top
		if n < 0 {
			n = 0
		}
		if n < len(out) {
			out = out[:n]
		}
	}
	return out
}
