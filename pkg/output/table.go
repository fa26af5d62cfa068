// Package output renders flat and combined profiles as text tables, CSV,
// and SVG bar charts.
package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/foldprof/foldprof/pkg/combine"
	"github.com/foldprof/foldprof/pkg/flat"
)

// timeUnit picks a readable unit for a duration in seconds.
func timeUnit(maxSeconds float64) (scale float64, unit string) {
	if maxSeconds < 1e-3 {
		return 1e6, "us"
	}
	if maxSeconds < 1.0 {
		return 1e3, "ms"
	}
	return 1, "s"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// PrintFlat writes the single-trace table. The time columns appear only when
// the rows carry time, with one unit chosen for the whole table from the
// largest self time present.
func PrintFlat(w io.Writer, rows []flat.Row, meta flat.Meta) {
	useTime := false
	maxSelf := 0.0
	for _, r := range rows {
		if r.HasTime {
			useTime = true
			if r.SelfTime > maxSelf {
				maxSelf = r.SelfTime
			}
		}
	}

	if useTime {
		scale, unit := timeUnit(maxSelf)
		fmt.Fprintf(w, "%6s %8s %12s %12s %12s %12s  symbol\n",
			"%", "cum%", "self", "total", "self["+unit+"]", "total["+unit+"]")
		for _, r := range rows {
			fmt.Fprintf(w, "%6.2f %8.2f %12d %12d %12.3f %12.3f  %s\n",
				r.Percent, r.CumPercent, r.SelfCount, r.TotalCount,
				r.SelfTime*scale, r.TotalTime*scale, r.Symbol)
		}
	} else {
		fmt.Fprintf(w, "%6s %8s %12s %12s  symbol\n", "%", "cum%", "self", "total")
		for _, r := range rows {
			fmt.Fprintf(w, "%6.2f %8.2f %12d %12d  %s\n",
				r.Percent, r.CumPercent, r.SelfCount, r.TotalCount, r.Symbol)
		}
	}

	fmt.Fprintf(w, "total_samples: %d\n", meta.TotalSamples)
	if meta.HasTime {
		fmt.Fprintf(w, "clk_mhz: %s\n", formatFloat(meta.ClkMHz))
		fmt.Fprintf(w, "total_time_s: %s\n", formatFloat(meta.TotalTimeS))
	}
}

func ratioCell(v float64, defined bool) string {
	if !defined {
		return ""
	}
	return fmt.Sprintf("%.3f", v)
}

// PrintCombined writes the dual-trace table ranked by cycle self-percentage,
// with blank IPC/CPI cells where the ratio is undefined.
func PrintCombined(w io.Writer, rows []combine.Row, sum combine.Summary) {
	fmt.Fprintf(w, "%7s %7s %10s %10s %10s %10s %8s %8s  symbol\n",
		"inst%", "cyc%", "inst_self", "inst_tot", "cyc_self", "cyc_tot", "ipc", "cpi")
	for _, r := range rows {
		fmt.Fprintf(w, "%7.2f %7.2f %10d %10d %10d %10d %8s %8s  %s\n",
			r.InstPercent, r.CyclePercent,
			r.InstSelf, r.InstTotal, r.CycleSelf, r.CycleTotal,
			ratioCell(r.IPC, r.HasIPC), ratioCell(r.CPI, r.HasCPI), r.Symbol)
	}

	fmt.Fprintf(w, "total_instructions: %d\n", sum.TotalInstructions)
	fmt.Fprintf(w, "total_cycles: %d\n", sum.TotalCycles)
	if sum.HasCPI {
		fmt.Fprintf(w, "CPI: %s\n", formatFloat(sum.CPI))
	}
	if sum.HasIPC {
		fmt.Fprintf(w, "IPC: %s\n", formatFloat(sum.IPC))
	}
	if sum.HasTime {
		fmt.Fprintf(w, "clk_mhz: %s\n", formatFloat(sum.ClkMHz))
		fmt.Fprintf(w, "total_time_s: %s\n", formatFloat(sum.TotalTimeS))
	}
}
