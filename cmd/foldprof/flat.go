package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/foldprof/foldprof/pkg/flat"
	"github.com/foldprof/foldprof/pkg/output"
	"github.com/foldprof/foldprof/pkg/pprofexport"
	"github.com/foldprof/foldprof/pkg/trace"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

var flatOpts struct {
	trace     string
	event     string
	top       int
	thr       float64
	clkMHz    float64
	csvPath   string
	chartPath string
	pprofPath string
}

var flatCmd = &cobra.Command{
	Use:   "flat",
	Short: "Build a flat per-symbol profile from one folded trace",
	RunE:  runFlat,
}

func init() {
	f := flatCmd.Flags()
	f.StringVarP(&flatOpts.trace, "trace", "t", "", "folded callstack trace path")
	f.StringVarP(&flatOpts.event, "event", "e", "inst", "event label (e.g. inst/cycle/branch); affects titles, not parsing")
	f.IntVarP(&flatOpts.top, "top", "p", 0, "keep only the top N rows by self count")
	f.Float64Var(&flatOpts.thr, "thr", 0, "keep only rows with self% >= thr (in percent)")
	f.Float64Var(&flatOpts.clkMHz, "clk-mhz", 0, "compute time assuming counts are cycles at this clock (MHz)")
	f.StringVar(&flatOpts.csvPath, "csv", "", "write the flat profile as CSV to this path")
	f.StringVar(&flatOpts.chartPath, "chart", "", "write a self-percentage bar chart SVG to this path")
	f.StringVar(&flatOpts.pprofPath, "pprof", "", "export the trace as a pprof profile to this path")
	cobra.CheckErr(flatCmd.MarkFlagRequired("trace"))
	rootCmd.AddCommand(flatCmd)
}

// filterFlags converts the cobra flags into filter options, keeping unset
// flags as "no limit".
func filterFlags(cmd *cobra.Command, thrName, topName string, thr *float64, top *int) flat.FilterOptions {
	var opts flat.FilterOptions
	if cmd.Flags().Changed(thrName) {
		opts.MinPercent = thr
	}
	if cmd.Flags().Changed(topName) {
		opts.Top = top
	}
	return opts
}

func runFlat(cmd *cobra.Command, args []string) error {
	samples, err := trace.ReadFile(flatOpts.trace)
	if err != nil {
		return err
	}
	counts, err := trace.AccumulateSamples(samples)
	if err != nil {
		return fmt.Errorf("%s: %w", flatOpts.trace, err)
	}

	rows, meta, err := flat.Build(counts, flatOpts.clkMHz)
	if err != nil {
		return err
	}
	rows = flat.Filter(rows, filterFlags(cmd, "thr", "top", &flatOpts.thr, &flatOpts.top))

	title := "Profile - " + flatOpts.event
	fmt.Println(titleStyle.Render(title))
	output.PrintFlat(os.Stdout, rows, meta)

	if flatOpts.csvPath != "" {
		if err := output.WriteCSVFile(flatOpts.csvPath, rows); err != nil {
			return err
		}
		log.WithField("path", flatOpts.csvPath).Info("CSV written")
	}
	if flatOpts.chartPath != "" {
		opts := output.DefaultChartOptions()
		opts.Title = title
		if err := output.WriteChartFile(flatOpts.chartPath, output.FlatBars(rows), opts); err != nil {
			return err
		}
		fmt.Printf("chart saved: %s\n", flatOpts.chartPath)
	}
	if flatOpts.pprofPath != "" {
		popts := pprofexport.Options{EventName: flatOpts.event, ClkMHz: flatOpts.clkMHz}
		if err := pprofexport.WriteFile(flatOpts.pprofPath, samples, popts); err != nil {
			return err
		}
		fmt.Printf("pprof profile saved: %s\n", flatOpts.pprofPath)
	}
	return nil
}
