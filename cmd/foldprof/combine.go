package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldprof/foldprof/pkg/combine"
	"github.com/foldprof/foldprof/pkg/flat"
	"github.com/foldprof/foldprof/pkg/output"
	"github.com/foldprof/foldprof/pkg/trace"
)

var combineOpts struct {
	instTrace    string
	cycleTrace   string
	clkMHz       float64
	secondClkMHz float64
	top          int
	thrCycle     float64
}

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Merge an instruction trace and a cycle trace into one IPC/CPI table",
	Long: `Merge two folded traces of the same execution, conventionally retired
instructions (-t) and cycles (-s), by full outer join on symbol name. The
table is ranked by cycle self-percentage; threshold and top filtering apply
after the merge so no symbol is lost before the join.`,
	RunE: runCombine,
}

func init() {
	f := combineCmd.Flags()
	f.StringVarP(&combineOpts.instTrace, "trace", "t", "", "instruction trace path")
	f.StringVarP(&combineOpts.cycleTrace, "second-trace", "s", "", "cycle trace path")
	f.Float64Var(&combineOpts.clkMHz, "clk-mhz", 0, "clock MHz for the instruction trace")
	f.Float64Var(&combineOpts.secondClkMHz, "second-clk-mhz", 0, "clock MHz for the cycle trace")
	f.IntVarP(&combineOpts.top, "top", "p", 0, "keep only the top N rows by cycle self%")
	f.Float64Var(&combineOpts.thrCycle, "thr-cycle", 0, "keep only rows with cycle self% >= thr (in percent)")
	cobra.CheckErr(combineCmd.MarkFlagRequired("trace"))
	cobra.CheckErr(combineCmd.MarkFlagRequired("second-trace"))
	rootCmd.AddCommand(combineCmd)
}

func buildTrace(path string, clkMHz float64) ([]flat.Row, flat.Meta, error) {
	counts, err := trace.AccumulateFile(path)
	if err != nil {
		return nil, flat.Meta{}, err
	}
	rows, meta, err := flat.Build(counts, clkMHz)
	if err != nil {
		return nil, flat.Meta{}, fmt.Errorf("%s: %w", path, err)
	}
	return rows, meta, nil
}

func runCombine(cmd *cobra.Command, args []string) error {
	instRows, instMeta, err := buildTrace(combineOpts.instTrace, combineOpts.clkMHz)
	if err != nil {
		return err
	}
	cycRows, cycMeta, err := buildTrace(combineOpts.cycleTrace, combineOpts.secondClkMHz)
	if err != nil {
		return err
	}

	var opts combine.Options
	if cmd.Flags().Changed("thr-cycle") {
		opts.CycleThreshold = &combineOpts.thrCycle
	}
	if cmd.Flags().Changed("top") {
		opts.Top = &combineOpts.top
	}

	rows, sum := combine.Merge(instRows, instMeta, cycRows, cycMeta, opts)

	fmt.Println(titleStyle.Render("Profile - combined (inst + cycle)"))
	output.PrintCombined(os.Stdout, rows, sum)
	return nil
}
