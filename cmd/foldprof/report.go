package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldprof/foldprof/pkg/output"
	"github.com/foldprof/foldprof/pkg/report"
)

var reportOpts struct {
	dir      string
	jsonPath string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize .prof files from a build directory",
	RunE:  runReport,
}

var insnOpts struct {
	top       int
	chartPath string
}

var insnCmd = &cobra.Command{
	Use:   "insn <prof-file>",
	Short: "Break down the instruction mix of one .prof file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInsn,
}

func init() {
	reportCmd.Flags().StringVar(&reportOpts.dir, "dir", "build", "directory to scan for .prof files")
	reportCmd.Flags().StringVar(&reportOpts.jsonPath, "json", "", "also write the summary as JSON to this path")

	insnCmd.Flags().IntVar(&insnOpts.top, "top", 15, "number of top instructions to show")
	insnCmd.Flags().StringVar(&insnOpts.chartPath, "chart", "", "write a group-percentage bar chart SVG to this path")

	reportCmd.AddCommand(insnCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	benchmarks, err := report.ScanDir(reportOpts.dir, log)
	if err != nil {
		return err
	}
	report.RenderBenchmarks(os.Stdout, benchmarks)

	if reportOpts.jsonPath != "" {
		if err := report.SaveJSON(reportOpts.jsonPath, benchmarks); err != nil {
			return err
		}
		fmt.Printf("report saved: %s\n", reportOpts.jsonPath)
	}
	return nil
}

func runInsn(cmd *cobra.Command, args []string) error {
	insns, err := report.ParseInsnTable(args[0])
	if err != nil {
		return err
	}
	report.RenderInsnMix(os.Stdout, insns, insnOpts.top)

	if insnOpts.chartPath != "" {
		opts := output.DefaultChartOptions()
		opts.Title = "Instruction Group Percentage"
		if err := output.WriteChartFile(insnOpts.chartPath, report.InsnBars(insns), opts); err != nil {
			return err
		}
		fmt.Printf("chart saved: %s\n", insnOpts.chartPath)
	}
	return nil
}
