// foldprof summarizes folded callstack traces from the simulator's
// profiler: flat profiles, instruction/cycle combination, flame graphs,
// call graphs and .prof summary reports.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	log     = logrus.New()
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "foldprof",
	Short: "Analyze folded callstack profiling traces",
	Long: `foldprof turns folded callstack traces ("frame1;frame2;...;frameN COUNT",
one sample per line) into flat profiles, combined instruction/cycle tables
with IPC/CPI, flame graphs, call graphs and benchmark summary reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetLevel(logrus.WarnLevel)
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
