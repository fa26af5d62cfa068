package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldprof/foldprof/pkg/flamegraph"
)

var fgOpts struct {
	output     string
	scriptPath string
	cfg        flamegraph.Config
	builtin    bool
}

var flamegraphCmd = &cobra.Command{
	Use:   "flamegraph <trace>...",
	Short: "Render folded traces as flame graph SVGs",
	Long: `Render one or more folded traces with flamegraph.pl, auto-detecting
benchmark name and trace type from out_<benchmark>/callstack_folded_<type>
paths. Falls back to a built-in renderer when the script is missing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFlamegraph,
}

func init() {
	fgOpts.cfg = flamegraph.DefaultConfig()
	f := flamegraphCmd.Flags()
	f.StringVarP(&fgOpts.output, "output", "o", "", "output SVG path (single input only)")
	f.StringVar(&fgOpts.scriptPath, "flamegraph-pl", "", "path to flamegraph.pl (auto-detected if not set)")
	f.BoolVar(&fgOpts.builtin, "builtin", false, "use the built-in renderer even if flamegraph.pl exists")
	f.StringVar(&fgOpts.cfg.Title, "title", "", "graph title")
	f.StringVar(&fgOpts.cfg.Subtitle, "subtitle", "", "graph subtitle")
	f.IntVar(&fgOpts.cfg.Width, "width", fgOpts.cfg.Width, "image width")
	f.IntVar(&fgOpts.cfg.Height, "height", fgOpts.cfg.Height, "frame height")
	f.StringVar(&fgOpts.cfg.Color, "color", fgOpts.cfg.Color, "color scheme")
	f.StringVar(&fgOpts.cfg.MinWidth, "minwidth", fgOpts.cfg.MinWidth, "minimum frame width")
	f.BoolVar(&fgOpts.cfg.Reverse, "reverse", false, "generate a reversed flame graph")
	f.BoolVar(&fgOpts.cfg.Inverted, "inverted", false, "generate an inverted (icicle) graph")
	rootCmd.AddCommand(flamegraphCmd)
}

func runFlamegraph(cmd *cobra.Command, args []string) error {
	if fgOpts.output != "" && len(args) > 1 {
		return fmt.Errorf("--output can only be used with a single input file")
	}

	script := fgOpts.scriptPath
	if script == "" && !fgOpts.builtin {
		script = flamegraph.FindScript()
		if script == "" {
			log.Warn("flamegraph.pl not found, using built-in renderer")
		}
	}
	if fgOpts.builtin {
		script = ""
	}

	gen := flamegraph.NewGenerator(script, fgOpts.cfg, log)

	if len(args) == 1 {
		out, err := gen.Generate(args[0], fgOpts.output)
		if err != nil {
			return err
		}
		fmt.Printf("flame graph saved: %s\n", out)
		return nil
	}

	ok := gen.GenerateBatch(args)
	fmt.Printf("completed: %d/%d successful\n", ok, len(args))
	if ok != len(args) {
		return fmt.Errorf("%d of %d flame graphs failed", len(args)-ok, len(args))
	}
	return nil
}
