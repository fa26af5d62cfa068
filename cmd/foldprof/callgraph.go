package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldprof/foldprof/pkg/callgraph"
)

var cgOpts struct {
	output        string
	gprof2dotPath string
	svg           bool
	png           bool
	pdf           bool
}

var callgraphCmd = &cobra.Command{
	Use:   "callgraph <trace>",
	Short: "Generate a call graph from a folded trace via gprof2dot and dot",
	Args:  cobra.ExactArgs(1),
	RunE:  runCallgraph,
}

func init() {
	f := callgraphCmd.Flags()
	f.StringVarP(&cgOpts.output, "output", "o", "", "output .dot path (default: call_graph_<type>.dot next to the input)")
	f.StringVar(&cgOpts.gprof2dotPath, "gprof2dot", "", "path to gprof2dot (auto-detected if not set)")
	f.BoolVar(&cgOpts.svg, "svg", false, "also render SVG")
	f.BoolVar(&cgOpts.png, "png", false, "also render PNG")
	f.BoolVar(&cgOpts.pdf, "pdf", false, "also render PDF")
	rootCmd.AddCommand(callgraphCmd)
}

func runCallgraph(cmd *cobra.Command, args []string) error {
	script := cgOpts.gprof2dotPath
	if script == "" {
		found, err := callgraph.FindGprof2dot()
		if err != nil {
			return err
		}
		script = found
	}

	gen := callgraph.NewGenerator(script, log)
	dotPath, err := gen.GenerateDot(args[0], cgOpts.output)
	if err != nil {
		return err
	}
	fmt.Printf("call graph saved: %s\n", dotPath)

	for _, want := range []struct {
		enabled bool
		format  string
	}{{cgOpts.svg, "svg"}, {cgOpts.png, "png"}, {cgOpts.pdf, "pdf"}} {
		if !want.enabled {
			continue
		}
		out, err := gen.Render(dotPath, want.format)
		if err != nil {
			return err
		}
		fmt.Printf("%s rendered: %s\n", want.format, out)
	}
	return nil
}
