// Package flamegraph renders folded callstack traces as flame graph SVGs,
// preferring Brendan Gregg's flamegraph.pl and falling back to a built-in
// renderer when the script is not installed.
package flamegraph

import "strconv"

// ColorSchemes lists the palettes understood by flamegraph.pl.
var ColorSchemes = []string{
	"hot", "mem", "io", "wakeup", "chain", "java",
	"js", "perl", "red", "green", "blue", "aqua",
	"yellow", "purple", "orange",
}

// Config customizes the generated graph.
type Config struct {
	Title    string
	Subtitle string
	Width    int
	Height   int // per-frame height in pixels
	Color    string
	MinWidth string // minimum frame width, e.g. "0.1"
	Reverse  bool
	Inverted bool // icicle layout
}

// DefaultConfig returns the defaults used by the original tooling.
func DefaultConfig() Config {
	return Config{
		Width:    1200,
		Height:   16,
		Color:    "hot",
		MinWidth: "0.1",
	}
}

// toArgs converts the config to flamegraph.pl command line arguments.
func (c Config) toArgs() []string {
	var args []string
	if c.Title != "" {
		args = append(args, "--title", c.Title)
	}
	if c.Subtitle != "" {
		args = append(args, "--subtitle", c.Subtitle)
	}
	args = append(args,
		"--width", strconv.Itoa(c.Width),
		"--height", strconv.Itoa(c.Height),
		"--colors", c.Color,
		"--minwidth", c.MinWidth,
	)
	if c.Reverse {
		args = append(args, "--reverse")
	}
	if c.Inverted {
		args = append(args, "--inverted")
	}
	return args
}
