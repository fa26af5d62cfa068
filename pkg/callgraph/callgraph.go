// Package callgraph turns folded callstack traces into call graphs by
// driving gprof2dot and Graphviz dot as external renderers. Call-graph
// construction itself is fully delegated; this package only orchestrates.
package callgraph

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Formats supported by the dot renderer.
var Formats = []string{"svg", "png", "pdf"}

// FindGprof2dot locates the gprof2dot script. Returns an error naming the
// expected location when missing.
func FindGprof2dot() (string, error) {
	if path, err := exec.LookPath("gprof2dot"); err == nil {
		return path, nil
	}
	candidates := []string{
		"tools/gprof2dot/gprof2dot.py",
		"tools/gprof2dot.py",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("gprof2dot not found: install it or place gprof2dot.py under tools/")
}

// AutoOutputPath derives the .dot path from the trace name:
// callstack_folded_inst.txt becomes call_graph_inst.dot next to the input.
func AutoOutputPath(input string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name := "call_graph_" + stem + ".dot"
	if i := strings.Index(stem, "folded_"); i >= 0 {
		if typ := stem[i+len("folded_"):]; typ != "" {
			name = "call_graph_" + typ + ".dot"
		}
	}
	return filepath.Join(filepath.Dir(input), name)
}

// Generator drives gprof2dot and dot.
type Generator struct {
	Gprof2dotPath string
	Logger        *logrus.Logger
}

// NewGenerator wraps the given gprof2dot path.
func NewGenerator(gprof2dotPath string, logger *logrus.Logger) *Generator {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Generator{Gprof2dotPath: gprof2dotPath, Logger: logger}
}

func run(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %v (%s)", cmd.Args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// GenerateDot converts a folded trace into a Graphviz .dot file. An empty
// output picks the auto-derived path. Returns the path written.
func (g *Generator) GenerateDot(input, output string) (string, error) {
	if _, err := os.Stat(input); err != nil {
		return "", fmt.Errorf("trace not found: %s", input)
	}
	if output == "" {
		output = AutoOutputPath(input)
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("cannot create output directory: %w", err)
		}
	}

	g.Logger.WithFields(logrus.Fields{"input": input, "output": output}).Debug("Generating call graph")

	var cmd *exec.Cmd
	if strings.HasSuffix(g.Gprof2dotPath, ".py") {
		cmd = exec.Command("python3", g.Gprof2dotPath, "--format=collapse", "--output", output, input)
	} else {
		cmd = exec.Command(g.Gprof2dotPath, "--format=collapse", "--output", output, input)
	}
	if err := run(cmd); err != nil {
		return "", err
	}
	return output, nil
}

// Render converts a .dot file to the given format with Graphviz dot,
// writing alongside the .dot file. Returns the path written.
func (g *Generator) Render(dotPath, format string) (string, error) {
	supported := false
	for _, f := range Formats {
		if f == format {
			supported = true
		}
	}
	if !supported {
		return "", fmt.Errorf("unsupported call graph format %q", format)
	}

	output := strings.TrimSuffix(dotPath, filepath.Ext(dotPath)) + "." + format
	g.Logger.WithFields(logrus.Fields{"dot": dotPath, "format": format}).Debug("Rendering call graph")
	if err := run(exec.Command("dot", "-T"+format, dotPath, "-o", output)); err != nil {
		return "", err
	}
	return output, nil
}
