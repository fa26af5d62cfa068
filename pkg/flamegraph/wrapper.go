package flamegraph

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Metadata carries benchmark name and trace type guessed from file paths.
type Metadata struct {
	Benchmark string
	TraceType string
}

// DetectMetadata guesses metadata from the trace path. Simulator runs land
// in out_<benchmark>/ directories and folded traces are named
// callstack_folded_<type>.txt.
func DetectMetadata(path string) Metadata {
	md := Metadata{Benchmark: "unknown", TraceType: "unknown"}

	parent := filepath.Base(filepath.Dir(path))
	if strings.HasPrefix(parent, "out_") {
		if name := strings.TrimPrefix(parent, "out_"); name != "" {
			md.Benchmark = name
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(stem, "_")
	for i, p := range parts {
		if p == "folded" && i+1 < len(parts) {
			md.TraceType = strings.Join(parts[i+1:], "_")
			break
		}
	}
	return md
}

// OutputPath picks the SVG path for a trace: the explicit path when given,
// otherwise flamegraph_<type>.svg next to the input.
func OutputPath(input, output string) string {
	if output != "" {
		return output
	}
	md := DetectMetadata(input)
	return filepath.Join(filepath.Dir(input), "flamegraph_"+md.TraceType+".svg")
}

// FindScript locates flamegraph.pl in conventional places. Returns "" when
// not found.
func FindScript() string {
	if path, err := exec.LookPath("flamegraph.pl"); err == nil {
		return path
	}
	candidates := []string{
		"tools/flamegraph.pl",
		"tools/FlameGraph/flamegraph.pl",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "FlameGraph", "flamegraph.pl"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Generator produces flame graph SVGs from folded traces.
type Generator struct {
	// ScriptPath points at flamegraph.pl. Empty means use the built-in
	// renderer.
	ScriptPath string
	Config     Config
	Logger     *logrus.Logger
}

// NewGenerator builds a generator around the given script path, which may be
// empty to force the built-in renderer.
func NewGenerator(scriptPath string, cfg Config, logger *logrus.Logger) *Generator {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Generator{ScriptPath: scriptPath, Config: cfg, Logger: logger}
}

// Generate renders one folded trace to an SVG, auto-filling title/subtitle
// from path metadata when unset. Returns the output path written.
func (g *Generator) Generate(input, output string) (string, error) {
	if _, err := os.Stat(input); err != nil {
		return "", fmt.Errorf("trace not found: %s", input)
	}

	cfg := g.Config
	if cfg.Title == "" || cfg.Subtitle == "" {
		md := DetectMetadata(input)
		if cfg.Title == "" {
			cfg.Title = md.Benchmark
		}
		if cfg.Subtitle == "" {
			cfg.Subtitle = md.TraceType
		}
	}
	out := OutputPath(input, output)

	g.Logger.WithFields(logrus.Fields{
		"input":  input,
		"output": out,
		"title":  cfg.Title,
	}).Debug("Generating flame graph")

	if g.ScriptPath == "" {
		if err := renderBuiltin(input, out, cfg); err != nil {
			return "", err
		}
		return out, nil
	}

	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("cannot write flame graph: %w", err)
	}
	defer f.Close()

	args := append([]string{g.ScriptPath, input}, cfg.toArgs()...)
	cmd := exec.Command("perl", args...)
	cmd.Stdout = f
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("flamegraph.pl failed: %v (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// GenerateBatch renders many traces, skipping over per-file failures.
// Returns the number of graphs generated.
func (g *Generator) GenerateBatch(inputs []string) int {
	ok := 0
	for i, input := range inputs {
		g.Logger.WithFields(logrus.Fields{
			"file": input,
			"n":    fmt.Sprintf("%d/%d", i+1, len(inputs)),
		}).Info("Processing trace")
		if _, err := g.Generate(input, ""); err != nil {
			g.Logger.WithError(err).Warn("Flame graph generation failed")
			continue
		}
		ok++
	}
	return ok
}
