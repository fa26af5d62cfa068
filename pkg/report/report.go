// Package report summarizes simulator .prof output files: per-benchmark
// cycle/instruction/CPI comparison and instruction-mix breakdowns.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Benchmark is one .prof file's summary numbers.
type Benchmark struct {
	Name         string  `json:"name"`
	Instructions int64   `json:"instructions"`
	Cycles       int64   `json:"cycles"`
	CPI          float64 `json:"cpi"`
}

var (
	cyclesRe = regexp.MustCompile(`Total Cycles:\s+(\d+)`)
	instrsRe = regexp.MustCompile(`Total Instructions:\s+(\d+)`)
	cpiRe    = regexp.MustCompile(`Average CPI:\s+([\d.]+)`)
)

// parseProf extracts the summary block from .prof file content. Returns
// false when any of the three fields is missing.
func parseProf(name, content string) (Benchmark, bool) {
	cm := cyclesRe.FindStringSubmatch(content)
	im := instrsRe.FindStringSubmatch(content)
	pm := cpiRe.FindStringSubmatch(content)
	if cm == nil || im == nil || pm == nil {
		return Benchmark{}, false
	}
	cycles, err := strconv.ParseInt(cm[1], 10, 64)
	if err != nil {
		return Benchmark{}, false
	}
	instrs, err := strconv.ParseInt(im[1], 10, 64)
	if err != nil {
		return Benchmark{}, false
	}
	cpi, err := strconv.ParseFloat(pm[1], 64)
	if err != nil {
		return Benchmark{}, false
	}
	return Benchmark{
		Name:         strings.TrimSuffix(name, ".prof"),
		Instructions: instrs,
		Cycles:       cycles,
		CPI:          cpi,
	}, true
}

// ScanDir collects benchmark summaries from every .prof (or extensionless)
// file in dir. Files without a summary block are skipped with a debug log.
func ScanDir(dir string, logger *logrus.Logger) ([]Benchmark, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read report directory %q: %w", dir, err)
	}

	var out []Benchmark
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".prof") && strings.Contains(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.WithError(err).WithField("file", name).Warn("Cannot read .prof file")
			continue
		}
		b, ok := parseProf(name, string(data))
		if !ok {
			logger.WithField("file", name).Debug("No summary block, skipping")
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// SaveJSON writes the benchmark summaries as indented JSON.
func SaveJSON(path string, benchmarks []Benchmark) error {
	data, err := json.MarshalIndent(benchmarks, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write report: %w", err)
	}
	return nil
}
