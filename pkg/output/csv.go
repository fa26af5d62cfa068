package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/foldprof/foldprof/pkg/flat"
)

var csvHeader = []string{
	"symbol", "percent", "cum_percent",
	"self_count", "total_count",
	"self_time_s", "total_time_s",
}

// WriteCSV writes one record per flat row. Time cells are blank when the
// rows carry no time information.
func WriteCSV(w io.Writer, rows []flat.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		selfTime, totalTime := "", ""
		if r.HasTime {
			selfTime = strconv.FormatFloat(r.SelfTime, 'g', 12, 64)
			totalTime = strconv.FormatFloat(r.TotalTime, 'g', 12, 64)
		}
		rec := []string{
			r.Symbol,
			fmt.Sprintf("%.6f", r.Percent),
			fmt.Sprintf("%.6f", r.CumPercent),
			strconv.FormatInt(r.SelfCount, 10),
			strconv.FormatInt(r.TotalCount, 10),
			selfTime,
			totalTime,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the flat rows to path, creating parent directories.
func WriteCSVFile(path string, rows []flat.Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot write CSV: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, rows)
}
