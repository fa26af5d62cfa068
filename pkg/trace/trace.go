// Package trace reads folded callstack traces: one sample per line in the
// form "frame1;frame2;...;frameN COUNT", as emitted by the simulator's
// callstack profiler.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Sample is one parsed trace line: a call stack in root → leaf order and the
// number of events sampled on that stack.
type Sample struct {
	Frames []string
	Count  int64
}

// Leaf returns the innermost frame of the sample.
func (s *Sample) Leaf() string {
	return s.Frames[len(s.Frames)-1]
}

// Counts holds the per-symbol aggregation for one trace.
type Counts struct {
	// Self counts events where the symbol is the leaf frame.
	Self map[string]int64
	// Total counts events where the symbol appears anywhere in the stack.
	// Recursive frames contribute once per stack position, so recursion
	// inflates the total by one count per level.
	Total map[string]int64
	// GrandTotal is the sum of all sample counts in the trace.
	GrandTotal int64
}

// ErrEmptyTrace is returned when a trace contains no positive-count samples.
var ErrEmptyTrace = errors.New("trace contains no samples")

// MalformedLineError reports a trace line that could not be parsed. A
// malformed line indicates trace corruption, so it aborts the whole trace
// rather than being skipped.
type MalformedLineError struct {
	Path   string // trace file, "" when reading from a stream
	LineNo int    // 1-based, 0 when parsing a bare line
	Line   string // the raw offending text
	Reason string
}

func (e *MalformedLineError) Error() string {
	where := ""
	if e.Path != "" {
		where = e.Path + ":"
	}
	if e.LineNo > 0 {
		where += fmt.Sprintf("%d: ", e.LineNo)
	} else if where != "" {
		where += " "
	}
	return fmt.Sprintf("%smalformed line (%s): %q", where, e.Reason, e.Line)
}

// ParseLine parses one folded-stack line. A line that is empty after
// trimming yields (nil, nil) and should be skipped. Frame names are opaque;
// empty frames produced by stray semicolons are dropped.
func ParseLine(line string) (*Sample, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return nil, nil
	}

	// The count is the token after the last run of whitespace.
	cut := strings.LastIndexFunc(s, unicode.IsSpace)
	if cut < 0 {
		return nil, &MalformedLineError{Line: line, Reason: "missing count"}
	}
	countStr := s[cut+1:]
	stackStr := strings.TrimRightFunc(s[:cut], unicode.IsSpace)

	count, err := strconv.ParseInt(countStr, 10, 64)
	if err != nil {
		return nil, &MalformedLineError{Line: line, Reason: fmt.Sprintf("bad count %q", countStr)}
	}

	var frames []string
	for _, f := range strings.Split(stackStr, ";") {
		if f != "" {
			frames = append(frames, f)
		}
	}
	if len(frames) == 0 {
		return nil, &MalformedLineError{Line: line, Reason: "no frames"}
	}

	return &Sample{Frames: frames, Count: count}, nil
}

// ReadSamples parses every line of a folded trace. Blank lines are skipped;
// the first malformed line aborts the read.
func ReadSamples(r io.Reader) ([]Sample, error) {
	var samples []Sample

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		sample, err := ParseLine(scanner.Text())
		if err != nil {
			var merr *MalformedLineError
			if errors.As(err, &merr) {
				merr.LineNo = lineNo
			}
			return nil, err
		}
		if sample == nil {
			continue
		}
		samples = append(samples, *sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read trace: %w", err)
	}
	return samples, nil
}

// AccumulateSamples aggregates parsed samples into per-symbol counts.
// Returns ErrEmptyTrace if the grand total is not positive.
func AccumulateSamples(samples []Sample) (*Counts, error) {
	c := &Counts{
		Self:  make(map[string]int64),
		Total: make(map[string]int64),
	}
	for i := range samples {
		s := &samples[i]
		c.GrandTotal += s.Count
		c.Self[s.Leaf()] += s.Count
		for _, frame := range s.Frames {
			c.Total[frame] += s.Count
		}
	}
	if c.GrandTotal <= 0 {
		return nil, ErrEmptyTrace
	}
	return c, nil
}

// Accumulate reads a folded trace and aggregates it in one pass.
func Accumulate(r io.Reader) (*Counts, error) {
	samples, err := ReadSamples(r)
	if err != nil {
		return nil, err
	}
	return AccumulateSamples(samples)
}

// ReadFile parses a folded trace file into samples.
func ReadFile(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("trace not found: %s", path)
		}
		return nil, fmt.Errorf("cannot open trace %q: %w", path, err)
	}
	defer f.Close()

	samples, err := ReadSamples(f)
	if err != nil {
		var merr *MalformedLineError
		if errors.As(err, &merr) {
			merr.Path = path
		}
		return nil, err
	}
	return samples, nil
}

// AccumulateFile reads and aggregates a folded trace file.
func AccumulateFile(path string) (*Counts, error) {
	samples, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	counts, err := AccumulateSamples(samples)
	if err != nil {
		if errors.Is(err, ErrEmptyTrace) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return counts, nil
}
