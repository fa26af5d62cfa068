// Package pprofexport converts folded callstack samples into pprof
// profile.proto files so simulator traces can be inspected with
// `go tool pprof`.
package pprofexport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/pprof/profile"

	"github.com/foldprof/foldprof/pkg/trace"
)

// Options configures the exported profile.
type Options struct {
	// EventName labels the count dimension, e.g. "instructions" or
	// "cycles".
	EventName string
	// ClkMHz, when positive, adds a nanosecond time dimension treating
	// each count as one cycle.
	ClkMHz float64
}

// DefaultOptions returns sensible export defaults.
func DefaultOptions() Options {
	return Options{EventName: "samples"}
}

// Convert builds a pprof profile from parsed samples. Locations are emitted
// leaf-first as the pprof format requires.
func Convert(samples []trace.Sample, opts Options) (*profile.Profile, error) {
	if len(samples) == 0 {
		return nil, trace.ErrEmptyTrace
	}
	if opts.EventName == "" {
		opts.EventName = "samples"
	}
	useTime := opts.ClkMHz > 0

	p := &profile.Profile{}
	m := &profile.Mapping{ID: 1, HasFunctions: true}
	p.Mapping = []*profile.Mapping{m}
	p.SampleType = []*profile.ValueType{
		{Type: opts.EventName, Unit: "count"},
	}
	if useTime {
		p.SampleType = append(p.SampleType, &profile.ValueType{Type: "time", Unit: "nanoseconds"})
	}

	locations := make(map[string]*profile.Location)
	locationFor := func(name string) *profile.Location {
		if loc, ok := locations[name]; ok {
			return loc
		}
		fn := &profile.Function{
			ID:   uint64(len(p.Function) + 1),
			Name: name,
		}
		p.Function = append(p.Function, fn)

		loc := &profile.Location{
			ID:      uint64(len(p.Location) + 1),
			Mapping: m,
			Line:    []profile.Line{{Function: fn}},
		}
		p.Location = append(p.Location, loc)
		locations[name] = loc
		return loc
	}

	for i := range samples {
		s := &samples[i]
		sample := &profile.Sample{
			Value: []int64{s.Count},
		}
		if useTime {
			ns := float64(s.Count) / (opts.ClkMHz * 1e6) * 1e9
			sample.Value = append(sample.Value, int64(ns))
		}
		for j := len(s.Frames) - 1; j >= 0; j-- {
			sample.Location = append(sample.Location, locationFor(s.Frames[j]))
		}
		p.Sample = append(p.Sample, sample)
	}

	if err := p.CheckValid(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}

// Write encodes the profile, gzip-compressed.
func Write(w io.Writer, p *profile.Profile) error {
	return p.Write(w)
}

// WriteFile exports parsed samples to a pprof file, creating parent
// directories.
func WriteFile(path string, samples []trace.Sample, opts Options) error {
	p, err := Convert(samples, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot write profile: %w", err)
	}
	defer f.Close()
	return Write(f, p)
}
