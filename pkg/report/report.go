package report

import (
	"io"

	"github.com/google/pprof/profile"
	"github.com/pkg/errors"

	"github.com/intprof/intprof/pkg/profiler"
)

// Builder assembles a pprof profile proto from a materialized CPU profile.
// Functions and locations are interned so repeated frames share one table
// entry. A Builder is single-use.
type Builder struct {
	sampleType string
	sampleUnit string

	prof  *profile.Profile
	funcs map[funcKey]*profile.Function
	locs  map[locKey]*profile.Location
}

type funcKey struct {
	name     string
	filename string
}

type locKey struct {
	funcID uint64
	line   int32
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		sampleType: "cpu",
		sampleUnit: "nanoseconds",
		funcs:      make(map[funcKey]*profile.Function),
		locs:       make(map[locKey]*profile.Location),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build populates a profile proto from the resolved traces. Every sample
// carries two values: the observation count and the count scaled by the
// sampling period.
func (b *Builder) Build(p *profiler.Profile) *profile.Profile {
	b.prof = &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "samples", Unit: "count"},
			{Type: b.sampleType, Unit: b.sampleUnit},
		},
		PeriodType:    &profile.ValueType{Type: b.sampleType, Unit: b.sampleUnit},
		Period:        p.Period.Nanoseconds(),
		DurationNanos: p.Duration.Nanoseconds(),
	}

	for _, s := range p.Samples {
		locs := make([]*profile.Location, 0, len(s.Frames))
		for _, f := range s.Frames {
			locs = append(locs, b.location(f))
		}
		b.prof.Sample = append(b.prof.Sample, &profile.Sample{
			Location: locs,
			Value:    []int64{int64(s.Count), int64(s.Count) * p.Period.Nanoseconds()},
		})
	}

	return b.prof
}

// WriteReport builds the profile and writes it gzip-compressed to w.
func (b *Builder) WriteReport(w io.Writer, p *profiler.Profile) error {
	prof := b.Build(p)
	if err := prof.CheckValid(); err != nil {
		return errors.Wrap(err, "built an invalid profile")
	}

	return errors.Wrap(prof.Write(w), "failed to write the profile")
}

func (b *Builder) function(name, filename string) *profile.Function {
	key := funcKey{name: name, filename: filename}
	if fn, ok := b.funcs[key]; ok {
		return fn
	}

	// Function ids in the proto must not be zero.
	fn := &profile.Function{
		ID:       uint64(len(b.funcs) + 1),
		Name:     name,
		Filename: filename,
	}
	b.funcs[key] = fn
	b.prof.Function = append(b.prof.Function, fn)

	return fn
}

func (b *Builder) location(f profiler.ResolvedFrame) *profile.Location {
	fn := b.function(f.Name, f.Filename)
	key := locKey{funcID: fn.ID, line: f.Line}
	if loc, ok := b.locs[key]; ok {
		return loc
	}

	loc := &profile.Location{
		ID: uint64(len(b.locs) + 1),
		Line: []profile.Line{
			{Function: fn, Line: int64(f.Line)},
		},
	}
	b.locs[key] = loc
	b.prof.Location = append(b.prof.Location, loc)

	return loc
}
