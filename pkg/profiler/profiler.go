package profiler

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"

	"github.com/intprof/intprof/pkg/clock"
	"github.com/intprof/intprof/pkg/host"
	"github.com/intprof/intprof/pkg/sample"
)

const (
	// DefaultPeriod is the default sampling period in consumed CPU time.
	DefaultPeriod = 10 * time.Millisecond

	// flushInterval is how often the session drains the fixed multiset.
	flushInterval = 100 * time.Millisecond

	// stopMarginLaps is the number of flush laps kept in hand before the
	// deadline so the session never overruns it.
	stopMarginLaps = 2
)

// The fixed trace storage and the overflow counter live for the process
// lifetime: a timer delivery from a finished session may still be running
// when the session object is gone, so the storage is allocated once and
// never freed. It is cleared at the start of each session instead.
var (
	fixedTracesOnce   sync.Once
	fixedTraces       *sample.AsyncSafeTraceMultiset
	unknownStackCount atomic.Int64
)

// defaultDriver is shared by every profiler so the process keeps a single
// signal delivery loop.
var defaultDriver = NewSignalDriver()

// ResolvedFrame is a sampled frame with its code id resolved to a function
// identity.
type ResolvedFrame struct {
	Name     string
	Filename string
	Line     int32
}

func (f ResolvedFrame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.Name, f.Filename, f.Line)
}

// Sample is a resolved call trace, frames ordered leaf to root, and the
// number of times it was observed.
type Sample struct {
	Frames []ResolvedFrame
	Count  uint64
}

// Profile is the materialized result of one session. Samples are ordered by
// descending count, ties broken by trace identity, so equal data always
// materializes identically.
type Profile struct {
	Samples  []Sample
	Duration time.Duration
	Period   time.Duration
}

// Traces returns the profile as a mapping from the readable trace key,
// frames formatted "name (filename:line)" and joined by ";", to the
// occurrence count.
func (p *Profile) Traces() map[string]uint64 {
	out := make(map[string]uint64, len(p.Samples))
	for _, s := range p.Samples {
		var b strings.Builder
		for i, f := range s.Frames {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(f.String())
		}
		out[b.String()] += s.Count
	}

	return out
}

// CPUProfiler collects one CPU profile per Collect call by arming a CPU-time
// interval timer and recording the interrupted thread's call stack on every
// expiration. Only one session may be active in the process at a time.
type CPUProfiler struct {
	duration time.Duration
	period   time.Duration

	rt     *host.Runtime
	driver Driver
	clk    clock.Clock
	state  host.StateFunc
	logger log.Logger

	aggregated *sample.TraceMultiset
	hook       *codeDeathHook
}

func NewCPUProfiler(opts ...Option) *CPUProfiler {
	p := &CPUProfiler{
		period: DefaultPeriod,
		driver: defaultDriver,
		clk:    clock.System(),
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ProfileCPU profiles the runtime for the given duration, sampling every
// period of consumed CPU time, and returns the aggregated profile.
func ProfileCPU(ctx context.Context, rt *host.Runtime, duration, period time.Duration) (*Profile, error) {
	p := NewCPUProfiler(
		WithRuntime(rt),
		WithDuration(duration),
		WithPeriod(period),
	)

	return p.Collect(ctx)
}

// Collect runs one profiling session: reset, arm, periodic harvest, stop,
// settle, final harvest, materialize. The host lock is held for the reset
// and materialization phases only and released while the sampled threads
// run. A zero duration returns an empty profile without arming the timer.
func (p *CPUProfiler) Collect(ctx context.Context) (*Profile, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.duration == 0 {
		return &Profile{Period: p.period}, nil
	}

	p.rt.Lock()
	if err := p.reset(); err != nil {
		p.rt.Unlock()
		p.logger.Error().Err(err).Msg("profiling session aborted")

		return nil, err
	}
	p.hook.install()
	if err := p.driver.SetInterval(p.period); err != nil {
		p.hook.uninstall()
		p.rt.Unlock()
		err = errors.Wrap(err, "failed to arm the profiling interval timer")
		p.logger.Error().Err(err).Msg("profiling session aborted")

		return nil, err
	}
	p.logger.Debug().Dur("duration", p.duration).Dur("period", p.period).Msg("profiling session started")
	p.rt.Unlock()

	// Sleep until the deadline, waking periodically to drain the fixed
	// table, with a margin of laps so the finish line is never overrun.
	deadline := p.clk.Now().Add(p.duration)
	cancelled := false
	for !cancelled && !p.almostThere(deadline) {
		p.clk.SleepFor(flushInterval)
		p.flush()
		cancelled = ctx.Err() != nil
	}
	if !cancelled {
		p.clk.SleepUntil(deadline)
	}

	p.stop()

	// Let timer deliveries still in flight land before the final drain.
	p.clk.SleepFor(flushInterval)
	p.flush()

	p.rt.Lock()
	defer p.rt.Unlock()
	p.hook.uninstall()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "profiling session interrupted")
	}

	return p.materialize(), nil
}

func (p *CPUProfiler) validate() error {
	if p.duration < 0 {
		return ErrDurationNegative
	}
	if p.period <= 0 {
		return ErrPeriodNotPositive
	}
	if p.rt == nil {
		return ErrRuntimeNil
	}
	if p.driver == nil {
		return ErrDriverNil
	}

	return nil
}

// reset prepares the process-lifetime storage for a new session and
// (re)installs the signal action. Must be called with the host lock held.
func (p *CPUProfiler) reset() error {
	fixedTracesOnce.Do(func() {
		fixedTraces = new(sample.AsyncSafeTraceMultiset)
	})
	fixedTraces.Reset()
	unknownStackCount.Store(0)

	p.aggregated = sample.NewTraceMultiset()
	p.hook = newCodeDeathHook(p.rt.Codes())
	p.hook.reset()
	if p.state == nil {
		p.state = p.rt.CurrentThreadState
	}

	if err := p.driver.SetAction(p.sampleStack); err != nil {
		return errors.Wrap(err, "failed to install the profiling signal action")
	}

	return nil
}

// almostThere reports whether another flush lap would run too close to the
// deadline.
func (p *CPUProfiler) almostThere(deadline time.Time) bool {
	return deadline.Before(p.clk.Now().Add(stopMarginLaps * flushInterval))
}

// flush drains the fixed multiset into the session aggregate.
func (p *CPUProfiler) flush() int {
	moved := sample.HarvestSamples(fixedTraces, p.aggregated)
	if moved > 0 {
		p.logger.Debug().Int("traces", moved).Msg("harvested samples")
	}

	return moved
}

// stop disarms the timer and then drops any deliveries still in flight.
func (p *CPUProfiler) stop() {
	if err := p.driver.SetInterval(0); err != nil {
		p.logger.Warn().Err(err).Msg("failed to disarm the profiling timer")
	}
	if err := p.driver.Ignore(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to ignore the profiling signal")
	}
}

// materialize resolves every sampled code id to a function identity and
// merges traces that resolve to the same frames. Must be called with the
// host lock held so no record can be destroyed mid-resolution.
func (p *CPUProfiler) materialize() *Profile {
	if n := unknownStackCount.Load(); n > 0 {
		p.logger.Warn().Int64("samples", n).Msg("sample storage overflowed during the session")
		p.aggregated.Add([]sample.Frame{{Line: sample.LineUnknown}}, n)
	}

	merged := make(map[string]*Sample, p.aggregated.Len())
	p.aggregated.Range(func(frames []sample.Frame, count uint64) bool {
		resolved := make([]ResolvedFrame, len(frames))
		for i, f := range frames {
			resolved[i] = p.resolveFrame(f)
		}
		key := traceKey(resolved)
		if s, ok := merged[key]; ok {
			s.Count += count
		} else {
			merged[key] = &Sample{Frames: resolved, Count: count}
		}

		return true
	})

	prof := &Profile{
		Samples:  make([]Sample, 0, len(merged)),
		Duration: p.duration,
		Period:   p.period,
	}
	for _, s := range merged {
		prof.Samples = append(prof.Samples, *s)
	}
	sort.Slice(prof.Samples, func(i, j int) bool {
		if prof.Samples[i].Count != prof.Samples[j].Count {
			return prof.Samples[i].Count > prof.Samples[j].Count
		}

		return traceKey(prof.Samples[i].Frames) < traceKey(prof.Samples[j].Frames)
	})

	return prof
}

// resolveFrame maps a sampled frame to its function identity. A record
// destroyed during the session resolves from the death hook snapshot; a
// record not snapshotted is still live, because destruction is serialized by
// the host lock we are holding.
func (p *CPUProfiler) resolveFrame(f sample.Frame) ResolvedFrame {
	if f.Code == 0 {
		return ResolvedFrame{Name: errorFrameName(f.Line), Line: f.Line}
	}
	if loc, ok := p.hook.resolve(f.Code); ok {
		return ResolvedFrame{Name: loc.Name, Filename: loc.Filename, Line: f.Line}
	}
	loc, ok := p.rt.Codes().FuncLoc(f.Code)
	if !ok {
		// Neither live nor snapshotted: the record died before the hook was
		// installed.
		return ResolvedFrame{Name: "unknown", Filename: "unknown", Line: f.Line}
	}

	return ResolvedFrame{Name: loc.Name, Filename: loc.Filename, Line: f.Line}
}

// errorFrameName names the synthetic frame carried by a null code id.
func errorFrameName(line int32) string {
	switch line {
	case sample.LineNoHostState:
		return "[Unknown - No Host State]"
	default:
		return "[Unknown]"
	}
}

func traceKey(frames []ResolvedFrame) string {
	var b strings.Builder
	for _, f := range frames {
		b.WriteString(f.Name)
		b.WriteByte(0)
		b.WriteString(f.Filename)
		b.WriteByte(0)
		b.WriteString(strconv.FormatInt(int64(f.Line), 10))
		b.WriteByte(';')
	}

	return b.String()
}
