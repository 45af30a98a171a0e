package profiler

import (
	"time"

	log "github.com/rs/zerolog"

	"github.com/intprof/intprof/pkg/clock"
	"github.com/intprof/intprof/pkg/host"
)

type Option func(*CPUProfiler)

// WithDuration sets how long the session samples for.
func WithDuration(d time.Duration) Option {
	return func(p *CPUProfiler) {
		p.duration = d
	}
}

// WithPeriod sets the sampling period in consumed CPU time.
func WithPeriod(period time.Duration) Option {
	return func(p *CPUProfiler) {
		p.period = period
	}
}

// WithRuntime sets the host runtime bridge the session profiles.
func WithRuntime(rt *host.Runtime) Option {
	return func(p *CPUProfiler) {
		p.rt = rt
	}
}

// WithDriver overrides the signal driver. Tests substitute a synthetic
// ticker here.
func WithDriver(d Driver) Option {
	return func(p *CPUProfiler) {
		p.driver = d
	}
}

// WithClock overrides the session clock.
func WithClock(c clock.Clock) Option {
	return func(p *CPUProfiler) {
		p.clk = c
	}
}

// WithThreadStateFunc overrides the runtime's current-thread state getter.
func WithThreadStateFunc(fn host.StateFunc) Option {
	return func(p *CPUProfiler) {
		p.state = fn
	}
}

func WithLogger(logger log.Logger) Option {
	return func(p *CPUProfiler) {
		p.logger = logger
	}
}
