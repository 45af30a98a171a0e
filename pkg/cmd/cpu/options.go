package cpu

import (
	"time"

	"github.com/intprof/intprof/internal/settings"
	"github.com/intprof/intprof/pkg/cmd/options"
	"github.com/intprof/intprof/pkg/profiler"
)

type Options struct {
	duration time.Duration
	period   time.Duration
	output   string
	top      int
	status   bool

	*options.CommonOptions
}

type Option func(o *Options)

func NewOptions(opts ...Option) *Options {
	o := &Options{
		duration: 10 * time.Second,
		period:   profiler.DefaultPeriod,
		output:   settings.DefaultProfileFile,
	}
	o.CommonOptions = new(options.CommonOptions)

	for _, f := range opts {
		f(o)
	}

	return o
}

func WithCommonOptions(co *options.CommonOptions) Option {
	return func(o *Options) {
		o.CommonOptions = co
	}
}

func WithDuration(d time.Duration) Option {
	return func(o *Options) {
		o.duration = d
	}
}

func WithPeriod(p time.Duration) Option {
	return func(o *Options) {
		o.period = p
	}
}

func WithOutput(path string) Option {
	return func(o *Options) {
		o.output = path
	}
}
