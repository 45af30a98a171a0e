package profiler

import (
	"github.com/pkg/errors"
)

var (
	ErrDurationNegative  = errors.New("profiling duration must not be negative")
	ErrPeriodNotPositive = errors.New("sampling period must be positive")
	ErrRuntimeNil        = errors.New("host runtime is nil")
	ErrDriverNil         = errors.New("signal driver is nil")
)
