package profiler

import "time"

// Driver owns the profiling signal disposition and the CPU-time interval
// timer for the lifetime of a session.
type Driver interface {
	// SetAction routes every timer expiration to fn.
	SetAction(fn func()) error

	// SetInterval arms the periodic CPU-time timer; zero disarms it.
	SetInterval(period time.Duration) error

	// Ignore keeps the timer disarmed state but additionally drops any
	// deliveries still in flight.
	Ignore() error
}
