package host

import "sync"

// Runtime is the bridge to the embedded managed runtime: the global
// serialization lock, the code record registry and the current-thread state
// getter. A language binding populates it once at startup; the profiler only
// consumes it.
type Runtime struct {
	mu    sync.Mutex
	codes *CodeRegistry
	state StateFunc
}

type RuntimeOption func(*Runtime)

func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		codes: NewCodeRegistry(),
	}
	for _, opt := range opts {
		opt(rt)
	}

	return rt
}

func WithStateFunc(fn StateFunc) RuntimeOption {
	return func(rt *Runtime) {
		rt.state = fn
	}
}

func WithRegistry(codes *CodeRegistry) RuntimeOption {
	return func(rt *Runtime) {
		rt.codes = codes
	}
}

// Lock acquires the host's global serialization lock. Code records can only
// be registered, resolved or destroyed while it is held.
func (rt *Runtime) Lock() {
	rt.mu.Lock()
}

// Unlock releases the global serialization lock.
func (rt *Runtime) Unlock() {
	rt.mu.Unlock()
}

// Codes returns the code record registry. Callers must hold the runtime lock
// while using it.
func (rt *Runtime) Codes() *CodeRegistry {
	return rt.codes
}

// CurrentThreadState returns the calling thread's state, or nil when the
// thread has none.
func (rt *Runtime) CurrentThreadState() *ThreadState {
	if rt.state == nil {
		return nil
	}

	return rt.state()
}
