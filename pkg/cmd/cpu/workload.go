package cpu

import (
	"github.com/intprof/intprof/pkg/host"
)

// startWorkload starts a goroutine that burns CPU under a synthetic
// interpreter runtime, so the profiler has a frame chain to sample. It
// returns the runtime bridge and a stop function.
func startWorkload() (*host.Runtime, func()) {
	const demoFile = "demo.vm"

	codes := host.NewCodeRegistry()
	codes.Register(&host.CodeRecord{ID: 1, Name: "main", Filename: demoFile})
	codes.Register(&host.CodeRecord{ID: 2, Name: "busyLoop", Filename: demoFile})
	codes.Register(&host.CodeRecord{ID: 3, Name: "spin", Filename: demoFile})

	// A fixed chain: spin <- busyLoop <- main. Published once, never
	// mutated, so the sampler can read it from any thread.
	chain := &host.StackFrame{Code: 3, Line: 21, Back: &host.StackFrame{
		Code: 2, Line: 12, Back: &host.StackFrame{Code: 1, Line: 3},
	}}
	state := &host.ThreadState{Frame: chain}

	rt := host.NewRuntime(
		host.WithRegistry(codes),
		host.WithStateFunc(func() *host.ThreadState { return state }),
	)

	done := make(chan struct{})
	go func() {
		// Busy work; the sink keeps the loop from being optimized away.
		x := uint64(1)
		for {
			select {
			case <-done:
				sink = x

				return
			default:
				x = x*6364136223846793005 + 1442695040888963407
			}
		}
	}()

	return rt, func() { close(done) }
}

var sink uint64
