package profiler

import "github.com/intprof/intprof/pkg/sample"

// sampleStack is the sampler body run on every profiling timer expiration.
// It walks the interrupted thread's frame chain reading fields only, never
// touching reference counts, and records the trace in the fixed multiset.
// The path allocates nothing and takes no locks: the interrupted thread may
// hold arbitrary runtime state, including allocator locks.
func (p *CPUProfiler) sampleStack() {
	var frames [sample.MaxFramesToCapture]sample.Frame

	n := 0
	ts := p.state()
	if ts == nil {
		frames[0] = sample.Frame{Line: sample.LineNoHostState}
		n = 1
	} else {
		for f := ts.Frame; f != nil && n < len(frames); f = f.Back {
			frames[n] = sample.Frame{Code: f.Code, Line: f.Line}
			n++
		}
	}

	if !fixedTraces.Add(frames[:n]) {
		unknownStackCount.Add(1)
	}
}
