package sample

import (
	"runtime"
	"sync/atomic"
)

// traceCountLocked marks a slot whose frame buffer is in transition and must
// not be read.
const traceCountLocked = -1

type traceSlot struct {
	numFrames int32
	frames    [MaxFramesToCapture]Frame

	// count is 0 while the slot is unused, traceCountLocked while the frame
	// buffer is in transition, and the number of aggregated samples once the
	// slot is published.
	count atomic.Int64

	// activeUpdates is the number of writers currently inspecting the slot.
	activeUpdates atomic.Int32
}

// AsyncSafeTraceMultiset is a fixed-capacity multiset of call traces,
// populated by the sampler and drained by the harvester.
//
// Add may run on any interrupted thread concurrently with a single drainer
// calling Extract. Coordination uses a sentinel count value to reserve
// entries: Add reserves the first free probe slot, stores the frames, then
// publishes the entry; Extract reserves a published entry, copies it out,
// waits until no writer is still inspecting it, and only then releases the
// slot for reuse. Multiple Extract calls must not run concurrently.
type AsyncSafeTraceMultiset struct {
	traces [MaxStackTraces]traceSlot
}

// Reset clears every slot. It must not run concurrently with Add or Extract.
func (m *AsyncSafeTraceMultiset) Reset() {
	for i := range m.traces {
		slot := &m.traces[i]
		slot.numFrames = 0
		slot.count.Store(0)
		slot.activeUpdates.Store(0)
	}
}

// MaxEntries returns the number of distinct traces the set can hold.
func (m *AsyncSafeTraceMultiset) MaxEntries() int {
	return MaxStackTraces
}

// Add records one occurrence of trace, aggregating onto an equal trace that
// is already present. It returns false when the table is full or every probe
// slot is contended. The path performs no allocation and takes no locks, so
// it is safe to run while the interrupted thread holds arbitrary runtime
// state.
func (m *AsyncSafeTraceMultiset) Add(trace []Frame) bool {
	h := Hash(trace)
	for i := uint64(0); i < MaxStackTraces; i++ {
		slot := &m.traces[(h+i)%MaxStackTraces]
		slot.activeUpdates.Add(1)
		count := slot.count.Load()
		switch count {
		case 0:
			if slot.count.CompareAndSwap(0, traceCountLocked) {
				// The slot is reserved: Extract cannot touch it now, so the
				// active-updates guard can be dropped before the copy.
				slot.activeUpdates.Add(-1)
				copy(slot.frames[:len(trace)], trace)
				slot.numFrames = int32(len(trace))
				slot.count.Store(1)

				return true
			}
		case traceCountLocked:
			// Another thread is installing its trace here. Move on; worst
			// case the same trace ends up in more than one slot, and the
			// aggregate multiset reconciles the duplicates.
		default:
			if int(slot.numFrames) == len(trace) && Equal(trace, slot.frames[:slot.numFrames]) {
				// Bump with a compare-and-swap so a concurrent Extract that
				// locked the slot is never overwritten. Reload the count in
				// case it changed while the frames were being compared.
				count = slot.count.Load()
				if count != traceCountLocked && slot.count.CompareAndSwap(count, count+1) {
					slot.activeUpdates.Add(-1)

					return true
				}
			}
		}
		slot.activeUpdates.Add(-1)
	}

	return false
}

// Extract copies slot i into out and returns the number of frames copied and
// the occurrence count, leaving the slot free for reuse. It returns (0, 0)
// when the slot holds no published entry. Extract is safe to run
// concurrently with Add; only one drainer may run at a time.
func (m *AsyncSafeTraceMultiset) Extract(i int, out []Frame) (int, int64) {
	if i < 0 || i >= MaxStackTraces {
		return 0, 0
	}
	slot := &m.traces[i]
	if slot.count.Load() <= 0 {
		// Unused, or in the process of being updated; skip for now.
		return 0, 0
	}
	n := int(slot.numFrames)
	if n > len(out) {
		n = len(out)
	}

	c := slot.count.Swap(traceCountLocked)
	copy(out[:n], slot.frames[:n])

	// Wait until no writer is mid-inspection of this slot before the frame
	// buffer is released. Writer critical sections are constant work, so the
	// wait is bounded in practice.
	for slot.activeUpdates.Load() != 0 {
		runtime.Gosched()
	}

	slot.count.Store(0)

	return n, c
}
