package sample

import "github.com/intprof/intprof/pkg/host"

const (
	// MaxFramesToCapture is the maximum number of frames recorded from a
	// sampled stack; deeper chains keep their innermost frames and lose the
	// frames nearest the root.
	MaxFramesToCapture = 128

	// MaxStackTraces is the number of slots in the fixed trace multiset.
	MaxStackTraces = 2048
)

// Line sentinels carried by frames with a null code id.
const (
	LineUnknown     int32 = 0
	LineNoHostState int32 = -1
)

// Frame is one sampled stack frame: the code record that was executing and
// the line within it. Line doubles as the error sentinel when Code is null.
type Frame struct {
	Code host.CodeID
	Line int32
}
