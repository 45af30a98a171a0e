package host

// CodeID identifies a code record of the embedded runtime. It is
// pointer-sized and assigned by the host; zero is the null id. The host may
// reuse an id after the record it identified has been destroyed.
type CodeID uintptr

// FuncLoc is the identifying metadata of a code record.
type FuncLoc struct {
	Name     string
	Filename string
}

// StackFrame is one link of a thread's frame chain, innermost first.
//
// The sampler reads Code, Line and Back without synchronization and without
// touching reference counts, so the host must only publish fully initialized
// links and must not mutate a published link other than by replacing the
// thread state's head pointer.
type StackFrame struct {
	Code CodeID
	Line int32
	Back *StackFrame
}

// ThreadState is the per-thread execution state of the embedded runtime.
type ThreadState struct {
	Frame *StackFrame
}

// StateFunc returns the calling thread's state, or nil when the thread has
// no host state. It must be callable from any thread.
type StateFunc func() *ThreadState
