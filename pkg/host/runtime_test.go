package host_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intprof/intprof/pkg/host"
)

func TestRuntimeDefaults(t *testing.T) {
	rt := host.NewRuntime()

	require.NotNil(t, rt.Codes())
	require.Nil(t, rt.CurrentThreadState())
}

func TestRuntimeStateFunc(t *testing.T) {
	state := &host.ThreadState{
		Frame: &host.StackFrame{Code: 1, Line: 3},
	}
	rt := host.NewRuntime(
		host.WithStateFunc(func() *host.ThreadState { return state }),
	)

	require.Same(t, state, rt.CurrentThreadState())
}

func TestRuntimeWithRegistry(t *testing.T) {
	codes := host.NewCodeRegistry()
	codes.Register(&host.CodeRecord{ID: 5, Name: "f", Filename: "f.vm"})

	rt := host.NewRuntime(host.WithRegistry(codes))

	loc, ok := rt.Codes().FuncLoc(5)
	require.True(t, ok)
	require.Equal(t, "f", loc.Name)
}

func TestRuntimeLockIsExclusive(t *testing.T) {
	rt := host.NewRuntime()

	rt.Lock()
	acquired := make(chan struct{})
	go func() {
		rt.Lock()
		close(acquired)
		rt.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("lock acquired while held")
	default:
	}

	rt.Unlock()
	<-acquired
}
