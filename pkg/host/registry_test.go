package host_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intprof/intprof/pkg/host"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	codes := host.NewCodeRegistry()
	codes.Register(&host.CodeRecord{ID: 1, Name: "f", Filename: "f.vm"})

	loc, ok := codes.FuncLoc(1)
	require.True(t, ok)
	require.Equal(t, host.FuncLoc{Name: "f", Filename: "f.vm"}, loc)

	_, ok = codes.FuncLoc(2)
	require.False(t, ok)
}

func TestRegistryDestroyRemovesRecord(t *testing.T) {
	codes := host.NewCodeRegistry()
	codes.Register(&host.CodeRecord{ID: 1, Name: "f", Filename: "f.vm"})
	require.Equal(t, 1, codes.Len())

	codes.Destroy(1)

	_, ok := codes.FuncLoc(1)
	require.False(t, ok)
	require.Zero(t, codes.Len())
}

func TestRegistryDestroyUnknownIsNoop(t *testing.T) {
	codes := host.NewCodeRegistry()
	require.NotPanics(t, func() {
		codes.Destroy(99)
	})
}

func TestRegistryReuseID(t *testing.T) {
	codes := host.NewCodeRegistry()
	codes.Register(&host.CodeRecord{ID: 1, Name: "first", Filename: "a.vm"})
	codes.Destroy(1)
	codes.Register(&host.CodeRecord{ID: 1, Name: "second", Filename: "b.vm"})

	loc, ok := codes.FuncLoc(1)
	require.True(t, ok)
	require.Equal(t, "second", loc.Name)
}

func TestRegistrySwapDestroyWrapsChain(t *testing.T) {
	codes := host.NewCodeRegistry()
	codes.Register(&host.CodeRecord{ID: 1, Name: "f", Filename: "f.vm"})

	var seen []host.CodeID
	var prev host.DestroyFunc
	prev = codes.SwapDestroy(func(rec *host.CodeRecord) {
		seen = append(seen, rec.ID)
		prev(rec)
	})

	codes.Destroy(1)

	require.Equal(t, []host.CodeID{1}, seen)
	_, ok := codes.FuncLoc(1)
	require.False(t, ok)
}

func TestRegistrySwapDestroyRestores(t *testing.T) {
	codes := host.NewCodeRegistry()
	codes.Register(&host.CodeRecord{ID: 1, Name: "f", Filename: "f.vm"})

	called := false
	prev := codes.SwapDestroy(func(rec *host.CodeRecord) {
		called = true
	})
	codes.SwapDestroy(prev)

	codes.Destroy(1)
	require.False(t, called)
	require.Zero(t, codes.Len())
}
