package sample_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intprof/intprof/pkg/sample"
)

func TestHashIsDeterministic(t *testing.T) {
	trace := []sample.Frame{{Code: 1, Line: 10}, {Code: 2, Line: 20}}

	require.Equal(t, sample.Hash(trace), sample.Hash(trace))
}

func TestHashAgreesWithEquality(t *testing.T) {
	t1 := []sample.Frame{{Code: 1, Line: 10}, {Code: 2, Line: 20}}
	t2 := []sample.Frame{{Code: 1, Line: 10}, {Code: 2, Line: 20}}

	require.True(t, sample.Equal(t1, t2))
	require.Equal(t, sample.Hash(t1), sample.Hash(t2))
}

func TestHashIsOrderSensitive(t *testing.T) {
	t1 := []sample.Frame{{Code: 1, Line: 10}, {Code: 2, Line: 20}}
	t2 := []sample.Frame{{Code: 2, Line: 20}, {Code: 1, Line: 10}}

	require.False(t, sample.Equal(t1, t2))
	require.NotEqual(t, sample.Hash(t1), sample.Hash(t2))
}

func TestHashDistinguishesLines(t *testing.T) {
	t1 := []sample.Frame{{Code: 1, Line: 10}}
	t2 := []sample.Frame{{Code: 1, Line: 11}}

	require.NotEqual(t, sample.Hash(t1), sample.Hash(t2))
}

func TestEqualLengthMismatch(t *testing.T) {
	t1 := []sample.Frame{{Code: 1, Line: 10}}
	t2 := []sample.Frame{{Code: 1, Line: 10}, {Code: 2, Line: 20}}

	require.False(t, sample.Equal(t1, t2))
}

func TestEqualEmpty(t *testing.T) {
	require.True(t, sample.Equal(nil, nil))
	require.True(t, sample.Equal([]sample.Frame{}, nil))
}
