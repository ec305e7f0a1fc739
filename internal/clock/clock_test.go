package clock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromMicroseconds(t *testing.T) {
	tm := FromMicroseconds(1000, 1_000_000)
	require.Equal(t, int64(1000), tm.Cycles())
}

func TestAddCyclesSameFrequency(t *testing.T) {
	tm := New(1_000_000)
	tm = tm.AddCycles(500, 1_000_000)
	require.Equal(t, int64(500), tm.Cycles())
	require.InDelta(t, 500.0, tm.Microseconds(), 0.001)
}

func TestAddCyclesRebasesOnFrequencyChange(t *testing.T) {
	tm := FromMicroseconds(1000, 1_000_000) // 1ms elapsed at 1MHz
	tm = tm.AddCycles(0, 2_000_000)         // rebase to 2MHz, no new cycles
	require.InDelta(t, 1000.0, tm.Microseconds(), 0.001)
}

func TestDifferenceUs(t *testing.T) {
	a := FromMicroseconds(2000, 1_000_000)
	b := FromMicroseconds(500, 1_000_000)
	require.InDelta(t, 1500.0, a.DifferenceUs(b), 0.001)
}

func TestOrdering(t *testing.T) {
	a := FromMicroseconds(100, 1_000_000)
	b := FromMicroseconds(200, 1_000_000)
	require.True(t, a.Before(b))
	require.True(t, b.After(a))
	require.True(t, a.Equal(a))
}

func TestCyclesPerFrame(t *testing.T) {
	require.Equal(t, int64(11667), CyclesPerFrame(700_000, 60))
}
