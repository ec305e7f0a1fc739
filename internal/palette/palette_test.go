package palette

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPalette(t *testing.T) {
	p := Default()
	require.Equal(t, 2, p.Len())
	require.Equal(t, Color{0, 0, 0}, p.At(0))
	require.Equal(t, Color{255, 255, 255}, p.At(1))
}

func TestAtClamps(t *testing.T) {
	p := Default()
	require.Equal(t, p.At(1), p.At(5))
	require.Equal(t, p.At(0), p.At(-3))
}

func TestCloneIsIndependent(t *testing.T) {
	p := Default()
	clone := p.Clone()
	clone.Colors[0] = Color{1, 2, 3}
	require.NotEqual(t, p.Colors[0], clone.Colors[0])
}

func TestEqual(t *testing.T) {
	require.True(t, Default().Equal(Default()))
	require.False(t, Default().Equal(Octo()))
}

func TestUint32Packing(t *testing.T) {
	c := Color{0x11, 0x22, 0x33}
	require.Equal(t, uint32(0x112233FF), c.Uint32(0xFF))
}
