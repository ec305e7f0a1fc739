package video

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXorPixelSetsAndCollides(t *testing.T) {
	b := New(64, 32)

	collided := b.XorPixelReturnCollision(63, 31, 1)
	require.False(t, collided)
	require.True(t, b.PixelOn(63, 31, 1))

	collided = b.XorPixelReturnCollision(63, 31, 1)
	require.True(t, collided)
	require.False(t, b.PixelOn(63, 31, 1))
}

func TestOutOfBoundsIsClippedNotWrapped(t *testing.T) {
	b := New(64, 32)

	collided := b.XorPixelReturnCollision(64, 0, 1)
	require.False(t, collided)
	require.False(t, b.PixelOn(0, 0, 1))
}

func TestClearPlaneOnlyAffectsSelectedPlanes(t *testing.T) {
	b := New(64, 32)
	b.SetPixel(0, 0, 0b0001)
	b.SetPixel(0, 0, 0b0010)

	b.ClearPlane(0b0001)

	require.False(t, b.PixelOn(0, 0, 0b0001))
	require.True(t, b.PixelOn(0, 0, 0b0010))
}

func TestScrollDownFillsWithZero(t *testing.T) {
	b := New(8, 4)
	b.SetPixel(0, 0, 1)

	b.Scroll(Down, 1, 1)

	require.False(t, b.PixelOn(0, 0, 1))
	require.True(t, b.PixelOn(0, 1, 1))
}

func TestScrollLeftShiftsColumns(t *testing.T) {
	b := New(16, 1)
	b.SetPixel(5, 0, 1)

	b.Scroll(Left, 4, 1)

	require.True(t, b.PixelOn(1, 0, 1))
	require.False(t, b.PixelOn(5, 0, 1))
}

func TestResizeClearsBuffer(t *testing.T) {
	b := New(64, 32)
	b.SetPixel(0, 0, 1)
	b.Resize(128, 64)

	require.Equal(t, 128, b.Width())
	require.False(t, b.PixelOn(0, 0, 1))
}

func TestIndexedMode(t *testing.T) {
	b := New(16, 16)
	b.SetIndexed(3, 3, 7)
	require.Equal(t, byte(7), b.IndexedAt(3, 3))
}
