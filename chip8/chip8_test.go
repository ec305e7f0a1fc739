package chip8

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cadmium/cpu"
)

func newCore(t *testing.T, variant Variant, rom []byte) *Core {
	t.Helper()

	c, err := New(variant, rom, 1)
	require.NoError(t, err)

	return c
}

func newCoreWithQuirks(t *testing.T, q Quirks, rom []byte) *Core {
	t.Helper()

	c, err := NewWithQuirks(VariantCHIP8, q, rom, 1)
	require.NoError(t, err)

	return c
}

// E1: an infinite self-jump pauses the core at the next Vblank boundary
// rather than spinning the worker's cycle budget.
func TestSelfJumpPausesAtVblank(t *testing.T) {
	c := newCore(t, VariantCHIP8, []byte{0x12, 0x00}) // JP 0x200

	const ipf = 10
	for i := 0; i < ipf; i++ {
		require.NoError(t, c.Step())
	}
	c.Vblank()

	require.Equal(t, cpu.Paused, c.Mode())
	require.Equal(t, uint16(0x200), c.PC)
	require.GreaterOrEqual(t, c.Cycles(), int64(ipf))
}

// E2: four instructions, including an 8XY4 add with no carry.
func TestAddRegFourInstructionTrace(t *testing.T) {
	rom := []byte{
		0x60, 0x05, // LD V0, 5
		0x61, 0x0A, // LD V1, 10
		0x80, 0x14, // ADD V0, V1
		0x12, 0x06, // JP 0x206 (self-jump)
	}
	c := newCore(t, VariantCHIP8, rom)

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Step())
	}

	require.Equal(t, byte(0x0F), c.V[0])
	require.Equal(t, byte(0x00), c.V[0xF])
	require.Equal(t, uint16(0x206), c.PC)
	require.Equal(t, int64(4), c.Cycles())
}

// E3: XO-CHIP's F000 NNNN extended load.
func TestLoadILongReadsFollowingWord(t *testing.T) {
	rom := []byte{
		0xA2, 0x10, // LD I, 0x210
		0xF0, 0x00, // F000 prefix
		0x02, 0x00, // operand word: 0x0200
	}
	c := newCore(t, VariantXOCHIP, rom)

	require.NoError(t, c.Step()) // LD I, 0x210
	require.NoError(t, c.Step()) // F000 NNNN

	require.Equal(t, uint16(0x0200), c.I)
	require.Equal(t, uint16(0x206), c.PC)
}

// Invariant 5: sprite clipping, wrapping, and collision, parameterized by
// WrapSprites.
func TestSpriteClippedWithoutWrap(t *testing.T) {
	rom := []byte{
		0x60, 0x40, // LD V0, 64 (off the right edge of a 64-wide screen)
		0x61, 0x00, // LD V1, 0
		0xA2, 0x08, // LD I, 0x208
		0xD0, 0x11, // DRW V0, V1, 1
		0x80, // sprite byte
	}
	q := QuirksFor(VariantCHIP8)
	q.WrapSprites = false
	c := newCoreWithQuirks(t, q, rom)

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Step())
	}

	require.False(t, c.Video().PixelOn(0, 0, 1))
	require.Equal(t, byte(0), c.V[0xF])
}

func TestSpriteExactFitWithoutWrap(t *testing.T) {
	rom := []byte{
		0x60, 0x3F, // LD V0, 63
		0x61, 0x1F, // LD V1, 31
		0xA2, 0x08, // LD I, 0x208
		0xD0, 0x11, // DRW V0, V1, 1
		0x80, // sprite byte
	}
	q := QuirksFor(VariantCHIP8)
	q.WrapSprites = false
	c := newCoreWithQuirks(t, q, rom)

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Step())
	}

	require.True(t, c.Video().PixelOn(63, 31, 1))
	require.Equal(t, byte(0), c.V[0xF])
}

// E6: with wrap-sprites on, a 1-pixel sprite drawn at (62, 0) lights
// (62, 0), and a second draw at the same coordinates in the next frame
// collides and clears the pixel.
func TestSpriteWrapsAndSecondDrawCollides(t *testing.T) {
	rom := []byte{
		0x60, 0x3E, // LD V0, 62
		0x61, 0x00, // LD V1, 0
		0xA2, 0x0A, // LD I, 0x20A
		0xD0, 0x11, // DRW V0, V1, 1
		0xD0, 0x11, // DRW V0, V1, 1 (same coordinates again)
		0x80, // sprite byte
	}
	q := QuirksFor(VariantCHIP8)
	q.WrapSprites = true
	c := newCoreWithQuirks(t, q, rom)

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Step())
	}

	require.True(t, c.Video().PixelOn(62, 0, 1))
	require.Equal(t, byte(0), c.V[0xF])

	// CHIP-8 allows one Dxyn per frame, so the second draw runs after Vblank.
	c.Vblank()

	require.NoError(t, c.Step()) // second DRW at the same spot

	require.False(t, c.Video().PixelOn(62, 0, 1))
	require.Equal(t, byte(1), c.V[0xF])
}

// Invariant 6: FX55/FX65's post-op I advance differs by I-increment quirk.
func TestStoreRegsIAdvanceVariants(t *testing.T) {
	rom := []byte{0xF3, 0x55} // LD [I], V3

	cases := []struct {
		name string
		q    func(q *Quirks)
		want uint16
	}{
		{"original", func(q *Quirks) {}, 0x304},
		{"chip48", func(q *Quirks) { q.IIncrementByX = true }, 0x303},
		{"schip11", func(q *Quirks) { q.IUnchanged = true }, 0x300},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := QuirksFor(VariantCHIP8)
			tc.q(&q)

			c := newCoreWithQuirks(t, q, rom)
			c.I = 0x300

			require.NoError(t, c.Step())
			require.Equal(t, tc.want, c.I)
		})
	}
}

// Invariant 7: a second Dxyn within one frame on a non-instant-dxyn variant
// defers to the next Vblank boundary instead of deadlocking.
func TestSecondDxynPerFrameRetriesAtVblank(t *testing.T) {
	rom := []byte{
		0x60, 0x00, // LD V0, 0
		0x61, 0x00, // LD V1, 0
		0xA2, 0x0C, // LD I, 0x20C
		0xD0, 0x11, // DRW V0, V1, 1
		0xD0, 0x11, // DRW V0, V1, 1 (second draw this frame)
		0x00, 0x00, // padding to keep I's target two-byte aligned
		0x80, // sprite byte
	}
	q := QuirksFor(VariantCHIP8)
	c := newCoreWithQuirks(t, q, rom)

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Step())
	}
	require.True(t, c.Video().PixelOn(0, 0, 1))

	pcBeforeRetry := c.PC

	// The second Dxyn this frame blocks rather than drawing again.
	require.NoError(t, c.Step())
	require.Equal(t, cpu.Wait, c.Mode())
	require.Equal(t, pcBeforeRetry, c.PC) // rewound to retry the same instruction
	require.Equal(t, int64(4), c.Cycles())

	// A host drives execution by checking Mode() before every Step() (see
	// core.EmulationCore.ExecuteFrame): once WAIT is set, nothing short of
	// Vblank itself may clear it, or the blocked Dxyn would never be
	// retried on any later frame.
	c.Vblank()
	require.Equal(t, cpu.Normal, c.Mode())

	require.NoError(t, c.Step())
	require.Equal(t, cpu.Normal, c.Mode())
	require.Equal(t, int64(5), c.Cycles())

	// The retried draw XORs the same sprite back onto an already-set
	// pixel: it toggles off and reports the collision.
	require.False(t, c.Video().PixelOn(0, 0, 1))
	require.Equal(t, byte(1), c.V[0xF])
}

// Invariant 8: a user breakpoint fires exactly once at the address it
// guards, and clearing it lets execution continue past it.
func TestBreakpointFiresOnceThenClears(t *testing.T) {
	rom := []byte{
		0x60, 0x00, // LD V0, 0 (0x200)
		0x60, 0x01, // LD V0, 1 (0x202)
	}
	c := newCore(t, VariantCHIP8, rom)
	c.SetBreakpoint(cpu.Breakpoint{Address: 0x202, Kind: cpu.UserBreakpoint, Enabled: true})

	require.NoError(t, c.Step())
	require.Equal(t, cpu.Paused, c.Mode())
	require.Equal(t, uint16(0x202), c.PC)
	require.Equal(t, byte(0), c.V[0])

	c.ClearBreakpoint(0x202)
	c.SetMode(cpu.Normal)

	require.NoError(t, c.Step())
	require.Equal(t, cpu.Normal, c.Mode())
	require.Equal(t, uint16(0x204), c.PC)
	require.Equal(t, byte(1), c.V[0])
}

// Invariant 9: stack invariants differ by the cyclic-stack quirk.
func TestStackOverflowHaltsWithoutCyclicStack(t *testing.T) {
	rom := []byte{0x22, 0x00} // CALL 0x200 (calls itself)
	q := QuirksFor(VariantCHIP8)
	q.StackSize = 2
	c := newCoreWithQuirks(t, q, rom)

	require.NoError(t, c.Step())
	require.NoError(t, c.Step())
	require.Equal(t, cpu.Normal, c.Mode())
	require.Equal(t, byte(2), c.SP)

	require.NoError(t, c.Step())
	require.Equal(t, cpu.Error, c.Mode())
}

func TestStackWrapsWithCyclicStack(t *testing.T) {
	rom := []byte{0x22, 0x00} // CALL 0x200 (calls itself)
	q := QuirksFor(VariantCHIP8)
	q.StackSize = 2
	q.CyclicStack = true
	c := newCoreWithQuirks(t, q, rom)

	require.NoError(t, c.Step())
	require.NoError(t, c.Step())
	require.NoError(t, c.Step())

	require.NotEqual(t, cpu.Error, c.Mode())
	require.Equal(t, byte(1), c.SP)
}

// The F_01 plane-select opcode reads its operand from the X nibble, not
// the low nibble (which is always 1 for this instruction's fixed pattern).
func TestPlaneSelectReadsXNibble(t *testing.T) {
	rom := []byte{0xF3, 0x01} // plane 3
	c := newCore(t, VariantXOCHIP, rom)

	require.NoError(t, c.Step())
	require.Equal(t, byte(3), c.plane)
}
