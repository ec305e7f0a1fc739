package m6800

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type ramBus struct {
	mem [0x10000]byte
}

func (r *ramBus) ReadByte(addr uint16) byte     { return r.mem[addr] }
func (r *ramBus) WriteByte(addr uint16, v byte) { r.mem[addr] = v }
func (r *ramBus) DummyRead(addr uint16)         {}

func newTestCPU(program []byte, at uint16) (*CPU, *ramBus) {
	bus := &ramBus{}
	copy(bus.mem[at:], program)
	bus.mem[0xFFFE] = byte(at >> 8)
	bus.mem[0xFFFF] = byte(at)

	return New(bus), bus
}

func TestResetLoadsVector(t *testing.T) {
	c, _ := newTestCPU([]byte{0x01}, 0x8000)
	require.Equal(t, uint16(0x8000), c.PC)
}

func TestLDAAImmediateSetsFlags(t *testing.T) {
	c, _ := newTestCPU([]byte{0x86, 0x00}, 0x8000) // LDAA #$00
	require.NoError(t, c.Step())
	require.Equal(t, byte(0), c.A)
	require.True(t, c.getFlag(flagZ))
	require.Equal(t, int64(2), c.cycles)
}

func TestADDAImmediateSetsCarry(t *testing.T) {
	c, bus := newTestCPU([]byte{0x86, 0xFF, 0x8B, 0x02}, 0x8000) // LDAA #$FF; ADDA #$02
	_ = bus
	require.NoError(t, c.Step())
	require.NoError(t, c.Step())
	require.Equal(t, byte(0x01), c.A)
	require.True(t, c.getFlag(flagC))
}

func TestJSRAndRTS(t *testing.T) {
	c, bus := newTestCPU([]byte{0xBD, 0x80, 0x10}, 0x8000) // JSR $8010
	bus.mem[0x8010] = 0x39                                 // RTS
	c.SP = 0x01FF

	require.NoError(t, c.Step())
	require.Equal(t, uint16(0x8010), c.PC)

	require.NoError(t, c.Step())
	require.Equal(t, uint16(0x8003), c.PC)
}

func TestBranchTaken(t *testing.T) {
	c, _ := newTestCPU([]byte{0x86, 0x00, 0x27, 0x10}, 0x8000) // LDAA #0; BEQ +16
	require.NoError(t, c.Step())
	require.NoError(t, c.Step())
	require.Equal(t, uint16(0x8014), c.PC)
}

func TestIllegalOpcodeEntersError(t *testing.T) {
	c, _ := newTestCPU([]byte{0x02}, 0x8000) // undefined
	err := c.Step()
	require.Error(t, err)
	require.Equal(t, "ERROR", c.Mode().String())
}

func TestHCFHalts(t *testing.T) {
	c, _ := newTestCPU([]byte{0xDD}, 0x8000)
	require.NoError(t, c.Step())
	require.True(t, c.Halted())
}

func TestCycleAccounting(t *testing.T) {
	c, _ := newTestCPU([]byte{0x01, 0x01, 0x01}, 0x8000) // 3x NOP, 2 cycles each
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Step())
	}

	require.Equal(t, int64(6), c.Cycles())
}
