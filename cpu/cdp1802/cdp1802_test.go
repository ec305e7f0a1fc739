package cdp1802

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type ramBus struct {
	mem   [0x10000]byte
	ports [8]byte
}

func (r *ramBus) ReadByte(addr uint16) byte     { return r.mem[addr] }
func (r *ramBus) WriteByte(addr uint16, v byte) { r.mem[addr] = v }
func (r *ramBus) DummyRead(addr uint16)         {}
func (r *ramBus) InputPort(n int) byte          { return r.ports[n] }
func (r *ramBus) OutputPort(n int, v byte)      { r.ports[n] = v }

func newTestCPU(program []byte, at uint16) (*CPU, *ramBus) {
	bus := &ramBus{}
	copy(bus.mem[at:], program)

	c := New(bus)
	c.R[0] = at

	return c, bus
}

func TestResetClearsRegisters(t *testing.T) {
	c, _ := newTestCPU(nil, 0)
	require.Equal(t, uint16(0), c.R[0])
	require.Equal(t, byte(0), c.P)
	require.Equal(t, byte(0), c.X)
	require.True(t, c.IE)
}

func TestIDLIdlesUntilInterrupt(t *testing.T) {
	c, _ := newTestCPU([]byte{0x00}, 0)
	require.NoError(t, c.Step())
	require.True(t, c.Idle())

	require.NoError(t, c.Step())
	require.True(t, c.Idle())
	require.Equal(t, int64(4), c.Cycles()) // 3 (IDL) + 1 (idle tick)

	c.RequestInterrupt()
	require.NoError(t, c.Step())
	require.False(t, c.Idle())
	require.Equal(t, byte(1), c.P)
	require.Equal(t, byte(2), c.X)
	require.False(t, c.IE)
}

func TestLDIAndShortBranch(t *testing.T) {
	c, _ := newTestCPU([]byte{0xF8, 0x42, 0x30, 0x10}, 0) // LDI #$42; BR $10
	require.NoError(t, c.Step())
	require.Equal(t, byte(0x42), c.D)

	require.NoError(t, c.Step())
	require.Equal(t, uint16(0x10), c.R[0])
}

func TestADISetsCarry(t *testing.T) {
	c, _ := newTestCPU([]byte{0xF8, 0xFF, 0xFC, 0x01}, 0) // LDI #$FF; ADI #$01
	require.NoError(t, c.Step())
	require.NoError(t, c.Step())
	require.Equal(t, byte(0), c.D)
	require.Equal(t, byte(1), c.DF)
}

func TestSEPChangesProgramCounterRegister(t *testing.T) {
	c, _ := newTestCPU([]byte{0xD3}, 0) // SEP R3
	require.NoError(t, c.Step())
	require.Equal(t, byte(3), c.P)
}

func TestOutputPortWritesBus(t *testing.T) {
	c, bus := newTestCPU([]byte{0xE2, 0x61}, 0) // SEX R2; OUT1
	bus.mem[0x100] = 0x55

	require.NoError(t, c.Step()) // SEX R2
	c.R[2] = 0x100

	require.NoError(t, c.Step()) // OUT1
	require.Equal(t, byte(0x55), bus.ports[1])
	require.Equal(t, uint16(0x101), c.R[2])
}

func TestIllegalOpcodeEntersError(t *testing.T) {
	c, _ := newTestCPU([]byte{0x68}, 0) // unassigned
	err := c.Step()
	require.Error(t, err)
	require.Equal(t, "ERROR", c.Mode().String())
}

func TestCycleAccounting(t *testing.T) {
	c, _ := newTestCPU([]byte{0x11, 0x11, 0x11}, 0) // 3x INC R1, 2 cycles each
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Step())
	}

	require.Equal(t, int64(6), c.Cycles())
}
