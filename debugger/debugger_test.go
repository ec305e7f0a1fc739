package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadmium/chip8"
	"cadmium/cpu"
)

func newTestCore(t *testing.T) *chip8.Core {
	t.Helper()

	rom := []byte{0x60, 0x0A, 0x61, 0x0B, 0x00, 0xEE}

	c, err := chip8.New(chip8.VariantCHIP8, rom, 1)
	require.NoError(t, err)

	return c
}

func TestStepAdvancesAndCapturesStates(t *testing.T) {
	core := newTestCore(t)
	sess := NewSession()
	sess.AddUnit("chip8", core, [2]uint32{0x200, 0x210})

	require.NoError(t, sess.Step("chip8"))
	sess.CaptureStates()

	unit := sess.Units["chip8"]
	assert.NotEqual(t, unit.Previous.PC, unit.Current.PC)
}

func TestBreakpointLatchesAndTransientSelfClears(t *testing.T) {
	core := newTestCore(t)
	sess := NewSession()
	sess.AddUnit("chip8", core, [2]uint32{0x200, 0x210})

	core.SetBreakpoint(cpu.Breakpoint{Address: 0x202, Kind: cpu.TransientBreakpoint, Enabled: true})

	require.NoError(t, sess.Step("chip8"))

	bp, triggered := sess.BreakpointTriggered("chip8")
	require.True(t, triggered)
	assert.EqualValues(t, 0x202, bp.Address)

	_, stillSet := core.FindBreakpoint(0x202)
	assert.False(t, stillSet, "transient breakpoint should self-clear on fire")

	sess.AcknowledgeBreakpoint("chip8")

	_, triggeredAfterAck := sess.BreakpointTriggered("chip8")
	assert.False(t, triggeredAfterAck)
}

func TestRunRefusesToResumeFromError(t *testing.T) {
	core := newTestCore(t)
	sess := NewSession()
	sess.AddUnit("chip8", core, [2]uint32{0x200, 0x210})
	core.SetMode(cpu.Error)

	err := sess.Run("chip8")
	assert.Error(t, err)
}

func TestWatchExpressionEvaluatesAgainstRegisters(t *testing.T) {
	core := newTestCore(t)
	sess := NewSession()
	sess.AddUnit("chip8", core, [2]uint32{0x200, 0x210})

	require.NoError(t, sess.Step("chip8")) // V0 := 0x0A

	require.NoError(t, sess.SetWatch("v0", "V0"))

	v, err := sess.EvalWatch("chip8", "v0")
	require.NoError(t, err)
	assert.EqualValues(t, 0x0A, v)
}
