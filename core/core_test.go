package core

import (
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadmium/cpu"
	"cadmium/internal/properties"
)

type fakeHost struct {
	romLoaded   string
	emuChanges  int
	screenCalls int
	vblankCalls int
	headless    bool
}

func (h *fakeHost) OnRomLoaded(name string, autoRun bool, compilerOpt, sourceOpt string) { h.romLoaded = name }
func (h *fakeHost) OnEmuChanged(c *EmulationCore)                                        { h.emuChanges++ }
func (h *fakeHost) UpdateScreen()                                                        { h.screenCalls++ }
func (h *fakeHost) Vblank()                                                              { h.vblankCalls++ }
func (h *fakeHost) IsHeadless() bool                                                     { return h.headless }
func (h *fakeHost) GetKeyPressed() (int, bool)                                           { return 0, false }
func (h *fakeHost) GetKeyStates() uint16                                                 { return 0 }
func (h *fakeHost) MonitorROM(class string) ([]byte, error)                              { return make([]byte, 512), nil }

func classicPreset(r *properties.Registry) *properties.Properties {
	for _, p := range r.PresetsForClass("CHIP-8-GENERIC") {
		if p.Name == "CHIP-8" {
			return p.Properties.Clone()
		}
	}

	return nil
}

func TestLoadBinaryBuildsEngineAndNotifiesHost(t *testing.T) {
	host := &fakeHost{}
	c := New(host, NewRegistry(), 1)

	rom := []byte{0x60, 0x0A, 0x12, 0x00} // V0 := 0x0A; jump to self
	props := classicPreset(c.registry)
	require.NotNil(t, props)

	require.NoError(t, c.LoadBinary("spinner.ch8", rom, props, true))

	assert.Equal(t, "spinner.ch8", host.romLoaded)
	assert.Equal(t, 1, host.emuChanges)
	assert.Equal(t, "CHIP-8", c.VariantName())
	assert.NotEmpty(t, c.RomSHA1())
	assert.NotNil(t, c.Screen())
}

func TestLoadBinaryRejectsEmptyData(t *testing.T) {
	c := New(&fakeHost{}, NewRegistry(), 1)
	props := classicPreset(c.registry)

	err := c.LoadBinary("empty.ch8", nil, props, true)
	assert.Error(t, err)

	var romErr *RomLoadError
	assert.ErrorAs(t, err, &romErr)
}

func TestExecuteFrameTicksHostCallbacks(t *testing.T) {
	host := &fakeHost{}
	c := New(host, NewRegistry(), 1)
	props := classicPreset(c.registry)

	rom := []byte{0x12, 0x00} // tight self-jump
	require.NoError(t, c.LoadBinary("loop.ch8", rom, props, true))

	require.NoError(t, c.ExecuteFrame())

	assert.Equal(t, 1, host.vblankCalls)
	assert.Equal(t, 1, host.screenCalls)
}

func TestExecuteFrameReportsEmulationFatalOnIllegalOpcode(t *testing.T) {
	c := New(&fakeHost{}, NewRegistry(), 1)
	props := classicPreset(c.registry)

	rom := []byte{0xE0, 0x00} // top nibble E with neither E09E nor E0A1's low byte: unrecognised
	require.NoError(t, c.LoadBinary("bad.ch8", rom, props, true))

	err := c.ExecuteFrame()
	require.Error(t, err)

	var fatal *EmulationFatal
	assert.ErrorAs(t, err, &fatal)
	assert.Equal(t, cpu.Error, c.ExecMode())
}

func TestUpdatePropertiesReportsNoChangeVsRecreate(t *testing.T) {
	c := New(&fakeHost{}, NewRegistry(), 1)
	props := classicPreset(c.registry)
	require.NoError(t, c.LoadBinary("rom.ch8", []byte{0x12, 0x00}, props, true))

	same := props.Clone()
	needsRecreate, err := c.UpdateProperties(same)
	require.NoError(t, err)
	assert.False(t, needsRecreate)

	changed := props.Clone()
	require.NoError(t, changed.SetBool("Wrap Sprites", false))
	needsRecreate, err = c.UpdateProperties(changed)
	require.NoError(t, err)
	assert.True(t, needsRecreate)
}

func TestAudioRenderDoesNotPanicWithNoEngineLoaded(t *testing.T) {
	c := New(&fakeHost{}, NewRegistry(), 1)
	buf := &audio.IntBuffer{Data: make([]int, 64), Format: &audio.Format{SampleRate: 44100, NumChannels: 1}}

	assert.NotPanics(t, func() { c.AudioRender(buf, 44100) })
}
