// Package eti660 composes a CDP1802 backend CPU and a CDP1864 video/tone
// chip into an ETI-660 real-hardware core, exposing CHIP-8 semantics by
// shadowing the monitor's interpreter state in RAM (spec.md §4.5). Its
// stack-layout constants are the ETI-660 monitor's own, not the VIP's:
// spec.md §9 notes some source comments for this monitor mistakenly
// reference the VIP layout, a copy-paste artefact this implementation
// does not carry forward.
package eti660

import (
	"math"

	"github.com/go-audio/audio"
	"github.com/pkg/errors"

	"cadmium/cpu"
	"cadmium/cpu/cdp1802"
	"cadmium/hardware"
	"cadmium/hardware/peripherals"
	"cadmium/internal/video"
)

const (
	memSize = 0x8000

	FetchDecodeEntry = 0x02C0

	// StartAddress is the ETI-660's CHIP-8 program load address (spec.md
	// §6 memory map table; higher than the VIP's 0x200 because the
	// ETI-660 monitor's own workspace sits lower in RAM).
	StartAddress = 0x0600

	displayWidth  = 64
	displayHeight = 32
)

type bus struct {
	mem    [memSize]byte
	video  *peripherals.CDP1864
	keypad *peripherals.Keypad
	rowSel byte
}

func (b *bus) ReadByte(addr uint16) byte     { return b.mem[addr] }
func (b *bus) WriteByte(addr uint16, v byte) { b.mem[addr] = v }
func (b *bus) DummyRead(addr uint16)         {}

func (b *bus) InputPort(n int) byte {
	if n == 1 {
		return b.keypad.Scan(b.rowSel)
	}

	return 0
}

func (b *bus) OutputPort(n int, v byte) {
	switch n {
	case 1:
		b.rowSel = v & 0xF
	case 2:
		b.video.SetToneDivider(v)
	}
}

// Core is an ETI-660 real-hardware emulation.
type Core struct {
	cpu    *cdp1802.CPU
	bus    *bus
	video  *peripherals.CDP1864
	keypad *peripherals.Keypad
	shadow *hardware.Shadow

	mode        cpu.Mode
	breakpoints map[uint32]cpu.Breakpoint
}

// New builds an ETI-660 core from a host-supplied monitor ROM image
// (mapped at address 0, matching the 1802's hardwired PC=0 reset) and a
// CHIP-8 program loaded at StartAddress.
func New(monitorROM, rom []byte) (*Core, error) {
	if len(monitorROM) == 0 {
		return nil, errors.New("eti660: monitor ROM image is required")
	}

	if int(StartAddress)+len(rom) > memSize {
		return nil, errors.Errorf("eti660: rom of %d bytes does not fit at %#04x", len(rom), StartAddress)
	}

	vbuf := video.New(displayWidth, displayHeight)
	keypad := &peripherals.Keypad{}
	b := &bus{keypad: keypad}
	b.video = peripherals.NewCDP1864(vbuf, 0x0900, displayWidth, displayHeight)
	b.video.SetEnabled(true)

	copy(b.mem[0:], monitorROM)
	copy(b.mem[StartAddress:], rom)

	c := &Core{
		bus:         b,
		video:       b.video,
		keypad:      keypad,
		breakpoints: map[uint32]cpu.Breakpoint{},
	}

	c.cpu = cdp1802.New(b)
	c.shadow = hardware.NewShadow(FetchDecodeEntry, 0x0050, 0x0046, 0x0044, 0x0042, 0x0041, b.ReadByte)

	return c, nil
}

func (c *Core) BackendCPU() cpu.GenericCpu { return c.cpu }
func (c *Core) Video() *video.Buffer       { return c.video.Buffer() }
func (c *Core) PressKey(key int)           { c.keypad.Press(key) }
func (c *Core) ReleaseKey(key int)         { c.keypad.Release(key) }
func (c *Core) TickTimers()                {}
func (c *Core) SoundActive() bool          { return c.shadow.Captured() && c.shadow.ST() > 0 }

// RenderAudio renders the CDP1864's divider-controlled tone generator.
func (c *Core) RenderAudio(buf *audio.IntBuffer, sampleRate int) {
	c.video.SetTone(c.cpu.Q)
	freq := c.video.ToneFrequency(1_760_000)

	if freq <= 0 {
		for i := range buf.Data {
			buf.Data[i] = 0
		}

		return
	}

	samplesPerCycle := float64(sampleRate) / freq

	for i := range buf.Data {
		if math.Mod(float64(i), samplesPerCycle) < samplesPerCycle/2 {
			buf.Data[i] = 1 << 14
		} else {
			buf.Data[i] = -(1 << 14)
		}
	}
}

func (c *Core) Step() error {
	for i := 0; i < 1_000_000; i++ {
		if err := c.cpu.Step(); err != nil {
			c.mode = cpu.Error
			return err
		}

		if c.shadow.Observe(uint16(c.cpu.ProgramCounter()), c.cpu.R[4]) {
			return nil
		}
	}

	return errors.New("eti660: backend CPU never reached the fetch-decode entry point")
}

func (c *Core) Reset() {
	c.cpu.Reset()
	c.mode = cpu.Normal
	c.shadow = hardware.NewShadow(FetchDecodeEntry, 0x0050, 0x0046, 0x0044, 0x0042, 0x0041, c.bus.ReadByte)
}

func (c *Core) Vblank() {
	c.video.ClearScreen()
	c.video.Field(c.bus.ReadByte)

	if c.video.TakeInterrupt() {
		c.cpu.RequestInterrupt()
	}
}

func (c *Core) Identifier() string { return "eti660:chip8" }

func (c *Core) Registers() []cpu.Register {
	regs := make([]cpu.Register, 0, 19)

	for i := 0; i < 16; i++ {
		regs = append(regs, cpu.Register{Name: hexRegName(i), Width: 8, Value: uint64(c.shadow.V(i))})
	}

	regs = append(regs,
		cpu.Register{Name: "I", Width: 16, Value: uint64(c.shadow.I())},
		cpu.Register{Name: "DT", Width: 8, Value: uint64(c.shadow.DT())},
		cpu.Register{Name: "ST", Width: 8, Value: uint64(c.shadow.ST())},
	)

	return regs
}

func hexRegName(i int) string {
	const digits = "0123456789ABCDEF"
	return "V" + string(digits[i])
}

func (c *Core) ProgramCounter() uint32 { return uint32(c.shadow.PC()) }

func (c *Core) StackDescriptor() cpu.StackDescriptor {
	return cpu.StackDescriptor{EntrySize: 2, GrowsDown: false, BigEndian: true}
}

func (c *Core) ReadMemory(addr uint32) byte { return c.bus.ReadByte(uint16(addr)) }

func (c *Core) Disassemble(addr uint32) (string, int) {
	return cdp1802.Disassemble(c.bus, uint16(addr))
}

func (c *Core) SetBreakpoint(bp cpu.Breakpoint) { c.breakpoints[bp.Address] = bp }
func (c *Core) ClearBreakpoint(addr uint32)     { delete(c.breakpoints, addr) }

func (c *Core) FindBreakpoint(addr uint32) (cpu.Breakpoint, bool) {
	bp, ok := c.breakpoints[addr]
	return bp, ok
}

func (c *Core) Breakpoints() []cpu.Breakpoint {
	out := make([]cpu.Breakpoint, 0, len(c.breakpoints))
	for _, bp := range c.breakpoints {
		out = append(out, bp)
	}

	return out
}

func (c *Core) Mode() cpu.Mode     { return c.mode }
func (c *Core) SetMode(m cpu.Mode) { c.mode = m }
func (c *Core) Cycles() int64      { return c.cpu.Cycles() }
func (c *Core) Time() int64        { return c.cpu.Time() }
