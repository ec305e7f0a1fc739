// Package vip composes a CDP1802 backend CPU, a CDP1861 video chip, and a
// hex keypad into a COSMAC VIP real-hardware core, exposing CHIP-8
// semantics by shadowing the monitor's interpreter state in RAM rather
// than reinterpreting CHIP-8 bytecode itself (spec.md §4.5, hybrid mode).
package vip

import (
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

	// FetchDecodeEntry is the address inside the stock CHIP-8 monitor ROM
	// where the interpreter's fetch-decode loop begins; the shim samples
	// CHIP-8 state whenever the backend CPU's PC lands here.
	FetchDecodeEntry = 0x0281

	// StartAddress is where classic (one-page display) CHIP-8 programs
	// load; TwoPageStartAddress is the later two-page-display monitor's
	// convention (spec.md §6 memory map table).
	StartAddress         = 0x0200
	TwoPageStartAddress  = 0x0260

	displayWidth  = 64
	displayHeight = 32
)

type bus struct {
	mem     [memSize]byte
	video   *peripherals.CDP1861
	keypad  *peripherals.Keypad
	rowSel  byte
}

func (b *bus) ReadByte(addr uint16) byte     { return b.mem[addr] }
func (b *bus) WriteByte(addr uint16, v byte) { b.mem[addr] = v }
func (b *bus) DummyRead(addr uint16)         {}

func (b *bus) InputPort(n int) byte {
	if n == 4 {
		return b.keypad.Scan(b.rowSel)
	}

	return 0
}

func (b *bus) OutputPort(n int, v byte) {
	if n == 4 {
		b.rowSel = v & 0xF
	}
}

// Core is a COSMAC VIP real-hardware emulation, running a host-supplied
// monitor ROM image on a CDP1802 backend and exposing the monitor's CHIP-8
// interpreter state as a GenericCpu execution unit.
type Core struct {
	cpu    *cdp1802.CPU
	bus    *bus
	video  *peripherals.CDP1861
	keypad *peripherals.Keypad
	shadow *hardware.Shadow

	startAddr uint16
	mode      cpu.Mode
	breakpoints map[uint32]cpu.Breakpoint
}

// New builds a VIP core. monitorROM is the host-supplied interpreter image
// (copyrighted VIP firmware cadmium does not embed); it is mapped at
// address 0, matching the CDP1802's hardwired PC=0 reset vector. rom is
// the CHIP-8 program, loaded at startAddr (StartAddress or
// TwoPageStartAddress).
func New(monitorROM, rom []byte, startAddr uint16) (*Core, error) {
	if len(monitorROM) == 0 {
		return nil, errors.New("vip: monitor ROM image is required")
	}

	if int(startAddr)+len(rom) > memSize {
		return nil, errors.Errorf("vip: rom of %d bytes does not fit at %#04x", len(rom), startAddr)
	}

	vbuf := video.New(displayWidth, displayHeight)
	b := &bus{keypad: &peripherals.Keypad{}}
	b.video = peripherals.NewCDP1861(vbuf, 0x0900, displayWidth, displayHeight)
	b.video.SetEnabled(true)
	b.keypad = &peripherals.Keypad{}

	copy(b.mem[0:], monitorROM)
	copy(b.mem[startAddr:], rom)

	c := &Core{
		bus:         b,
		video:       b.video,
		keypad:      b.keypad,
		startAddr:   startAddr,
		breakpoints: map[uint32]cpu.Breakpoint{},
	}

	c.cpu = cdp1802.New(b)
	c.shadow = hardware.NewShadow(FetchDecodeEntry, 0x00F0, 0x00EE, 0x00EC, 0x00EA, 0x00E9, b.ReadByte)

	return c, nil
}

// BackendCPU exposes the underlying CDP1802 as a selectable debugger view,
// independent from the shadowed CHIP-8 execution unit this type itself
// presents via GenericCpu.
func (c *Core) BackendCPU() cpu.GenericCpu { return c.cpu }

// Video exposes the Pixie-rendered framebuffer.
func (c *Core) Video() *video.Buffer { return c.video.Buffer() }

func (c *Core) PressKey(key int)   { c.keypad.Press(key) }
func (c *Core) ReleaseKey(key int) { c.keypad.Release(key) }

// TickTimers has no effect on the VIP core: DT/ST live in monitor RAM and
// are decremented by the monitor's own timer interrupt service routine as
// the backend CPU executes, not by an external host-driven tick.
func (c *Core) TickTimers() {}

func (c *Core) SoundActive() bool { return c.shadow.Captured() && c.shadow.ST() > 0 }

// RenderAudio renders the VIP's Q-line-driven piezo beeper: on or off,
// with no pitch control, so it is simply silence or a fixed 1 kHz tone.
func (c *Core) RenderAudio(buf *audio.IntBuffer, sampleRate int) {
	if !c.SoundActive() {
		for i := range buf.Data {
			buf.Data[i] = 0
		}

		return
	}

	const freq = 1000.0
	samplesPerCycle := float64(sampleRate) / freq

	for i := range buf.Data {
		if float64(i%int(samplesPerCycle)) < samplesPerCycle/2 {
			buf.Data[i] = 1 << 14
		} else {
			buf.Data[i] = -(1 << 14)
		}
	}
}

// Step runs the backend CPU forward until it reaches the fetch-decode
// entry point exactly once (stepping the CHIP-8 unit means "run the
// monitor until it is about to decode the next CHIP-8 instruction").
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

	return errors.New("vip: backend CPU never reached the fetch-decode entry point")
}

func (c *Core) Reset() {
	c.cpu.Reset()
	c.mode = cpu.Normal
	c.shadow = hardware.NewShadow(FetchDecodeEntry, 0x00F0, 0x00EE, 0x00EC, 0x00EA, 0x00E9, c.bus.ReadByte)
}

// Vblank drives the Pixie video field and its interrupt, called once per
// emulated display refresh.
func (c *Core) Vblank() {
	c.video.ClearScreen()
	c.video.Field(c.bus.ReadByte)

	if c.video.TakeInterrupt() {
		c.cpu.RequestInterrupt()
	}
}

// cpu.GenericCpu: the shadowed CHIP-8 execution unit, not the backend.

func (c *Core) Identifier() string { return "vip:chip8" }

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
