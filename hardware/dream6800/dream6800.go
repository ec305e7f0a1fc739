// Package dream6800 composes a Motorola 6800 backend CPU, an MC6821 PIA
// wired to a hex keypad, and a memory-mapped video RAM window into a
// DREAM6800 real-hardware core, exposing CHIP-8 semantics by shadowing
// the CHIPOS monitor's interpreter state in RAM (spec.md §4.5).
package dream6800

import (
	"github.com/go-audio/audio"
	"github.com/pkg/errors"

	"cadmium/cpu"
	"cadmium/cpu/m6800"
	"cadmium/hardware"
	"cadmium/hardware/peripherals"
	"cadmium/internal/video"
)

const (
	memSize = 0x10000

	// FetchDecodeEntry is the CHIPOS monitor address where the CHIP-8
	// fetch-decode loop begins.
	FetchDecodeEntry = 0x0210

	StartAddress = 0x0200

	displayBase   = 0x0900
	displayWidth  = 64
	displayHeight = 32

	piaBase = 0x8010 // CHIPOS's documented PIA port window
)

type bus struct {
	mem [memSize]byte
	pia *peripherals.MC6821
}

func (b *bus) ReadByte(addr uint16) byte {
	if addr >= piaBase && addr < piaBase+4 {
		return b.pia.Read(int(addr - piaBase))
	}

	return b.mem[addr]
}

func (b *bus) WriteByte(addr uint16, v byte) {
	if addr >= piaBase && addr < piaBase+4 {
		b.pia.Write(int(addr-piaBase), v)
		return
	}

	b.mem[addr] = v
}

func (b *bus) DummyRead(addr uint16) {}

// Core is a DREAM6800 real-hardware emulation.
type Core struct {
	cpu    *m6800.CPU
	bus    *bus
	keypad *peripherals.Keypad
	video  *video.Buffer
	shadow *hardware.Shadow

	mode        cpu.Mode
	breakpoints map[uint32]cpu.Breakpoint
}

// New builds a DREAM6800 core. monitorROM is the host-supplied CHIPOS
// image, mapped so its top two bytes land at 0xFFFE (the 6800 reset
// vector); rom is the CHIP-8 program, loaded at StartAddress.
func New(monitorROM, rom []byte) (*Core, error) {
	if len(monitorROM) == 0 {
		return nil, errors.New("dream6800: monitor ROM image is required")
	}

	base := memSize - len(monitorROM)
	if base < int(StartAddress)+len(rom) {
		return nil, errors.New("dream6800: monitor ROM overlaps the CHIP-8 program area")
	}

	keypad := &peripherals.Keypad{}
	b := &bus{pia: peripherals.NewMC6821(keypad)}
	copy(b.mem[base:], monitorROM)
	copy(b.mem[StartAddress:], rom)

	c := &Core{
		bus:         b,
		keypad:      keypad,
		video:       video.New(displayWidth, displayHeight),
		breakpoints: map[uint32]cpu.Breakpoint{},
	}

	c.cpu = m6800.New(b)
	c.shadow = hardware.NewShadow(FetchDecodeEntry, 0x00, 0x10, 0x12, 0x14, 0x15, b.ReadByte)

	return c, nil
}

func (c *Core) BackendCPU() cpu.GenericCpu { return c.cpu }
func (c *Core) Video() *video.Buffer       { return c.video }
func (c *Core) PressKey(key int)           { c.keypad.Press(key) }
func (c *Core) ReleaseKey(key int)         { c.keypad.Release(key) }
func (c *Core) TickTimers()                {}
func (c *Core) SoundActive() bool          { return c.shadow.Captured() && c.shadow.ST() > 0 }

func (c *Core) RenderAudio(buf *audio.IntBuffer, sampleRate int) {
	for i := range buf.Data {
		buf.Data[i] = 0
	}
}

// Step runs the backend 6800 forward until its PC reaches the CHIPOS
// fetch-decode entry point exactly once. The 6800's stack pointer
// register is the shadow's work-area base, matching CHIPOS's convention
// of keeping the CHIP-8 register file just above the return-address
// stack.
func (c *Core) Step() error {
	for i := 0; i < 1_000_000; i++ {
		if err := c.cpu.Step(); err != nil {
			c.mode = cpu.Error
			return err
		}

		if c.shadow.Observe(uint16(c.cpu.ProgramCounter()), c.cpu.SP) {
			return nil
		}
	}

	return errors.New("dream6800: backend CPU never reached the fetch-decode entry point")
}

func (c *Core) Reset() {
	c.cpu.Reset()
	c.mode = cpu.Normal
	c.shadow = hardware.NewShadow(FetchDecodeEntry, 0x00, 0x10, 0x12, 0x14, 0x15, c.bus.ReadByte)
}

// Vblank copies the memory-mapped video RAM window into the video buffer,
// standing in for the DREAM6800's free-running raster scan of that RAM
// (the hardware has no separate video chip; a 6847-class display
// generator reads the window continuously, not once per field, but the
// visible result is the same once per frame for a host renderer).
func (c *Core) Vblank() {
	c.video.ClearPlane(1)

	rowBytes := displayWidth / 8

	for y := 0; y < displayHeight; y++ {
		for xb := 0; xb < rowBytes; xb++ {
			b := c.bus.ReadByte(uint16(displayBase + y*rowBytes + xb))

			for bit := 0; bit < 8; bit++ {
				if b&(0x80>>uint(bit)) != 0 {
					c.video.SetPixel(xb*8+bit, y, 1)
				}
			}
		}
	}
}

func (c *Core) Identifier() string { return "dream6800:chip8" }

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
	return m6800.Disassemble(c.bus, uint16(addr))
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
