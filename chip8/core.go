package chip8

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"

	"cadmium/cpu"
	"cadmium/internal/video"
)

// Breakpoint is a user- or tool-set stop condition at a ROM address.
type Breakpoint struct {
	Address     uint16
	Reason      string
	Conditional bool // only trips when VF != 0
	Once        bool
}

func (b Breakpoint) toGeneric() cpu.Breakpoint {
	kind := cpu.UserBreakpoint
	if b.Once {
		kind = cpu.TransientBreakpoint
	}

	return cpu.Breakpoint{Address: uint32(b.Address), Kind: kind, Label: b.Reason, Enabled: true}
}

const (
	fontBase  = 0x000
	bigFontBase = 0x0A0
	memSize   = 0x10000 // XO-CHIP extends addressable memory to 64K via F000 NNNN
)

// Core is the generic CHIP-8 interpreter. Its opcode semantics are
// parameterized by Quirks, resolved once in New and baked into the
// instance's dispatch table, so the same type runs every dialect from
// classic CHIP-8 through XO-CHIP and MEGA-CHIP.
type Core struct {
	Memory [memSize]byte

	V  [16]byte
	I  uint16
	RPL [8]byte

	Stack []uint16
	SP    byte

	PC   uint16
	Base uint16

	DT, ST byte

	Variant Variant
	Quirks  Quirks

	video *video.Buffer
	keys  [16]bool

	waitReg int // index into V currently waiting on a keypress, -1 if none
	plane   byte // XO-CHIP selected bit-plane mask for drawing/scroll (F3 00-0F), default 1

	drewThisFrame bool // a non-instant-dxyn Dxyn already drew since the last Vblank
	skipCycle     bool // last Step charged zero cycles (a blocked Dxyn retry)
	selfJumpAddr  int  // address of a 1NNN whose target is itself, -1 if none

	rng *rand.Rand

	cycles      int64
	mode        cpu.Mode
	breakpoints map[uint32]Breakpoint

	audio audioState

	dispatch []opEntry
}

// New creates a Core for the given variant, loads rom at the variant's
// conventional base address, and seeds the RNG deterministically from
// seed (pass a value derived from real entropy at the host boundary; the
// core itself never reads the system clock or OS randomness).
func New(variant Variant, rom []byte, seed int64) (*Core, error) {
	return NewWithQuirks(variant, QuirksFor(variant), rom, seed)
}

// NewWithQuirks is New with an explicit Quirks value instead of
// QuirksFor(variant)'s documented default, for a properties-driven preset
// that adjusts one or two quirks away from the variant's baseline (a
// "CHIP-8 (modern)" preset with wrap-sprites disabled, a CHIP-10 preset
// with a taller screen) without needing its own Variant constant.
func NewWithQuirks(variant Variant, q Quirks, rom []byte, seed int64) (*Core, error) {
	base := uint16(0x200)

	if len(rom) > memSize-int(base) {
		return nil, errors.Errorf("chip8: rom of %d bytes does not fit at base %#04x", len(rom), base)
	}

	stackSize := q.StackSize
	if stackSize <= 0 {
		stackSize = 16
	}

	c := &Core{
		Variant:     variant,
		Quirks:      q,
		Base:        base,
		Stack:       make([]uint16, stackSize),
		rng:         rand.New(rand.NewSource(seed)),
		waitReg:      -1,
		plane:        1,
		selfJumpAddr: -1,
		breakpoints:  map[uint32]Breakpoint{},
		audio:        audioState{pitch: defaultPitch},
	}

	copy(c.Memory[0:len(font)], font[:])
	copy(c.Memory[bigFontBase:bigFontBase+len(bigFont)], bigFont[:])
	copy(c.Memory[base:], rom)

	c.video = video.New(q.ScreenWidth, q.ScreenHeight)
	c.PC = base
	c.dispatch = buildDispatch(q)

	return c, nil
}

// Video exposes the planar framebuffer for a host renderer.
func (c *Core) Video() *video.Buffer { return c.video }

// PressKey/ReleaseKey update the 16-key hex keypad state. Pressing a key
// while FX0A is waiting resolves the wait immediately.
func (c *Core) PressKey(key int) {
	if key < 0 || key > 0xF {
		return
	}

	c.keys[key] = true

	if c.waitReg >= 0 {
		c.V[c.waitReg] = byte(key)
		c.waitReg = -1
	}
}

func (c *Core) ReleaseKey(key int) {
	if key >= 0 && key <= 0xF {
		c.keys[key] = false
	}
}

// TickTimers decrements DT and ST by one, called by the host at a fixed
// 60Hz rate regardless of instruction execution speed.
func (c *Core) TickTimers() {
	if c.DT > 0 {
		c.DT--
	}

	if c.ST > 0 {
		c.ST--
	}
}

// SoundActive reports whether ST is nonzero, i.e. whether the host should
// be producing sound right now.
func (c *Core) SoundActive() bool { return c.ST > 0 }

// Vblank marks a display refresh boundary: it unblocks any non-instant-
// dxyn variant's Dxyn for the next frame, and pauses execution if the CPU
// has been spinning on a tight 1NNN self-jump since the previous boundary
// (a host-visible convenience, not a change to opcode semantics).
func (c *Core) Vblank() {
	c.drewThisFrame = false

	if c.mode == cpu.Wait {
		c.mode = cpu.Normal
	}

	if c.selfJumpAddr >= 0 && int(c.PC) == c.selfJumpAddr {
		c.mode = cpu.Paused
	}
}

func (c *Core) fetch() (uint16, error) {
	if int(c.PC)+1 >= len(c.Memory) {
		return 0, errors.Errorf("chip8: program counter %#04x out of range", c.PC)
	}

	inst := uint16(c.Memory[c.PC])<<8 | uint16(c.Memory[c.PC+1])
	c.PC += 2

	return inst, nil
}

// Step executes exactly one instruction. If waiting on a key press (FX0A)
// it does nothing and returns nil; the caller should keep calling Step
// (or skip calling it) until PressKey resolves the wait.
func (c *Core) Step() error {
	if c.waitReg >= 0 {
		return nil
	}

	inst, err := c.fetch()
	if err != nil {
		c.mode = cpu.Error
		return err
	}

	for _, e := range c.dispatch {
		if inst&e.mask == e.pattern {
			c.skipCycle = false
			e.exec(c, inst)

			if c.skipCycle {
				return nil
			}

			c.cycles++

			if bp, ok := c.breakpoints[uint32(c.PC)]; ok {
				if !bp.Conditional || c.V[0xF] != 0 {
					if bp.Once {
						delete(c.breakpoints, uint32(c.PC))
					}

					c.mode = cpu.Paused
					return nil
				}
			}

			return nil
		}
	}

	c.mode = cpu.Error
	c.PC -= 2 // rewind so the faulting word is what the debugger sees at PC

	return errors.Errorf("chip8: invalid opcode %#04x at %#04x", inst, c.PC)
}

// cpu.GenericCpu implementation, so the debugger and decompiler can treat
// a running CHIP-8 core the same way as a backend hardware CPU.

func (c *Core) Identifier() string { return "chip8:" + c.Variant.String() }

func (c *Core) Registers() []cpu.Register {
	regs := make([]cpu.Register, 0, 22)

	for i := 0; i < 16; i++ {
		regs = append(regs, cpu.Register{Name: fmt.Sprintf("V%X", i), Width: 8, Value: uint64(c.V[i])})
	}

	regs = append(regs,
		cpu.Register{Name: "I", Width: 16, Value: uint64(c.I)},
		cpu.Register{Name: "DT", Width: 8, Value: uint64(c.DT)},
		cpu.Register{Name: "ST", Width: 8, Value: uint64(c.ST)},
		cpu.Register{Name: "SP", Width: 8, Value: uint64(c.SP)},
	)

	return regs
}

func (c *Core) ProgramCounter() uint32 { return uint32(c.PC) }

func (c *Core) StackDescriptor() cpu.StackDescriptor {
	return cpu.StackDescriptor{EntrySize: 2, GrowsDown: false, BigEndian: true}
}

func (c *Core) ReadMemory(addr uint32) byte {
	if int(addr) >= len(c.Memory) {
		return 0
	}

	return c.Memory[addr]
}

func (c *Core) Disassemble(addr uint32) (string, int) {
	return disassemble(c, uint16(addr))
}

func (c *Core) SetBreakpoint(bp cpu.Breakpoint) {
	c.breakpoints[bp.Address] = Breakpoint{Address: uint16(bp.Address), Reason: bp.Label, Once: bp.Kind == cpu.TransientBreakpoint}
}

func (c *Core) ClearBreakpoint(addr uint32) { delete(c.breakpoints, addr) }

func (c *Core) FindBreakpoint(addr uint32) (cpu.Breakpoint, bool) {
	bp, ok := c.breakpoints[addr]
	if !ok {
		return cpu.Breakpoint{}, false
	}

	return bp.toGeneric(), true
}

func (c *Core) Breakpoints() []cpu.Breakpoint {
	out := make([]cpu.Breakpoint, 0, len(c.breakpoints))
	for _, bp := range c.breakpoints {
		out = append(out, bp.toGeneric())
	}

	return out
}

// SetChip8Breakpoint installs a chip8-specific breakpoint, including
// conditional (VF-gated) breakpoints the generic cpu.Breakpoint shape
// cannot express.
func (c *Core) SetChip8Breakpoint(bp Breakpoint) { c.breakpoints[uint32(bp.Address)] = bp }

func (c *Core) Mode() cpu.Mode     { return c.mode }
func (c *Core) SetMode(m cpu.Mode) { c.mode = m }
func (c *Core) Cycles() int64      { return c.cycles }
func (c *Core) Time() int64        { return c.cycles }
func (c *Core) Idle() bool         { return c.waitReg >= 0 }

// Reset restores the Core to its state immediately after New, reloading
// the font tables and ROM at Base and clearing every register, the stack,
// and the framebuffer. The dispatch table and RNG are left alone since
// neither is part of machine state.
func (c *Core) Reset() {
	rom := append([]byte(nil), c.Memory[c.Base:]...)

	c.Memory = [memSize]byte{}
	c.V = [16]byte{}
	c.I = 0
	c.RPL = [8]byte{}
	for i := range c.Stack {
		c.Stack[i] = 0
	}
	c.SP = 0
	c.DT, c.ST = 0, 0
	c.waitReg = -1
	c.plane = 1
	c.drewThisFrame = false
	c.skipCycle = false
	c.selfJumpAddr = -1
	c.cycles = 0
	c.mode = cpu.Normal
	c.keys = [16]bool{}
	c.audio = audioState{pitch: defaultPitch}

	copy(c.Memory[0:len(font)], font[:])
	copy(c.Memory[bigFontBase:bigFontBase+len(bigFont)], bigFont[:])
	copy(c.Memory[c.Base:], rom)

	c.video.Resize(c.Quirks.ScreenWidth, c.Quirks.ScreenHeight)
	c.PC = c.Base
}

// State snapshots everything needed to restore a Core for the debugger's
// step-back feature, short of the video buffer (cloned separately by the
// caller since it is comparatively large).
type State struct {
	Memory  [memSize]byte
	V       [16]byte
	I       uint16
	RPL     [8]byte
	Stack   []uint16
	SP      byte
	PC      uint16
	DT, ST  byte
	WaitReg int
	Plane   byte
	Cycles  int64
}

func (c *Core) GetState() State {
	return State{
		Memory: c.Memory, V: c.V, I: c.I, RPL: c.RPL, Stack: append([]uint16(nil), c.Stack...), SP: c.SP,
		PC: c.PC, DT: c.DT, ST: c.ST, WaitReg: c.waitReg, Plane: c.plane, Cycles: c.cycles,
	}
}

func (c *Core) SetState(s State) {
	c.Memory, c.V, c.I, c.RPL, c.SP = s.Memory, s.V, s.I, s.RPL, s.SP
	c.Stack = append([]uint16(nil), s.Stack...)
	c.PC, c.DT, c.ST, c.waitReg, c.plane, c.cycles = s.PC, s.DT, s.ST, s.WaitReg, s.Plane, s.Cycles
}
