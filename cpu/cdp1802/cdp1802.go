// Package cdp1802 implements a cycle-accurate RCA CDP1802 core, the backend
// CPU for the COSMAC VIP and ETI-660 real-hardware emulations.
package cdp1802

import (
	"fmt"

	"cadmium/cpu"
)

// Bus is the memory/IO interface the 1802 core reads and writes through.
type Bus interface {
	ReadByte(addr uint16) byte
	WriteByte(addr uint16, v byte)
	DummyRead(addr uint16)
	// InputPort/OutputPort implement the 1802's N-line-selected 8 I/O
	// ports (INP/OUT instructions).
	InputPort(n int) byte
	OutputPort(n int, v byte)
}

// CPU is an RCA CDP1802 execution unit. Sixteen 16-bit scratchpad registers
// R0..RF; D, DF, B, T are 8-bit; P and X are 4-bit register-file selectors.
type CPU struct {
	R [16]uint16
	D byte
	DF byte // 0 or 1
	B  byte
	T  byte
	P  byte // 0..15, selects the program-counter register
	X  byte // 0..15, selects the data-pointer register

	IE bool // interrupt enable
	Q  bool // the Q output line

	idle   bool
	bus    Bus
	cycles int64
	mode   cpu.Mode

	irqPending bool

	breakpoints map[uint32]cpu.Breakpoint
}

// New creates a 1802 CPU attached to bus. Registers are undefined on real
// hardware reset except P=X=0 and R0=0; cadmium zeroes everything for
// determinism.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus, breakpoints: map[uint32]cpu.Breakpoint{}}
	c.Reset()

	return c
}

func (c *CPU) Reset() {
	c.R = [16]uint16{}
	c.D, c.DF, c.B, c.T = 0, 0, 0, 0
	c.P, c.X = 0, 0
	c.IE = true
	c.Q = false
	c.idle = false
	c.cycles = 0
	c.mode = cpu.Normal
	c.irqPending = false
}

// RequestInterrupt latches a pending interrupt, serviced at the next
// instruction boundary if IE is set.
func (c *CPU) RequestInterrupt() { c.irqPending = true }

func (c *CPU) pc() uint16      { return c.R[c.P] }
func (c *CPU) setPC(v uint16)  { c.R[c.P] = v }
func (c *CPU) dataPtr() uint16 { return c.R[c.X] }

func (c *CPU) fetch() byte {
	v := c.bus.ReadByte(c.pc())
	c.R[c.P]++

	return v
}

// Step executes exactly one instruction, or services a pending interrupt
// (IDL/opcode 00 wakes the CPU the same way).
func (c *CPU) Step() error {
	if c.irqPending && c.IE {
		c.irqPending = false
		c.idle = false
		c.T = c.X<<4 | c.P
		c.X = 2
		c.P = 1
		c.IE = false
		c.cycles += 3

		return nil
	}

	if c.idle {
		c.cycles++
		return nil
	}

	opcode := c.fetch()
	hi, lo := opcode>>4, opcode&0xF

	exec := dispatch[hi][lo]
	if exec == nil {
		c.mode = cpu.Error
		return fmt.Errorf("cdp1802: illegal opcode %#02x at %#04x", opcode, c.pc()-1)
	}

	cycles := exec(c, lo)
	c.cycles += int64(cycles)

	return nil
}

func (c *CPU) Identifier() string { return "cdp1802" }

func (c *CPU) Registers() []cpu.Register {
	regs := make([]cpu.Register, 0, 22)

	for i := 0; i < 16; i++ {
		regs = append(regs, cpu.Register{Name: fmt.Sprintf("R%X", i), Width: 16, Value: uint64(c.R[i])})
	}

	regs = append(regs,
		cpu.Register{Name: "D", Width: 8, Value: uint64(c.D)},
		cpu.Register{Name: "DF", Width: 1, Value: uint64(c.DF)},
		cpu.Register{Name: "P", Width: 4, Value: uint64(c.P)},
		cpu.Register{Name: "X", Width: 4, Value: uint64(c.X)},
		cpu.Register{Name: "T", Width: 8, Value: uint64(c.T)},
	)

	return regs
}

func (c *CPU) ProgramCounter() uint32 { return uint32(c.pc()) }

func (c *CPU) StackDescriptor() cpu.StackDescriptor {
	// The 1802 has no hardware stack; subroutine linkage is by convention
	// (typically SEP R3/R4 pairs). We expose R2 as the "stack" register
	// since that's the VIP/ETI-660 monitor convention.
	return cpu.StackDescriptor{EntrySize: 2, GrowsDown: true, BigEndian: true}
}

func (c *CPU) ReadMemory(addr uint32) byte { return c.bus.ReadByte(uint16(addr)) }

func (c *CPU) Disassemble(addr uint32) (string, int) {
	return Disassemble(c.bus, uint16(addr))
}

func (c *CPU) SetBreakpoint(bp cpu.Breakpoint) { c.breakpoints[bp.Address] = bp }
func (c *CPU) ClearBreakpoint(addr uint32)     { delete(c.breakpoints, addr) }

func (c *CPU) FindBreakpoint(addr uint32) (cpu.Breakpoint, bool) {
	bp, ok := c.breakpoints[addr]
	return bp, ok
}

func (c *CPU) Breakpoints() []cpu.Breakpoint {
	out := make([]cpu.Breakpoint, 0, len(c.breakpoints))
	for _, bp := range c.breakpoints {
		out = append(out, bp)
	}

	return out
}

func (c *CPU) Mode() cpu.Mode     { return c.mode }
func (c *CPU) SetMode(m cpu.Mode) { c.mode = m }
func (c *CPU) Cycles() int64      { return c.cycles }
func (c *CPU) Time() int64        { return c.cycles }
func (c *CPU) Idle() bool         { return c.idle }

// State snapshots the full register file for the step-back debugger.
type State struct {
	R          [16]uint16
	D, DF, B   byte
	T, P, X    byte
	IE, Q, Idle bool
	Cycles     int64
}

func (c *CPU) GetState() State {
	return State{R: c.R, D: c.D, DF: c.DF, B: c.B, T: c.T, P: c.P, X: c.X, IE: c.IE, Q: c.Q, Idle: c.idle, Cycles: c.cycles}
}

func (c *CPU) SetState(s State) {
	c.R, c.D, c.DF, c.B, c.T, c.P, c.X = s.R, s.D, s.DF, s.B, s.T, s.P, s.X
	c.IE, c.Q, c.idle, c.cycles = s.IE, s.Q, s.Idle, s.Cycles
}
