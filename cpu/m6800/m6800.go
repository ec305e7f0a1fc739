// Package m6800 implements a cycle-accurate Motorola 6800 core, the backend
// CPU for the DREAM6800 real-hardware emulation.
package m6800

import (
	"fmt"

	"cadmium/cpu"
)

// Bus is the memory/IO interface the 6800 core reads and writes through.
type Bus interface {
	ReadByte(addr uint16) byte
	WriteByte(addr uint16, v byte)
	// DummyRead performs a VMA=0 access: the real bus timing happens (for
	// devices that latch on any bus cycle) but the value is discarded.
	DummyRead(addr uint16)
}

// Condition code bits (the 6800's CCR, bits 6 and 7 are always 1).
const (
	flagC = 1 << 0
	flagV = 1 << 1
	flagZ = 1 << 2
	flagN = 1 << 3
	flagI = 1 << 4
	flagH = 1 << 5
)

// CPU is a Motorola 6800 execution unit.
type CPU struct {
	A, B   byte
	X      uint16
	SP     uint16
	PC     uint16
	CCR    byte
	bus    Bus
	cycles int64
	time   int64
	mode   cpu.Mode

	halted bool
	irq    bool
	nmi    bool

	breakpoints map[uint32]cpu.Breakpoint
}

// New creates a 6800 CPU attached to bus.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus, breakpoints: map[uint32]cpu.Breakpoint{}}
	c.Reset()

	return c
}

// Reset loads the reset vector at 0xFFFE into PC and sets CCR's reserved
// bits 6 and 7 plus the interrupt-mask bit, per the 6800 datasheet.
func (c *CPU) Reset() {
	c.A, c.B = 0, 0
	c.X, c.SP = 0, 0
	c.CCR = 0b11010000
	c.PC = c.readWord(0xFFFE)
	c.cycles = 0
	c.time = 0
	c.mode = cpu.Normal
	c.halted = false
	c.irq = false
	c.nmi = false
}

func (c *CPU) readWord(addr uint16) uint16 {
	hi := c.bus.ReadByte(addr)
	lo := c.bus.ReadByte(addr + 1)

	return uint16(hi)<<8 | uint16(lo)
}

// RequestIRQ and RequestNMI latch a pending interrupt, serviced at the next
// instruction boundary.
func (c *CPU) RequestIRQ() { c.irq = true }
func (c *CPU) RequestNMI() { c.nmi = true }

func (c *CPU) getFlag(mask byte) bool { return c.CCR&mask != 0 }

func (c *CPU) setFlag(mask byte, v bool) {
	if v {
		c.CCR |= mask
	} else {
		c.CCR &^= mask
	}
}

func (c *CPU) push(v byte) {
	c.bus.WriteByte(c.SP, v)
	c.SP--
}

func (c *CPU) pull() byte {
	c.SP++
	return c.bus.ReadByte(c.SP)
}

func (c *CPU) serviceInterrupt(nmi bool, vector uint16) {
	c.push(byte(c.PC))
	c.push(byte(c.PC >> 8))
	c.push(byte(c.X))
	c.push(byte(c.X >> 8))
	c.push(c.A)
	c.push(c.B)
	c.push(c.CCR)

	if !nmi {
		c.setFlag(flagI, true)
	}

	c.PC = c.readWord(vector)
	c.cycles += 12
}

// Step executes exactly one instruction, servicing a pending interrupt
// first if the interrupt-enable flag allows it.
func (c *CPU) Step() error {
	if c.halted {
		return nil
	}

	if c.nmi {
		c.nmi = false
		c.serviceInterrupt(true, 0xFFFC)

		return nil
	}

	if c.irq && !c.getFlag(flagI) {
		c.irq = false
		c.serviceInterrupt(false, 0xFFF8)

		return nil
	}

	opcode := c.fetch()
	entry, ok := opcodeTable[opcode]

	if !ok {
		c.mode = cpu.Error

		return fmt.Errorf("m6800: illegal opcode %#02x at %#04x", opcode, c.PC-1)
	}

	cycles := entry.cycles

	operand, extraCycles, err := c.fetchOperand(entry.mode)
	if err != nil {
		c.mode = cpu.Error
		return err
	}

	entry.exec(c, operand)
	c.cycles += int64(cycles + extraCycles)
	c.time = c.cycles

	return nil
}

func (c *CPU) fetch() byte {
	v := c.bus.ReadByte(c.PC)
	c.PC++

	return v
}

func (c *CPU) fetch16() uint16 {
	hi := c.fetch()
	lo := c.fetch()

	return uint16(hi)<<8 | uint16(lo)
}

// operand carries the addressing-mode-resolved operand address (for memory
// ops) and accumulator selector (for inherent ops) to a shared exec
// function, so one handler per mnemonic covers every addressing mode it
// supports.
type operand struct {
	addr      uint16
	hasAddr   bool
	immediate byte
	isWord    bool
	immWord   uint16
}

func (c *CPU) fetchOperand(mode addrMode) (operand, int, error) {
	switch mode {
	case modeInherent:
		return operand{}, 0, nil
	case modeImmediate:
		return operand{immediate: c.fetch()}, 0, nil
	case modeImmediateWord:
		return operand{immWord: c.fetch16(), isWord: true}, 0, nil
	case modeDirect:
		return operand{addr: uint16(c.fetch()), hasAddr: true}, 0, nil
	case modeExtended:
		return operand{addr: c.fetch16(), hasAddr: true}, 0, nil
	case modeIndexed:
		offset := c.fetch()
		return operand{addr: c.X + uint16(offset), hasAddr: true}, 0, nil
	case modeRelative:
		offset := int8(c.fetch())
		target := uint16(int32(c.PC) + int32(offset))

		return operand{addr: target, hasAddr: true}, 0, nil
	default:
		return operand{}, 0, fmt.Errorf("m6800: unknown addressing mode %d", mode)
	}
}

// readOperand8/writeOperand8 adapt an operand to an 8-bit memory value.
func (c *CPU) readOperand8(op operand) byte {
	if op.hasAddr {
		return c.bus.ReadByte(op.addr)
	}

	return op.immediate
}

func (c *CPU) writeOperand8(op operand, v byte) {
	if op.hasAddr {
		c.bus.WriteByte(op.addr, v)
	}
}

// Identifier, Registers, ProgramCounter, etc. satisfy cpu.GenericCpu.
func (c *CPU) Identifier() string { return "m6800" }

func (c *CPU) Registers() []cpu.Register {
	return []cpu.Register{
		{Name: "A", Width: 8, Value: uint64(c.A)},
		{Name: "B", Width: 8, Value: uint64(c.B)},
		{Name: "X", Width: 16, Value: uint64(c.X)},
		{Name: "SP", Width: 16, Value: uint64(c.SP)},
		{Name: "PC", Width: 16, Value: uint64(c.PC)},
		{Name: "CCR", Width: 8, Value: uint64(c.CCR)},
	}
}

func (c *CPU) ProgramCounter() uint32 { return uint32(c.PC) }

func (c *CPU) StackDescriptor() cpu.StackDescriptor {
	return cpu.StackDescriptor{EntrySize: 1, GrowsDown: true, BigEndian: true}
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
func (c *CPU) Time() int64        { return c.time }

// Halted reports whether the core executed an HCF ("halt and catch fire");
// nothing beyond halting fetch is guaranteed about its timing.
func (c *CPU) Halted() bool { return c.halted }

// GetState/SetState snapshot the full register file for the step-back
// debugger.
type State struct {
	A, B        byte
	X, SP, PC   uint16
	CCR         byte
	Cycles      int64
	Halted      bool
	IRQ, NMI    bool
}

func (c *CPU) GetState() State {
	return State{A: c.A, B: c.B, X: c.X, SP: c.SP, PC: c.PC, CCR: c.CCR, Cycles: c.cycles, Halted: c.halted, IRQ: c.irq, NMI: c.nmi}
}

func (c *CPU) SetState(s State) {
	c.A, c.B, c.X, c.SP, c.PC, c.CCR = s.A, s.B, s.X, s.SP, s.PC, s.CCR
	c.cycles = s.Cycles
	c.halted = s.Halted
	c.irq = s.IRQ
	c.nmi = s.NMI
}
