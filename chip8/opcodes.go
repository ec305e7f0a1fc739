package chip8

import (
	"cadmium/cpu"
	"cadmium/internal/video"
)

// opEntry pairs a fixed opcode mask/pattern with the handler chosen for
// this Core's quirk set. The table is built once per Core in New and
// walked in order on every fetch; handlers that differ by quirk (shift,
// jump, I-increment) are selected here rather than branching on Quirks
// inside the hot path.
type opEntry struct {
	mask, pattern uint16
	exec          func(c *Core, inst uint16)
}

func buildDispatch(q Quirks) []opEntry {
	entries := []opEntry{
		{0xFFFF, 0x00E0, opCLS},
		{0xFFFF, 0x00EE, opRET(q)},
		{0xFFFF, 0x00FB, opScrollRight},
		{0xFFFF, 0x00FC, opScrollLeft},
		{0xFFFF, 0x00FD, opExit},
		{0xFFFF, 0x00FE, opLow},
		{0xFFFF, 0x00FF, opHigh},
		{0xFFF0, 0x00C0, opScrollDown},
		{0xFFF0, 0x00D0, opScrollUp},
		{0xF000, 0x0000, opSys},
		{0xF000, 0x1000, opJump},
		{0xF000, 0x2000, opCall(q)},
		{0xF000, 0x3000, opSkipEqByte},
		{0xF000, 0x4000, opSkipNeByte},
		{0xF00F, 0x5000, opSkipEqReg},
		{0xF00F, 0x5002, opSaveRange},
		{0xF00F, 0x5003, opLoadRange},
		{0xF000, 0x6000, opLoadByte},
		{0xF000, 0x7000, opAddByte},
		{0xF00F, 0x8000, opLoadReg},
		{0xF00F, 0x8001, opOr(q)},
		{0xF00F, 0x8002, opAnd(q)},
		{0xF00F, 0x8003, opXor(q)},
		{0xF00F, 0x8004, opAddReg},
		{0xF00F, 0x8005, opSubReg},
		{0xF00F, 0x8006, opShr(q)},
		{0xF00F, 0x8007, opSubnReg},
		{0xF00F, 0x800E, opShl(q)},
		{0xF00F, 0x9000, opSkipNeReg},
		{0xF000, 0xA000, opLoadI},
		{0xF000, 0xB000, opJumpV0(q)},
		{0xF000, 0xC000, opRandom},
		{0xF000, 0xD000, opDraw(q)},
		{0xF0FF, 0xE09E, opSkipPressed},
		{0xF0FF, 0xE0A1, opSkipNotPressed},
		{0xFFFF, 0xF000, opLoadILong(q)},
		{0xF0FF, 0xF001, opPlane},
		{0xFFFF, 0xF002, opAudio},
		{0xF0FF, 0xF007, opLoadRegDT},
		{0xF0FF, 0xF00A, opWaitKey},
		{0xF0FF, 0xF015, opLoadDTReg},
		{0xF0FF, 0xF018, opLoadSTReg},
		{0xF0FF, 0xF01E, opAddI},
		{0xF0FF, 0xF029, opLoadFont},
		{0xF0FF, 0xF030, opLoadBigFont},
		{0xF0FF, 0xF033, opBCD},
		{0xF0FF, 0xF03A, opPitch},
		{0xF0FF, 0xF055, opStoreRegs(q)},
		{0xF0FF, 0xF065, opLoadRegs(q)},
		{0xF0FF, 0xF075, opStoreRPL},
		{0xF0FF, 0xF085, opLoadRPL},
	}

	return entries
}

func xReg(inst uint16) byte { return byte(inst >> 8 & 0xF) }
func yReg(inst uint16) byte { return byte(inst >> 4 & 0xF) }
func nnn(inst uint16) uint16 { return inst & 0xFFF }
func nn(inst uint16) byte    { return byte(inst & 0xFF) }
func nib(inst uint16) byte   { return byte(inst & 0xF) }

func opCLS(c *Core, inst uint16) { c.video.ClearPlane(c.planeMask()) }

func opRET(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		if c.SP == 0 {
			if !q.CyclicStack {
				c.mode = cpu.Error
				return
			}

			c.SP = byte(len(c.Stack))
		}

		c.SP--
		c.PC = c.Stack[c.SP%byte(len(c.Stack))]
	}
}

func opSys(c *Core, inst uint16) {} // machine-code calls are a hybrid-core concern, ignored here

func opJump(c *Core, inst uint16) {
	addr := c.PC - 2
	target := nnn(inst)

	if target == addr {
		c.selfJumpAddr = int(addr)
	} else {
		c.selfJumpAddr = -1
	}

	c.PC = target
}

func opCall(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		if int(c.SP) >= len(c.Stack) {
			if !q.CyclicStack {
				c.mode = cpu.Error
				return
			}

			c.SP = 0
		}

		c.Stack[c.SP] = c.PC
		c.SP++
		c.PC = nnn(inst)
	}
}

func opSkipEqByte(c *Core, inst uint16) {
	if c.V[xReg(inst)] == nn(inst) {
		c.PC += 2
	}
}

func opSkipNeByte(c *Core, inst uint16) {
	if c.V[xReg(inst)] != nn(inst) {
		c.PC += 2
	}
}

func opSkipEqReg(c *Core, inst uint16) {
	if c.V[xReg(inst)] == c.V[yReg(inst)] {
		c.PC += 2
	}
}

func opSkipNeReg(c *Core, inst uint16) {
	if c.V[xReg(inst)] != c.V[yReg(inst)] {
		c.PC += 2
	}
}

// opSaveRange/opLoadRange implement XO-CHIP's inclusive Vx..Vy memory
// range save/load, which walks the registers in either direction
// depending on whether x <= y.
func opSaveRange(c *Core, inst uint16) {
	x, y := xReg(inst), yReg(inst)
	addr := c.I

	if x <= y {
		for r := x; ; r++ {
			c.Memory[addr] = c.V[r]
			addr++

			if r == y {
				break
			}
		}
	} else {
		for r := x; ; r-- {
			c.Memory[addr] = c.V[r]
			addr++

			if r == y {
				break
			}
		}
	}
}

func opLoadRange(c *Core, inst uint16) {
	x, y := xReg(inst), yReg(inst)
	addr := c.I

	if x <= y {
		for r := x; ; r++ {
			c.V[r] = c.Memory[addr]
			addr++

			if r == y {
				break
			}
		}
	} else {
		for r := x; ; r-- {
			c.V[r] = c.Memory[addr]
			addr++

			if r == y {
				break
			}
		}
	}
}

func opLoadByte(c *Core, inst uint16) { c.V[xReg(inst)] = nn(inst) }
func opAddByte(c *Core, inst uint16)  { c.V[xReg(inst)] += nn(inst) }
func opLoadReg(c *Core, inst uint16)  { c.V[xReg(inst)] = c.V[yReg(inst)] }

func opOr(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		c.V[xReg(inst)] |= c.V[yReg(inst)]

		if q.VFReset {
			c.V[0xF] = 0
		}
	}
}

func opAnd(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		c.V[xReg(inst)] &= c.V[yReg(inst)]

		if q.VFReset {
			c.V[0xF] = 0
		}
	}
}

func opXor(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		c.V[xReg(inst)] ^= c.V[yReg(inst)]

		if q.VFReset {
			c.V[0xF] = 0
		}
	}
}

func opAddReg(c *Core, inst uint16) {
	x, y := xReg(inst), yReg(inst)
	sum := uint16(c.V[x]) + uint16(c.V[y])
	c.V[x] = byte(sum)

	if sum > 0xFF {
		c.V[0xF] = 1
	} else {
		c.V[0xF] = 0
	}
}

func opSubReg(c *Core, inst uint16) {
	x, y := xReg(inst), yReg(inst)
	borrow := c.V[x] < c.V[y]
	c.V[x] -= c.V[y]

	if borrow {
		c.V[0xF] = 0
	} else {
		c.V[0xF] = 1
	}
}

func opSubnReg(c *Core, inst uint16) {
	x, y := xReg(inst), yReg(inst)
	borrow := c.V[y] < c.V[x]
	c.V[x] = c.V[y] - c.V[x]

	if borrow {
		c.V[0xF] = 0
	} else {
		c.V[0xF] = 1
	}
}

func opShr(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		x, y := xReg(inst), yReg(inst)
		src := y
		if q.ShiftVXOnly {
			src = x
		}

		carry := c.V[src] & 1
		c.V[x] = c.V[src] >> 1
		c.V[0xF] = carry
	}
}

func opShl(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		x, y := xReg(inst), yReg(inst)
		src := y
		if q.ShiftVXOnly {
			src = x
		}

		carry := (c.V[src] & 0x80) >> 7
		c.V[x] = c.V[src] << 1
		c.V[0xF] = carry
	}
}

func opLoadI(c *Core, inst uint16) { c.I = nnn(inst) }

func opJumpV0(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		if q.Jump0BXNN {
			c.PC = nnn(inst) + uint16(c.V[xReg(inst)])
		} else {
			c.PC = nnn(inst) + uint16(c.V[0])
		}
	}
}

func opRandom(c *Core, inst uint16) {
	c.V[xReg(inst)] = byte(c.rng.Intn(256)) & nn(inst)
}

// opDraw implements Dxyn. On variants without instant-dxyn, only one draw
// is allowed per display refresh: a second draw within the same frame
// rewinds PC to retry the same instruction at the next Vblank, charging
// zero cycles in the meantime.
func opDraw(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		if !q.InstantDxyn && c.drewThisFrame {
			c.PC -= 2
			c.mode = cpu.Wait
			c.skipCycle = true
			return
		}

		if c.mode == cpu.Wait {
			c.mode = cpu.Normal
		}

		drawSprite(c, q, c.V[xReg(inst)], c.V[yReg(inst)], nib(inst))
		c.drewThisFrame = true
	}
}

func opSkipPressed(c *Core, inst uint16) {
	if c.keys[c.V[xReg(inst)]&0xF] {
		c.PC += 2
	}
}

func opSkipNotPressed(c *Core, inst uint16) {
	if !c.keys[c.V[xReg(inst)]&0xF] {
		c.PC += 2
	}
}

// opLoadILong implements XO-CHIP's F000 NNNN: the only 4-byte CHIP-8
// instruction, loading a full 16-bit address into I. On a variant that
// doesn't support it, F000 is an illegal opcode (EmulationFatal).
func opLoadILong(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		if !q.AllowF000 {
			c.mode = cpu.Error
			return
		}

		if int(c.PC)+1 >= len(c.Memory) {
			c.mode = cpu.Error
			return
		}

		c.I = uint16(c.Memory[c.PC])<<8 | uint16(c.Memory[c.PC+1])
		c.PC += 2
	}
}

func opPlane(c *Core, inst uint16) { c.plane = xReg(inst) & 0xF }

func opAudio(c *Core, inst uint16) { c.loadAudioPattern() }

func opLoadRegDT(c *Core, inst uint16) { c.V[xReg(inst)] = c.DT }
func opLoadDTReg(c *Core, inst uint16) { c.DT = c.V[xReg(inst)] }
func opLoadSTReg(c *Core, inst uint16) { c.ST = c.V[xReg(inst)] }
func opAddI(c *Core, inst uint16)      { c.I += uint16(c.V[xReg(inst)]) }

func opWaitKey(c *Core, inst uint16) { c.waitReg = int(xReg(inst)) }

func opLoadFont(c *Core, inst uint16) {
	c.I = fontBase + uint16(c.V[xReg(inst)]&0xF)*5
}

func opLoadBigFont(c *Core, inst uint16) {
	c.I = bigFontBase + uint16(c.V[xReg(inst)]&0xF)*10
}

func opBCD(c *Core, inst uint16) {
	v := c.V[xReg(inst)]
	c.Memory[c.I] = v / 100
	c.Memory[c.I+1] = (v / 10) % 10
	c.Memory[c.I+2] = v % 10
}

func opPitch(c *Core, inst uint16) { c.audio.pitch = c.V[xReg(inst)] }

// iAdvance computes FX55/FX65's post-op I value for register index x
// according to the three-way I-increment quirk: full X+1 by default
// (original CHIP-8), X only (CHIP-48), or unchanged (SUPER-CHIP 1.1+).
func iAdvance(q Quirks, i uint16, x byte) uint16 {
	switch {
	case q.IUnchanged:
		return i
	case q.IIncrementByX:
		return i + uint16(x)
	default:
		return i + uint16(x) + 1
	}
}

func opStoreRegs(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		x := xReg(inst)

		for r := byte(0); r <= x; r++ {
			c.Memory[c.I+uint16(r)] = c.V[r]
		}

		c.I = iAdvance(q, c.I, x)
	}
}

func opLoadRegs(q Quirks) func(c *Core, inst uint16) {
	return func(c *Core, inst uint16) {
		x := xReg(inst)

		for r := byte(0); r <= x; r++ {
			c.V[r] = c.Memory[c.I+uint16(r)]
		}

		c.I = iAdvance(q, c.I, x)
	}
}

func opStoreRPL(c *Core, inst uint16) {
	x := xReg(inst)
	for r := byte(0); r <= x && r < 8; r++ {
		c.RPL[r] = c.V[r]
	}
}

func opLoadRPL(c *Core, inst uint16) {
	x := xReg(inst)
	for r := byte(0); r <= x && r < 8; r++ {
		c.V[r] = c.RPL[r]
	}
}

func opScrollRight(c *Core, inst uint16) { c.video.Scroll(video.Right, 4, c.planeMask()) }
func opScrollLeft(c *Core, inst uint16)  { c.video.Scroll(video.Left, 4, c.planeMask()) }
func opScrollDown(c *Core, inst uint16)  { c.video.Scroll(video.Down, int(nib(inst)), c.planeMask()) }
func opScrollUp(c *Core, inst uint16)    { c.video.Scroll(video.Up, int(nib(inst)), c.planeMask()) }

// opExit implements the SUPER-CHIP/XO-CHIP 00FD instruction, which halts
// the program; the host observes this as Paused and stops calling Step.
func opExit(c *Core, inst uint16) { c.mode = cpu.Paused }

func opLow(c *Core, inst uint16) {
	c.video.Resize(c.Quirks.ScreenWidth, c.Quirks.ScreenHeight)
}

func opHigh(c *Core, inst uint16) {
	if !c.Quirks.HasHires {
		return
	}

	c.video.Resize(c.Quirks.ScreenWidth*2, c.Quirks.ScreenHeight*2)
}

// planeMask returns the bit-plane selection mask drawing/scrolling/clear
// opcodes should act on: the XO-CHIP-selected plane for multi-plane
// variants, or plane 0 for everything else.
func (c *Core) planeMask() byte {
	if c.Quirks.Planes > 1 {
		return c.plane
	}

	return 1
}
