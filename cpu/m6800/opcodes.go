package m6800

import "cadmium/cpu"

type addrMode int

const (
	modeInherent addrMode = iota
	modeImmediate
	modeImmediateWord
	modeDirect
	modeIndexed
	modeExtended
	modeRelative
)

type opcodeEntry struct {
	mnemonic string
	mode     addrMode
	cycles   int
	exec     func(c *CPU, op operand)
}

var opcodeTable = map[byte]opcodeEntry{}

func reg(opcode byte, mnemonic string, mode addrMode, cycles int, exec func(c *CPU, op operand)) {
	opcodeTable[opcode] = opcodeEntry{mnemonic: mnemonic, mode: mode, cycles: cycles, exec: exec}
}

// accumulator selects A (0) or B (1) for the dual-accumulator opcodes.
func getAcc(c *CPU, sel int) byte {
	if sel == 0 {
		return c.A
	}

	return c.B
}

func setAcc(c *CPU, sel int, v byte) {
	if sel == 0 {
		c.A = v
	} else {
		c.B = v
	}
}

func accName(sel int) string {
	if sel == 0 {
		return "A"
	}

	return "B"
}

func (c *CPU) setNZ8(v byte) {
	c.setFlag(flagZ, v == 0)
	c.setFlag(flagN, v&0x80 != 0)
}

func (c *CPU) setNZ16(v uint16) {
	c.setFlag(flagZ, v == 0)
	c.setFlag(flagN, v&0x8000 != 0)
}

func init() {
	registerInherent()
	registerBranches()
	registerAccumulatorOps()
	registerMemoryRMW()
	registerIndexStackOps()
	registerHCF()
}

func registerInherent() {
	reg(0x01, "NOP", modeInherent, 2, func(c *CPU, op operand) {})
	reg(0x06, "TAP", modeInherent, 2, func(c *CPU, op operand) { c.CCR = c.A | 0b11000000 })
	reg(0x07, "TPA", modeInherent, 2, func(c *CPU, op operand) { c.A = c.CCR })
	reg(0x08, "INX", modeInherent, 4, func(c *CPU, op operand) {
		c.X++
		c.setFlag(flagZ, c.X == 0)
	})
	reg(0x09, "DEX", modeInherent, 4, func(c *CPU, op operand) {
		c.X--
		c.setFlag(flagZ, c.X == 0)
	})
	reg(0x0A, "CLV", modeInherent, 2, func(c *CPU, op operand) { c.setFlag(flagV, false) })
	reg(0x0B, "SEV", modeInherent, 2, func(c *CPU, op operand) { c.setFlag(flagV, true) })
	reg(0x0C, "CLC", modeInherent, 2, func(c *CPU, op operand) { c.setFlag(flagC, false) })
	reg(0x0D, "SEC", modeInherent, 2, func(c *CPU, op operand) { c.setFlag(flagC, true) })
	reg(0x0E, "CLI", modeInherent, 2, func(c *CPU, op operand) { c.setFlag(flagI, false) })
	reg(0x0F, "SEI", modeInherent, 2, func(c *CPU, op operand) { c.setFlag(flagI, true) })
	reg(0x10, "SBA", modeInherent, 2, func(c *CPU, op operand) {
		r := c.A - c.B
		c.setFlag(flagC, c.A < c.B)
		c.setNZ8(r)
		c.A = r
	})
	reg(0x11, "CBA", modeInherent, 2, func(c *CPU, op operand) {
		r := c.A - c.B
		c.setFlag(flagC, c.A < c.B)
		c.setNZ8(r)
	})
	reg(0x16, "TAB", modeInherent, 2, func(c *CPU, op operand) { c.B = c.A; c.setNZ8(c.B) })
	reg(0x17, "TBA", modeInherent, 2, func(c *CPU, op operand) { c.A = c.B; c.setNZ8(c.A) })
	reg(0x19, "DAA", modeInherent, 2, execDAA)
	reg(0x1B, "ABA", modeInherent, 2, func(c *CPU, op operand) {
		sum := uint16(c.A) + uint16(c.B)
		c.setFlag(flagC, sum > 0xFF)
		c.setFlag(flagV, (c.A^byte(sum))&(c.B^byte(sum))&0x80 != 0)
		c.A = byte(sum)
		c.setNZ8(c.A)
	})

	reg(0x39, "RTS", modeInherent, 5, func(c *CPU, op operand) {
		hi := c.pull()
		lo := c.pull()
		c.PC = uint16(hi)<<8 | uint16(lo)
	})
	reg(0x3A, "ABX", modeInherent, 3, func(c *CPU, op operand) { c.X += uint16(c.B) })
	reg(0x3B, "RTI", modeInherent, 10, func(c *CPU, op operand) {
		c.CCR = c.pull()
		c.B = c.pull()
		c.A = c.pull()
		xh, xl := c.pull(), c.pull()
		c.X = uint16(xh)<<8 | uint16(xl)
		pch, pcl := c.pull(), c.pull()
		c.PC = uint16(pch)<<8 | uint16(pcl)
	})
	reg(0x3E, "WAI", modeInherent, 9, func(c *CPU, op operand) { c.mode = cpu.Wait })
	reg(0x3F, "SWI", modeInherent, 12, func(c *CPU, op operand) {
		c.push(byte(c.PC))
		c.push(byte(c.PC >> 8))
		c.push(byte(c.X))
		c.push(byte(c.X >> 8))
		c.push(c.A)
		c.push(c.B)
		c.push(c.CCR)
		c.setFlag(flagI, true)
		c.PC = c.readWord(0xFFFA)
	})
}

func execDAA(c *CPU, op operand) {
	a := c.A
	carry := c.getFlag(flagC)
	half := c.getFlag(flagH)

	lowNibble := a & 0x0F
	highNibble := a >> 4

	adjust := byte(0)

	if half || lowNibble > 9 {
		adjust |= 0x06
	}

	if carry || highNibble > 9 || (highNibble == 9 && lowNibble > 9) {
		adjust |= 0x60
		carry = true
	}

	sum := uint16(a) + uint16(adjust)
	c.A = byte(sum)
	c.setFlag(flagC, carry || sum > 0xFF)
	c.setNZ8(c.A)
}

func registerBranches() {
	type br struct {
		op   byte
		name string
		cond func(c *CPU) bool
	}

	branches := []br{
		{0x20, "BRA", func(c *CPU) bool { return true }},
		{0x22, "BHI", func(c *CPU) bool { return !c.getFlag(flagC) && !c.getFlag(flagZ) }},
		{0x23, "BLS", func(c *CPU) bool { return c.getFlag(flagC) || c.getFlag(flagZ) }},
		{0x24, "BCC", func(c *CPU) bool { return !c.getFlag(flagC) }},
		{0x25, "BCS", func(c *CPU) bool { return c.getFlag(flagC) }},
		{0x26, "BNE", func(c *CPU) bool { return !c.getFlag(flagZ) }},
		{0x27, "BEQ", func(c *CPU) bool { return c.getFlag(flagZ) }},
		{0x28, "BVC", func(c *CPU) bool { return !c.getFlag(flagV) }},
		{0x29, "BVS", func(c *CPU) bool { return c.getFlag(flagV) }},
		{0x2A, "BPL", func(c *CPU) bool { return !c.getFlag(flagN) }},
		{0x2B, "BMI", func(c *CPU) bool { return c.getFlag(flagN) }},
		{0x2C, "BGE", func(c *CPU) bool { return c.getFlag(flagN) == c.getFlag(flagV) }},
		{0x2D, "BLT", func(c *CPU) bool { return c.getFlag(flagN) != c.getFlag(flagV) }},
		{0x2E, "BGT", func(c *CPU) bool { return !c.getFlag(flagZ) && c.getFlag(flagN) == c.getFlag(flagV) }},
		{0x2F, "BLE", func(c *CPU) bool { return c.getFlag(flagZ) || c.getFlag(flagN) != c.getFlag(flagV) }},
	}

	for _, b := range branches {
		cond := b.cond
		reg(b.op, b.name, modeRelative, 4, func(c *CPU, op operand) {
			if cond(c) {
				c.PC = op.addr
			}
		})
	}

	reg(0x8D, "BSR", modeRelative, 8, func(c *CPU, op operand) {
		c.push(byte(c.PC))
		c.push(byte(c.PC >> 8))
		c.PC = op.addr
	})
}

// registerAccumulatorOps wires LDAA/LDAB, STAA/STAB, ADDA/ADDB, ADCA/ADCB,
// SUBA/SUBB, SBCA/SBCB, ANDA/ANDB, ORAA/ORAB, EORA/EORB, CMPA/CMPB, BITA/BITB
// across immediate/direct/indexed/extended addressing, plus the inherent
// single-accumulator ops (CLR/COM/NEG/LSR/ROR/ASR/ASL/ROL/DEC/INC/TST/PSH/PUL).
func registerAccumulatorOps() {
	// immediate/direct/indexed/extended opcodes for A, with B = A+0x40
	type variant struct {
		mode addrMode
		opA  byte
	}

	def := func(name string, variants []variant, exec func(c *CPU, sel int, v byte) byte, writesBack bool, cyc map[addrMode][2]int) {
		for _, vr := range variants {
			mode := vr.mode
			cycles := cyc[mode]

			for sel := 0; sel < 2; sel++ {
				opcode := vr.opA
				if sel == 1 {
					opcode += 0x40
				}

				sel := sel
				mode := mode
				name := name

				reg(opcode, name+accName(sel), mode, cycles[sel], func(c *CPU, op operand) {
					v := c.readOperand8(op)
					result := exec(c, sel, v)

					if writesBack {
						setAcc(c, sel, result)
					}
				})
			}
		}
	}

	sameCyc := func(imm, dir, idx, ext int) map[addrMode][2]int {
		return map[addrMode][2]int{
			modeImmediate: {imm, imm},
			modeDirect:    {dir, dir},
			modeIndexed:   {idx, idx},
			modeExtended:  {ext, ext},
		}
	}

	all4 := func(opImm, opDir, opIdx, opExt byte) []variant {
		return []variant{
			{modeImmediate, opImm}, {modeDirect, opDir}, {modeIndexed, opIdx}, {modeExtended, opExt},
		}
	}

	def("SUB", all4(0x80, 0x90, 0xA0, 0xB0), func(c *CPU, sel int, v byte) byte {
		a := getAcc(c, sel)
		r := a - v
		c.setFlag(flagC, a < v)
		c.setFlag(flagV, (a^v)&(a^r)&0x80 != 0)
		c.setNZ8(r)

		return r
	}, true, sameCyc(2, 3, 5, 4))

	def("CMP", all4(0x81, 0x91, 0xA1, 0xB1), func(c *CPU, sel int, v byte) byte {
		a := getAcc(c, sel)
		r := a - v
		c.setFlag(flagC, a < v)
		c.setFlag(flagV, (a^v)&(a^r)&0x80 != 0)
		c.setNZ8(r)

		return a // CMP does not write back
	}, false, sameCyc(2, 3, 5, 4))

	def("SBC", all4(0x82, 0x92, 0xA2, 0xB2), func(c *CPU, sel int, v byte) byte {
		a := getAcc(c, sel)
		borrow := byte(0)
		if c.getFlag(flagC) {
			borrow = 1
		}
		r := a - v - borrow
		c.setFlag(flagC, uint16(a) < uint16(v)+uint16(borrow))
		c.setFlag(flagV, (a^v)&(a^r)&0x80 != 0)
		c.setNZ8(r)

		return r
	}, true, sameCyc(2, 3, 5, 4))

	def("AND", all4(0x84, 0x94, 0xA4, 0xB4), func(c *CPU, sel int, v byte) byte {
		r := getAcc(c, sel) & v
		c.setFlag(flagV, false)
		c.setNZ8(r)

		return r
	}, true, sameCyc(2, 3, 5, 4))

	def("BIT", all4(0x85, 0x95, 0xA5, 0xB5), func(c *CPU, sel int, v byte) byte {
		r := getAcc(c, sel) & v
		c.setFlag(flagV, false)
		c.setNZ8(r)

		return getAcc(c, sel)
	}, false, sameCyc(2, 3, 5, 4))

	def("LDA", []variant{{modeImmediate, 0x86}, {modeDirect, 0x96}, {modeIndexed, 0xA6}, {modeExtended, 0xB6}},
		func(c *CPU, sel int, v byte) byte {
			c.setFlag(flagV, false)
			c.setNZ8(v)

			return v
		}, true, sameCyc(2, 3, 5, 4))

	def("EOR", all4(0x88, 0x98, 0xA8, 0xB8), func(c *CPU, sel int, v byte) byte {
		r := getAcc(c, sel) ^ v
		c.setFlag(flagV, false)
		c.setNZ8(r)

		return r
	}, true, sameCyc(2, 3, 5, 4))

	def("ADC", all4(0x89, 0x99, 0xA9, 0xB9), func(c *CPU, sel int, v byte) byte {
		a := getAcc(c, sel)
		carry := byte(0)
		if c.getFlag(flagC) {
			carry = 1
		}
		sum := uint16(a) + uint16(v) + uint16(carry)
		r := byte(sum)
		c.setFlag(flagC, sum > 0xFF)
		c.setFlag(flagV, (a^v^0x80)&(a^r)&0x80 != 0)
		c.setFlag(flagH, (a&0xF)+(v&0xF)+carry > 0xF)
		c.setNZ8(r)

		return r
	}, true, sameCyc(2, 3, 5, 4))

	def("ORA", all4(0x8A, 0x9A, 0xAA, 0xBA), func(c *CPU, sel int, v byte) byte {
		r := getAcc(c, sel) | v
		c.setFlag(flagV, false)
		c.setNZ8(r)

		return r
	}, true, sameCyc(2, 3, 5, 4))

	def("ADD", all4(0x8B, 0x9B, 0xAB, 0xBB), func(c *CPU, sel int, v byte) byte {
		a := getAcc(c, sel)
		sum := uint16(a) + uint16(v)
		r := byte(sum)
		c.setFlag(flagC, sum > 0xFF)
		c.setFlag(flagV, (a^v^0x80)&(a^r)&0x80 != 0)
		c.setFlag(flagH, (a&0xF)+(v&0xF) > 0xF)
		c.setNZ8(r)

		return r
	}, true, sameCyc(2, 3, 5, 4))

	// STAA/STAB: no immediate mode, writes accumulator to memory.
	for sel := 0; sel < 2; sel++ {
		sel := sel
		base := []struct {
			mode   addrMode
			opcode byte
			cycles int
		}{
			{modeDirect, 0x97, 4}, {modeIndexed, 0xA7, 6}, {modeExtended, 0xB7, 5},
		}

		for _, b := range base {
			opcode := b.opcode
			if sel == 1 {
				opcode += 0x40
			}

			mode := b.mode
			cycles := b.cycles

			reg(opcode, "STA"+accName(sel), mode, cycles, func(c *CPU, op operand) {
				v := getAcc(c, sel)
				c.writeOperand8(op, v)
				c.setFlag(flagV, false)
				c.setNZ8(v)
			})
		}
	}

	// inherent single-accumulator ops: NEG/COM/LSR/ROR/ASR/ASL/ROL/DEC/INC/TST/CLR/PSH/PUL
	inherentBase := []struct {
		name   string
		opcode byte
		exec   func(c *CPU, sel int)
	}{
		{"NEG", 0x40, func(c *CPU, sel int) {
			v := getAcc(c, sel)
			r := -v
			c.setFlag(flagC, v != 0)
			c.setFlag(flagV, v == 0x80)
			c.setNZ8(r)
			setAcc(c, sel, r)
		}},
		{"COM", 0x43, func(c *CPU, sel int) {
			r := ^getAcc(c, sel)
			c.setFlag(flagC, true)
			c.setFlag(flagV, false)
			c.setNZ8(r)
			setAcc(c, sel, r)
		}},
		{"LSR", 0x44, func(c *CPU, sel int) {
			v := getAcc(c, sel)
			c.setFlag(flagC, v&1 != 0)
			r := v >> 1
			c.setFlag(flagN, false)
			c.setFlag(flagZ, r == 0)
			c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))
			setAcc(c, sel, r)
		}},
		{"ROR", 0x46, func(c *CPU, sel int) {
			v := getAcc(c, sel)
			carryIn := byte(0)
			if c.getFlag(flagC) {
				carryIn = 0x80
			}
			c.setFlag(flagC, v&1 != 0)
			r := (v >> 1) | carryIn
			c.setNZ8(r)
			c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))
			setAcc(c, sel, r)
		}},
		{"ASR", 0x47, func(c *CPU, sel int) {
			v := getAcc(c, sel)
			c.setFlag(flagC, v&1 != 0)
			r := (v >> 1) | (v & 0x80)
			c.setNZ8(r)
			c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))
			setAcc(c, sel, r)
		}},
		{"ASL", 0x48, func(c *CPU, sel int) {
			v := getAcc(c, sel)
			c.setFlag(flagC, v&0x80 != 0)
			r := v << 1
			c.setNZ8(r)
			c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))
			setAcc(c, sel, r)
		}},
		{"ROL", 0x49, func(c *CPU, sel int) {
			v := getAcc(c, sel)
			carryIn := byte(0)
			if c.getFlag(flagC) {
				carryIn = 1
			}
			c.setFlag(flagC, v&0x80 != 0)
			r := (v << 1) | carryIn
			c.setNZ8(r)
			c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))
			setAcc(c, sel, r)
		}},
		{"DEC", 0x4A, func(c *CPU, sel int) {
			v := getAcc(c, sel)
			r := v - 1
			c.setFlag(flagV, v == 0x80)
			c.setNZ8(r)
			setAcc(c, sel, r)
		}},
		{"INC", 0x4C, func(c *CPU, sel int) {
			v := getAcc(c, sel)
			r := v + 1
			c.setFlag(flagV, v == 0x7F)
			c.setNZ8(r)
			setAcc(c, sel, r)
		}},
		{"TST", 0x4D, func(c *CPU, sel int) {
			v := getAcc(c, sel)
			c.setFlag(flagC, false)
			c.setFlag(flagV, false)
			c.setNZ8(v)
		}},
		{"CLR", 0x4F, func(c *CPU, sel int) {
			setAcc(c, sel, 0)
			c.CCR &^= flagN | flagV | flagC
			c.CCR |= flagZ
		}},
	}

	for _, ib := range inherentBase {
		ib := ib

		for sel := 0; sel < 2; sel++ {
			sel := sel
			opcode := ib.opcode
			if sel == 1 {
				opcode += 0x10
			}

			reg(opcode, ib.name+accName(sel), modeInherent, 2, func(c *CPU, op operand) { ib.exec(c, sel) })
		}
	}

	reg(0x36, "PSHA", modeInherent, 4, func(c *CPU, op operand) { c.push(c.A) })
	reg(0x37, "PSHB", modeInherent, 4, func(c *CPU, op operand) { c.push(c.B) })
	reg(0x32, "PULA", modeInherent, 4, func(c *CPU, op operand) { c.A = c.pull() })
	reg(0x33, "PULB", modeInherent, 4, func(c *CPU, op operand) { c.B = c.pull() })
}

// registerMemoryRMW wires the read-modify-write opcodes (NEG/COM/LSR/ROR/
// ASR/ASL/ROL/DEC/INC/TST/CLR) in indexed and extended addressing.
func registerMemoryRMW() {
	type rmw struct {
		name    string
		opIdx   byte
		opExt   byte
		exec    func(c *CPU, v byte) (byte, bool) // returns new value, whether it's a write
	}

	ops := []rmw{
		{"NEG", 0x60, 0x70, func(c *CPU, v byte) (byte, bool) {
			r := -v
			c.setFlag(flagC, v != 0)
			c.setFlag(flagV, v == 0x80)
			c.setNZ8(r)

			return r, true
		}},
		{"COM", 0x63, 0x73, func(c *CPU, v byte) (byte, bool) {
			r := ^v
			c.setFlag(flagC, true)
			c.setFlag(flagV, false)
			c.setNZ8(r)

			return r, true
		}},
		{"LSR", 0x64, 0x74, func(c *CPU, v byte) (byte, bool) {
			c.setFlag(flagC, v&1 != 0)
			r := v >> 1
			c.setFlag(flagN, false)
			c.setFlag(flagZ, r == 0)
			c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))

			return r, true
		}},
		{"ROR", 0x66, 0x76, func(c *CPU, v byte) (byte, bool) {
			carryIn := byte(0)
			if c.getFlag(flagC) {
				carryIn = 0x80
			}
			c.setFlag(flagC, v&1 != 0)
			r := (v >> 1) | carryIn
			c.setNZ8(r)
			c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))

			return r, true
		}},
		{"ASR", 0x67, 0x77, func(c *CPU, v byte) (byte, bool) {
			c.setFlag(flagC, v&1 != 0)
			r := (v >> 1) | (v & 0x80)
			c.setNZ8(r)
			c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))

			return r, true
		}},
		{"ASL", 0x68, 0x78, func(c *CPU, v byte) (byte, bool) {
			c.setFlag(flagC, v&0x80 != 0)
			r := v << 1
			c.setNZ8(r)
			c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))

			return r, true
		}},
		{"ROL", 0x69, 0x79, func(c *CPU, v byte) (byte, bool) {
			carryIn := byte(0)
			if c.getFlag(flagC) {
				carryIn = 1
			}
			c.setFlag(flagC, v&0x80 != 0)
			r := (v << 1) | carryIn
			c.setNZ8(r)
			c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))

			return r, true
		}},
		{"DEC", 0x6A, 0x7A, func(c *CPU, v byte) (byte, bool) {
			r := v - 1
			c.setFlag(flagV, v == 0x80)
			c.setNZ8(r)

			return r, true
		}},
		{"INC", 0x6C, 0x7C, func(c *CPU, v byte) (byte, bool) {
			r := v + 1
			c.setFlag(flagV, v == 0x7F)
			c.setNZ8(r)

			return r, true
		}},
		{"TST", 0x6D, 0x7D, func(c *CPU, v byte) (byte, bool) {
			c.setFlag(flagC, false)
			c.setFlag(flagV, false)
			c.setNZ8(v)

			return v, false
		}},
		{"CLR", 0x6F, 0x7F, func(c *CPU, v byte) (byte, bool) {
			c.CCR &^= flagN | flagV | flagC
			c.CCR |= flagZ

			return 0, true
		}},
		{"JMP", 0x6E, 0x7E, nil},
	}

	for _, o := range ops {
		o := o

		if o.name == "JMP" {
			reg(o.opIdx, "JMP", modeIndexed, 4, func(c *CPU, op operand) { c.PC = op.addr })
			reg(o.opExt, "JMP", modeExtended, 3, func(c *CPU, op operand) { c.PC = op.addr })

			continue
		}

		reg(o.opIdx, o.name, modeIndexed, 7, func(c *CPU, op operand) {
			v := c.readOperand8(op)
			r, write := o.exec(c, v)

			if write {
				c.writeOperand8(op, r)
			}
		})
		reg(o.opExt, o.name, modeExtended, 6, func(c *CPU, op operand) {
			v := c.readOperand8(op)
			r, write := o.exec(c, v)

			if write {
				c.writeOperand8(op, r)
			}
		})
	}
}

func registerIndexStackOps() {
	reg(0x30, "TSX", modeInherent, 4, func(c *CPU, op operand) { c.X = c.SP + 1 })
	reg(0x35, "TXS", modeInherent, 4, func(c *CPU, op operand) { c.SP = c.X - 1 })
	reg(0x31, "INS", modeInherent, 4, func(c *CPU, op operand) { c.SP++ })
	reg(0x34, "DES", modeInherent, 4, func(c *CPU, op operand) { c.SP-- })

	reg(0x8C, "CPX", modeImmediateWord, 3, execCPX)
	reg(0x9C, "CPX", modeDirect, 4, execCPXMem)
	reg(0xAC, "CPX", modeIndexed, 6, execCPXMem)
	reg(0xBC, "CPX", modeExtended, 5, execCPXMem)

	reg(0xCE, "LDX", modeImmediateWord, 3, func(c *CPU, op operand) {
		c.X = op.immWord
		c.setFlag(flagV, false)
		c.setNZ16(c.X)
	})
	reg(0xDE, "LDX", modeDirect, 4, execLDXMem)
	reg(0xEE, "LDX", modeIndexed, 6, execLDXMem)
	reg(0xFE, "LDX", modeExtended, 5, execLDXMem)

	reg(0xDF, "STX", modeDirect, 5, execSTXMem)
	reg(0xEF, "STX", modeIndexed, 7, execSTXMem)
	reg(0xFF, "STX", modeExtended, 6, execSTXMem)

	reg(0x8E, "LDS", modeImmediateWord, 3, func(c *CPU, op operand) {
		c.SP = op.immWord
		c.setFlag(flagV, false)
		c.setNZ16(c.SP)
	})
	reg(0x9E, "LDS", modeDirect, 4, execLDSMem)
	reg(0xAE, "LDS", modeIndexed, 6, execLDSMem)
	reg(0xBE, "LDS", modeExtended, 5, execLDSMem)

	reg(0x9F, "STS", modeDirect, 5, execSTSMem)
	reg(0xAF, "STS", modeIndexed, 7, execSTSMem)
	reg(0xBF, "STS", modeExtended, 6, execSTSMem)

	reg(0xBD, "JSR", modeExtended, 9, func(c *CPU, op operand) {
		c.push(byte(c.PC))
		c.push(byte(c.PC >> 8))
		c.PC = op.addr
	})
	reg(0xAD, "JSR", modeIndexed, 8, func(c *CPU, op operand) {
		c.push(byte(c.PC))
		c.push(byte(c.PC >> 8))
		c.PC = op.addr
	})
}

func execCPX(c *CPU, op operand) {
	r := c.X - op.immWord
	c.setFlag(flagZ, r == 0)
	c.setFlag(flagN, r&0x8000 != 0)
	c.setFlag(flagV, (c.X^op.immWord)&(c.X^r)&0x8000 != 0)
}

func (c *CPU) readWord16(op operand) uint16 {
	hi := c.bus.ReadByte(op.addr)
	lo := c.bus.ReadByte(op.addr + 1)

	return uint16(hi)<<8 | uint16(lo)
}

func execCPXMem(c *CPU, op operand) {
	v := c.readWord16(op)
	r := c.X - v
	c.setFlag(flagZ, r == 0)
	c.setFlag(flagN, r&0x8000 != 0)
	c.setFlag(flagV, (c.X^v)&(c.X^r)&0x8000 != 0)
}

func execLDXMem(c *CPU, op operand) {
	c.X = c.readWord16(op)
	c.setFlag(flagV, false)
	c.setNZ16(c.X)
}

func execSTXMem(c *CPU, op operand) {
	c.bus.WriteByte(op.addr, byte(c.X>>8))
	c.bus.WriteByte(op.addr+1, byte(c.X))
	c.setFlag(flagV, false)
	c.setNZ16(c.X)
}

func execLDSMem(c *CPU, op operand) {
	c.SP = c.readWord16(op)
	c.setFlag(flagV, false)
	c.setNZ16(c.SP)
}

func execSTSMem(c *CPU, op operand) {
	c.bus.WriteByte(op.addr, byte(c.SP>>8))
	c.bus.WriteByte(op.addr+1, byte(c.SP))
	c.setFlag(flagV, false)
	c.setNZ16(c.SP)
}

func registerHCF() {
	// HCF is undocumented; leaves its cycle count as "traps and
	// halts" with no timing contract, so cadmium charges one cycle and
	// freezes fetching rather than asserting a specific count.
	reg(0xDD, "HCF", modeInherent, 1, func(c *CPU, op operand) { c.halted = true })
}
