package cdp1802

// dispatch[hi][lo] implements the full documented CDP1802 instruction set,
// selected once per fetch by splitting the opcode into its high and low
// nibbles.
var dispatch [16][16]func(c *CPU, lo byte) int

func init() {
	registerMemoryReference()
	registerBranches()
	registerIO()
	registerALU()
	registerMisc()
}

func registerMemoryReference() {
	dispatch[0][0] = func(c *CPU, lo byte) int { c.idle = true; return 3 } // IDL

	for n := byte(1); n <= 0xF; n++ {
		n := n
		dispatch[0][n] = func(c *CPU, lo byte) int { // LDN Rn
			c.D = c.bus.ReadByte(c.R[n])
			return 2
		}
	}

	for n := byte(0); n <= 0xF; n++ {
		n := n
		dispatch[1][n] = func(c *CPU, lo byte) int { c.R[n]++; return 2 }       // INC Rn
		dispatch[2][n] = func(c *CPU, lo byte) int { c.R[n]--; return 2 }       // DEC Rn
		dispatch[4][n] = func(c *CPU, lo byte) int {                           // LDA Rn
			c.D = c.bus.ReadByte(c.R[n])
			c.R[n]++
			return 2
		}
		dispatch[5][n] = func(c *CPU, lo byte) int { // STR Rn
			c.bus.WriteByte(c.R[n], c.D)
			return 2
		}
		dispatch[8][n] = func(c *CPU, lo byte) int { c.D = byte(c.R[n]); return 2 }         // GLO Rn
		dispatch[9][n] = func(c *CPU, lo byte) int { c.D = byte(c.R[n] >> 8); return 2 }    // GHI Rn
		dispatch[0xA][n] = func(c *CPU, lo byte) int { c.R[n] = c.R[n]&0xFF00 | uint16(c.D); return 2 } // PLO Rn
		dispatch[0xB][n] = func(c *CPU, lo byte) int { c.R[n] = uint16(c.D)<<8 | c.R[n]&0xFF; return 2 } // PHI Rn
		dispatch[0xD][n] = func(c *CPU, lo byte) int { c.P = n; return 2 } // SEP Rn
		dispatch[0xE][n] = func(c *CPU, lo byte) int { c.X = n; return 2 } // SEX Rn
	}
}

func registerBranches() {
	type cond struct {
		lo   byte
		name string
		test func(c *CPU) bool
	}

	shortBranches := []cond{
		{0x0, "BR", func(c *CPU) bool { return true }},
		{0x1, "BQ", func(c *CPU) bool { return c.Q }},
		{0x2, "BZ", func(c *CPU) bool { return c.D == 0 }},
		{0x3, "BDF", func(c *CPU) bool { return c.DF != 0 }},
		{0x8, "NBR", func(c *CPU) bool { return false }}, // SKP: never taken, always +1
		{0x9, "BNQ", func(c *CPU) bool { return !c.Q }},
		{0xA, "BNZ", func(c *CPU) bool { return c.D != 0 }},
		{0xB, "BNF", func(c *CPU) bool { return c.DF == 0 }},
	}

	for _, b := range shortBranches {
		b := b
		dispatch[3][b.lo] = func(c *CPU, lo byte) int {
			target := c.fetch()

			if b.test(c) {
				c.setPC(uint16(c.pc()&0xFF00) | uint16(target))
			}

			return 2
		}
	}

	// EFx flag branches (B1..B4/BN1..BN4) treat external flags as always
	// false (no EF lines wired in cadmium's pure-software bus).
	for lo := byte(4); lo <= 7; lo++ {
		dispatch[3][lo] = func(c *CPU, lo byte) int {
			c.fetch()
			return 2
		}
	}

	for lo := byte(0xC); lo <= 0xF; lo++ {
		dispatch[3][lo] = func(c *CPU, lo byte) int {
			c.fetch()
			return 2
		}
	}

	// long branch/skip family (0xC group)
	dispatch[0xC][0x0] = func(c *CPU, lo byte) int { longBranch(c, true); return 3 }  // LBR
	dispatch[0xC][0x1] = func(c *CPU, lo byte) int { longBranchCond(c, c.Q); return 3 }
	dispatch[0xC][0x2] = func(c *CPU, lo byte) int { longBranchCond(c, c.D == 0); return 3 }
	dispatch[0xC][0x3] = func(c *CPU, lo byte) int { longBranchCond(c, c.DF != 0); return 3 }
	dispatch[0xC][0x4] = func(c *CPU, lo byte) int { return 3 } // NOP (long form, no operand)
	dispatch[0xC][0x5] = func(c *CPU, lo byte) int { longSkipCond(c, !c.Q); return 3 }
	dispatch[0xC][0x6] = func(c *CPU, lo byte) int { longSkipCond(c, c.D != 0); return 3 }
	dispatch[0xC][0x7] = func(c *CPU, lo byte) int { longSkipCond(c, c.DF == 0); return 3 }
	dispatch[0xC][0x8] = func(c *CPU, lo byte) int { longBranch(c, false); return 3 } // NLBR/LSKP: always skip 2 bytes
	dispatch[0xC][0x9] = func(c *CPU, lo byte) int { longBranchCond(c, !c.Q); return 3 }
	dispatch[0xC][0xA] = func(c *CPU, lo byte) int { longBranchCond(c, c.D != 0); return 3 }
	dispatch[0xC][0xB] = func(c *CPU, lo byte) int { longBranchCond(c, c.DF == 0); return 3 }
	dispatch[0xC][0xC] = func(c *CPU, lo byte) int { longSkipCond(c, c.IE); return 3 } // LSIE tests IE
	dispatch[0xC][0xD] = func(c *CPU, lo byte) int { longSkipCond(c, c.Q); return 3 }
	dispatch[0xC][0xE] = func(c *CPU, lo byte) int { longSkipCond(c, c.D == 0); return 3 }
	dispatch[0xC][0xF] = func(c *CPU, lo byte) int { longSkipCond(c, c.DF != 0); return 3 }
}

// longBranch always sets PC from the 2-byte immediate (LBR) or always skips
// it (LSKP), selected by takeBranch.
func longBranch(c *CPU, takeBranch bool) {
	hi := c.bus.ReadByte(c.pc())
	lo := c.bus.ReadByte(c.pc() + 1)

	if takeBranch {
		c.setPC(uint16(hi)<<8 | uint16(lo))
	} else {
		c.setPC(c.pc() + 2)
	}
}

func longBranchCond(c *CPU, cond bool) {
	longBranch(c, cond)
}

// longSkipCond skips the following 2-byte NOP-sized instruction iff cond is
// true (LSZ/LSNZ/etc), else falls through.
func longSkipCond(c *CPU, cond bool) {
	if cond {
		c.setPC(c.pc() + 2)
	}
}

func registerIO() {
	dispatch[6][0x0] = func(c *CPU, lo byte) int { c.R[c.X]++; return 2 } // IRX

	for n := 1; n <= 7; n++ {
		n := n
		dispatch[6][byte(n)] = func(c *CPU, lo byte) int { // OUTn
			c.bus.OutputPort(n, c.bus.ReadByte(c.R[c.X]))
			c.R[c.X]++
			return 2
		}
		dispatch[6][byte(n)+8] = func(c *CPU, lo byte) int { // INPn
			v := c.bus.InputPort(n)
			c.D = v
			c.bus.WriteByte(c.R[c.X], v)
			return 2
		}
	}
}

func registerALU() {
	dispatch[7][0x2] = func(c *CPU, lo byte) int { c.D = c.bus.ReadByte(c.R[c.X]); c.R[c.X]++; return 2 } // LDXA
	dispatch[7][0x3] = func(c *CPU, lo byte) int { c.bus.WriteByte(c.R[c.X], c.D); c.R[c.X]--; return 2 } // STXD

	dispatch[7][0x4] = func(c *CPU, lo byte) int { adc(c, c.bus.ReadByte(c.R[c.X])); return 2 }  // ADC
	dispatch[7][0x5] = func(c *CPU, lo byte) int { sdb(c, c.bus.ReadByte(c.R[c.X])); return 2 }  // SDB
	dispatch[7][0x6] = func(c *CPU, lo byte) int { shrc(c); return 2 }                           // RSHR
	dispatch[7][0x7] = func(c *CPU, lo byte) int { smb(c, c.bus.ReadByte(c.R[c.X])); return 2 }  // SMB
	dispatch[7][0xC] = func(c *CPU, lo byte) int { adc(c, c.fetch()); return 2 }                 // ADCI
	dispatch[7][0xD] = func(c *CPU, lo byte) int { sdb(c, c.fetch()); return 2 }                 // SDBI
	dispatch[7][0xE] = func(c *CPU, lo byte) int { shlc(c); return 2 }                           // RSHL
	dispatch[7][0xF] = func(c *CPU, lo byte) int { smb(c, c.fetch()); return 2 }                 // SMBI

	dispatch[0xF][0x0] = func(c *CPU, lo byte) int { c.D = c.bus.ReadByte(c.R[c.X]); return 2 } // LDX
	dispatch[0xF][0x1] = func(c *CPU, lo byte) int { c.D |= c.bus.ReadByte(c.R[c.X]); return 2 }
	dispatch[0xF][0x2] = func(c *CPU, lo byte) int { c.D &= c.bus.ReadByte(c.R[c.X]); return 2 }
	dispatch[0xF][0x3] = func(c *CPU, lo byte) int { c.D ^= c.bus.ReadByte(c.R[c.X]); return 2 }
	dispatch[0xF][0x4] = func(c *CPU, lo byte) int { add(c, c.bus.ReadByte(c.R[c.X])); return 2 }
	dispatch[0xF][0x5] = func(c *CPU, lo byte) int { sd(c, c.bus.ReadByte(c.R[c.X])); return 2 }
	dispatch[0xF][0x6] = func(c *CPU, lo byte) int { shr(c); return 2 }
	dispatch[0xF][0x7] = func(c *CPU, lo byte) int { sm(c, c.bus.ReadByte(c.R[c.X])); return 2 }
	dispatch[0xF][0x8] = func(c *CPU, lo byte) int { c.D = c.fetch(); return 2 }
	dispatch[0xF][0x9] = func(c *CPU, lo byte) int { c.D |= c.fetch(); return 2 }
	dispatch[0xF][0xA] = func(c *CPU, lo byte) int { c.D &= c.fetch(); return 2 }
	dispatch[0xF][0xB] = func(c *CPU, lo byte) int { c.D ^= c.fetch(); return 2 }
	dispatch[0xF][0xC] = func(c *CPU, lo byte) int { add(c, c.fetch()); return 2 }
	dispatch[0xF][0xD] = func(c *CPU, lo byte) int { sd(c, c.fetch()); return 2 }
	dispatch[0xF][0xE] = func(c *CPU, lo byte) int { shl(c); return 2 }
	dispatch[0xF][0xF] = func(c *CPU, lo byte) int { sm(c, c.fetch()); return 2 }
}

func add(c *CPU, v byte) {
	sum := uint16(c.D) + uint16(v)
	c.D = byte(sum)

	if sum > 0xFF {
		c.DF = 1
	} else {
		c.DF = 0
	}
}

func adc(c *CPU, v byte) {
	sum := uint16(c.D) + uint16(v) + uint16(c.DF)
	c.D = byte(sum)

	if sum > 0xFF {
		c.DF = 1
	} else {
		c.DF = 0
	}
}

// sd computes M - D (note the 1802's SD operand order), setting DF on no
// borrow.
func sd(c *CPU, v byte) {
	r := int(v) - int(c.D)
	c.D = byte(r)

	if r >= 0 {
		c.DF = 1
	} else {
		c.DF = 0
	}
}

func sdb(c *CPU, v byte) {
	r := int(v) - int(c.D) - int(1-c.DF)
	c.D = byte(r)

	if r >= 0 {
		c.DF = 1
	} else {
		c.DF = 0
	}
}

// sm computes D - M, setting DF on no borrow.
func sm(c *CPU, v byte) {
	r := int(c.D) - int(v)
	c.D = byte(r)

	if r >= 0 {
		c.DF = 1
	} else {
		c.DF = 0
	}
}

func smb(c *CPU, v byte) {
	r := int(c.D) - int(v) - int(1-c.DF)
	c.D = byte(r)

	if r >= 0 {
		c.DF = 1
	} else {
		c.DF = 0
	}
}

func shr(c *CPU) {
	newDF := c.D & 1
	c.D >>= 1
	c.DF = newDF
}

func shrc(c *CPU) {
	newDF := c.D & 1
	carryIn := c.DF
	c.D = (c.D >> 1) | (carryIn << 7)
	c.DF = newDF
}

func shl(c *CPU) {
	newDF := (c.D & 0x80) >> 7
	c.D <<= 1
	c.DF = newDF
}

func shlc(c *CPU) {
	newDF := (c.D & 0x80) >> 7
	carryIn := c.DF
	c.D = (c.D << 1) | carryIn
	c.DF = newDF
}

func registerMisc() {
	dispatch[7][0x0] = func(c *CPU, lo byte) int { // RET
		v := c.bus.ReadByte(c.R[c.X])
		c.R[c.X]++
		c.P = v & 0xF
		c.X = v >> 4
		c.IE = true

		return 2
	}
	dispatch[7][0x1] = func(c *CPU, lo byte) int { // DIS
		v := c.bus.ReadByte(c.R[c.X])
		c.R[c.X]++
		c.P = v & 0xF
		c.X = v >> 4
		c.IE = false

		return 2
	}
	dispatch[7][0x8] = func(c *CPU, lo byte) int { // SAV
		c.bus.WriteByte(c.R[c.X], c.T)
		return 2
	}
	dispatch[7][0x9] = func(c *CPU, lo byte) int { // MARK
		c.T = c.X<<4 | c.P
		c.bus.WriteByte(c.R[2], c.T)
		c.X = c.P

		return 2
	}
	dispatch[7][0xA] = func(c *CPU, lo byte) int { c.Q = false; return 2 } // REQ
	dispatch[7][0xB] = func(c *CPU, lo byte) int { c.Q = true; return 2 }  // SEQ
}
