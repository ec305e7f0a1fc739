package cdp1802

import "fmt"

var shortBranchMnemonics = map[byte]string{
	0x0: "BR", 0x1: "BQ", 0x2: "BZ", 0x3: "BDF",
	0x4: "B1", 0x5: "B2", 0x6: "B3", 0x7: "B4",
	0x8: "NBR", 0x9: "BNQ", 0xA: "BNZ", 0xB: "BNF",
	0xC: "BN1", 0xD: "BN2", 0xE: "BN3", 0xF: "BN4",
}

var longBranchMnemonics = map[byte]string{
	0x0: "LBR", 0x1: "LBQ", 0x2: "LBZ", 0x3: "LBDF",
	0x4: "NOP", 0x5: "LSNQ", 0x6: "LSNZ", 0x7: "LSNF",
	0x8: "LSKP", 0x9: "LBNQ", 0xA: "LBNZ", 0xB: "LBNF",
	0xC: "LSIE", 0xD: "LSQ", 0xE: "LSZ", 0xF: "LSDF",
}

var aluMnemonics = map[byte]string{
	0x0: "LDX", 0x1: "OR", 0x2: "AND", 0x3: "XOR",
	0x4: "ADD", 0x5: "SD", 0x6: "SHR", 0x7: "SM",
	0x8: "LDI", 0x9: "ORI", 0xA: "ANI", 0xB: "XRI",
	0xC: "ADI", 0xD: "SDI", 0xE: "SHL", 0xF: "SMI",
}

var aluImmediate = map[byte]bool{0x8: true, 0x9: true, 0xA: true, 0xB: true, 0xC: true, 0xD: true, 0xF: true}

var memRefALUMnemonics = map[byte]string{
	0x0: "RET", 0x1: "DIS", 0x2: "LDXA", 0x3: "STXD",
	0x4: "ADC", 0x5: "SDB", 0x6: "RSHR", 0x7: "SMB",
	0x8: "SAV", 0x9: "MARK", 0xA: "REQ", 0xB: "SEQ",
	0xC: "ADCI", 0xD: "SDBI", 0xE: "RSHL", 0xF: "SMBI",
}

var memRefALUImmediate = map[byte]bool{0xC: true, 0xD: true, 0xF: true}

// Disassemble renders the instruction at addr as "AAAA  MNEM operand" and
// returns its encoded length in bytes.
func Disassemble(bus Bus, addr uint16) (string, int) {
	opcode := bus.ReadByte(addr)
	hi, lo := opcode>>4, opcode&0xF

	switch hi {
	case 0x0:
		if lo == 0 {
			return fmt.Sprintf("%04X  IDL", addr), 1
		}
		return fmt.Sprintf("%04X  LDN    R%X", addr, lo), 1
	case 0x1:
		return fmt.Sprintf("%04X  INC    R%X", addr, lo), 1
	case 0x2:
		return fmt.Sprintf("%04X  DEC    R%X", addr, lo), 1
	case 0x3:
		target := bus.ReadByte(addr + 1)
		return fmt.Sprintf("%04X  %-6s $%02X", addr, shortBranchMnemonics[lo], target), 2
	case 0x4:
		return fmt.Sprintf("%04X  LDA    R%X", addr, lo), 1
	case 0x5:
		return fmt.Sprintf("%04X  STR    R%X", addr, lo), 1
	case 0x6:
		switch {
		case lo == 0:
			return fmt.Sprintf("%04X  IRX", addr), 1
		case lo <= 7:
			return fmt.Sprintf("%04X  OUT%d", addr, lo), 1
		default:
			return fmt.Sprintf("%04X  INP%d", addr, lo-8), 1
		}
	case 0x7:
		name := memRefALUMnemonics[lo]
		if memRefALUImmediate[lo] {
			v := bus.ReadByte(addr + 1)
			return fmt.Sprintf("%04X  %-6s #$%02X", addr, name, v), 2
		}
		return fmt.Sprintf("%04X  %s", addr, name), 1
	case 0x8:
		return fmt.Sprintf("%04X  GLO    R%X", addr, lo), 1
	case 0x9:
		return fmt.Sprintf("%04X  GHI    R%X", addr, lo), 1
	case 0xA:
		return fmt.Sprintf("%04X  PLO    R%X", addr, lo), 1
	case 0xB:
		return fmt.Sprintf("%04X  PHI    R%X", addr, lo), 1
	case 0xC:
		name := longBranchMnemonics[lo]
		if lo == 0x4 { // NOP is a single byte with no operand
			return fmt.Sprintf("%04X  %s", addr, name), 1
		}
		hi8, lo8 := bus.ReadByte(addr+1), bus.ReadByte(addr+2)
		return fmt.Sprintf("%04X  %-6s $%04X", addr, name, uint16(hi8)<<8|uint16(lo8)), 3
	case 0xD:
		return fmt.Sprintf("%04X  SEP    R%X", addr, lo), 1
	case 0xE:
		return fmt.Sprintf("%04X  SEX    R%X", addr, lo), 1
	case 0xF:
		name := aluMnemonics[lo]
		if aluImmediate[lo] {
			v := bus.ReadByte(addr + 1)
			return fmt.Sprintf("%04X  %-6s #$%02X", addr, name, v), 2
		}
		return fmt.Sprintf("%04X  %s", addr, name), 1
	default:
		return fmt.Sprintf("%04X  ???    #%02X", addr, opcode), 1
	}
}
