package m6800

import "fmt"

// Disassemble renders the instruction at addr as "AAAA  MNEM operand" and
// returns its encoded length in bytes, for the debugger's generic
// GenericCpu.Disassemble contract and the decompiler's byte-accurate
// instruction walk.
func Disassemble(bus Bus, addr uint16) (string, int) {
	opcode := bus.ReadByte(addr)

	entry, ok := opcodeTable[opcode]
	if !ok {
		return fmt.Sprintf("%04X  ???    #%02X", addr, opcode), 1
	}

	switch entry.mode {
	case modeInherent:
		return fmt.Sprintf("%04X  %s", addr, entry.mnemonic), 1
	case modeImmediate:
		v := bus.ReadByte(addr + 1)
		return fmt.Sprintf("%04X  %-6s #$%02X", addr, entry.mnemonic, v), 2
	case modeImmediateWord:
		hi, lo := bus.ReadByte(addr+1), bus.ReadByte(addr+2)
		return fmt.Sprintf("%04X  %-6s #$%04X", addr, entry.mnemonic, uint16(hi)<<8|uint16(lo)), 3
	case modeDirect:
		v := bus.ReadByte(addr + 1)
		return fmt.Sprintf("%04X  %-6s $%02X", addr, entry.mnemonic, v), 2
	case modeExtended:
		hi, lo := bus.ReadByte(addr+1), bus.ReadByte(addr+2)
		return fmt.Sprintf("%04X  %-6s $%04X", addr, entry.mnemonic, uint16(hi)<<8|uint16(lo)), 3
	case modeIndexed:
		v := bus.ReadByte(addr + 1)
		return fmt.Sprintf("%04X  %-6s $%02X,X", addr, entry.mnemonic, v), 2
	case modeRelative:
		offset := int8(bus.ReadByte(addr + 1))
		target := int32(addr) + 2 + int32(offset)
		return fmt.Sprintf("%04X  %-6s $%04X", addr, entry.mnemonic, uint16(target)), 2
	default:
		return fmt.Sprintf("%04X  %s", addr, entry.mnemonic), 1
	}
}
