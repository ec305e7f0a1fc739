package decompiler

import "cadmium/chip8"

// variantList enumerates every chip8.Variant the inference pass
// distinguishes between; hardware cores (vip/dream6800/eti660) run a
// shadowed classic CHIP-8 interpreter and are not separate dialects for
// the purposes of this analysis.
func variantList() []chip8.Variant {
	return []chip8.Variant{
		chip8.VariantCHIP8,
		chip8.VariantCHIP48,
		chip8.VariantSCHIP10,
		chip8.VariantSCHIP11,
		chip8.VariantSCHIPModern,
		chip8.VariantXOCHIP,
		chip8.VariantMegaChip,
		chip8.VariantCHIP8X,
	}
}

func allVariants() uint32 {
	var mask uint32
	for _, v := range variantList() {
		mask |= 1 << uint(v)
	}

	return mask
}

func bit(v chip8.Variant) uint32 { return 1 << uint(v) }

// variantsFor returns the set of variants (as a bitmask over
// chip8.Variant values) that could plausibly execute inst, narrowing the
// possible-variants accumulator in Analyze. Opcodes common to every
// dialect return allVariants(); opcodes specific to an extension narrow
// to just the variants that document it (spec.md §4.7 point 5).
func variantsFor(inst uint16) uint32 {
	switch {
	case inst == 0x00FD, inst == 0x00FB, inst == 0x00FC, inst == 0x00FE, inst == 0x00FF:
		// SUPER-CHIP screen/hires control opcodes.
		return bit(chip8.VariantSCHIP10) | bit(chip8.VariantSCHIP11) | bit(chip8.VariantSCHIPModern) |
			bit(chip8.VariantXOCHIP) | bit(chip8.VariantMegaChip)
	case inst&0xFFF0 == 0x00C0:
		// 00CN scroll-down.
		return bit(chip8.VariantSCHIP11) | bit(chip8.VariantSCHIPModern) | bit(chip8.VariantXOCHIP) | bit(chip8.VariantMegaChip)
	case inst&0xFFF0 == 0x00D0:
		// 00DN scroll-up, XO-CHIP only.
		return bit(chip8.VariantXOCHIP)
	case inst == 0xF000:
		// F000 NNNN 16-bit immediate load I, XO-CHIP/MEGA-CHIP only.
		return bit(chip8.VariantXOCHIP) | bit(chip8.VariantMegaChip)
	case inst&0xF0FF == 0xF001, inst&0xF0FF == 0xF002, inst&0xF0FF == 0xF01B:
		// Fx01 plane select, Fx02 audio pattern buffer, Fx1B steady scroll.
		return bit(chip8.VariantXOCHIP)
	case inst&0xF0FF == 0xF03A:
		// Fx3A pitch register.
		return bit(chip8.VariantXOCHIP)
	case inst&0xF00F == 0x5002, inst&0xF00F == 0x5003:
		// 5XY2/5XY3 register-range save/load.
		return bit(chip8.VariantXOCHIP)
	case inst&0xF0FF == 0xF075, inst&0xF0FF == 0xF085:
		// Fx75/Fx85 RPL flag persistence.
		return bit(chip8.VariantSCHIP10) | bit(chip8.VariantSCHIP11) | bit(chip8.VariantSCHIPModern) | bit(chip8.VariantXOCHIP)
	case inst&0xF0FF == 0xF030:
		// Fx30 big hex digit sprite.
		return bit(chip8.VariantSCHIP10) | bit(chip8.VariantSCHIP11) | bit(chip8.VariantSCHIPModern) | bit(chip8.VariantXOCHIP) | bit(chip8.VariantMegaChip)
	case inst&0xF000 == 0x5000 && inst&0xF00F != 0x5000:
		// malformed 5XYN with N!=0 and not a recognised XO-CHIP form.
		return allVariants() &^ (bit(chip8.VariantCHIP8) | bit(chip8.VariantCHIP48) | bit(chip8.VariantSCHIP10) | bit(chip8.VariantSCHIP11) | bit(chip8.VariantSCHIPModern) | bit(chip8.VariantMegaChip) | bit(chip8.VariantCHIP8X)) | bit(chip8.VariantXOCHIP)
	default:
		return allVariants()
	}
}
