// Package decompiler performs chunk-based worklist analysis over a raw
// CHIP-8 image (spec.md §4.7): it reconstructs symbolic labels from
// observed usage and narrows the set of CHIP-8 family variants an
// unknown ROM could run under.
package decompiler

import "cadmium/chip8"

// Usage is a bitfield recording how a byte range or label has been
// referenced.
type Usage uint16

const (
	UsageJump Usage = 1 << iota
	UsageCall
	UsageSprite
	UsageLoad
	UsageStore
	UsageRead
	UsageWrite
	UsageAudio
)

// Chunk is a half-open memory range tagged with how it has been used so
// far.
type Chunk struct {
	Start, End uint16
	Usage      Usage
}

// Label names one address by the usage mask accumulated for it, driving
// the symbolic name the decompiler assigns (sub_/label_/data_/sprite_/
// audio_, per spec.md §4.7 point 4).
type Label struct {
	Address uint16
	Usage   Usage
}

// Name returns the symbolic name this label's usage mask implies.
func (l Label) Name() string {
	switch {
	case l.Usage&UsageCall != 0:
		return prefixed("sub_", l.Address)
	case l.Usage&UsageSprite != 0:
		return prefixed("sprite_", l.Address)
	case l.Usage&UsageAudio != 0:
		return prefixed("audio_", l.Address)
	case l.Usage&UsageJump != 0:
		return prefixed("label_", l.Address)
	case l.Usage&(UsageLoad|UsageStore|UsageRead|UsageWrite) != 0:
		return prefixed("data_", l.Address)
	default:
		return prefixed("loc_", l.Address)
	}
}

func prefixed(prefix string, addr uint16) string {
	const hex = "0123456789ABCDEF"

	b := []byte{hex[addr>>12&0xF], hex[addr>>8&0xF], hex[addr>>4&0xF], hex[addr&0xF]}

	return prefix + string(b)
}

// reg is a register value that is either known or unknown; any
// computation involving an unknown operand poisons the result, per
// spec.md §4.7 point 1.
type reg struct {
	known bool
	value uint16
}

func unknown() reg       { return reg{} }
func known(v uint16) reg { return reg{known: true, value: v} }

// Result is the outcome of analysing one ROM image.
type Result struct {
	Chunks            []Chunk
	Labels            map[uint16]Label
	PossibleVariants  []chip8.Variant
}

// Analyze runs the chunk-based worklist analysis starting from entry
// (conventionally the ROM's load address) over image, which must be
// addressed starting at base (image[0] lives at address base).
func Analyze(image []byte, base, entry uint16) *Result {
	labels := map[uint16]Label{}
	seedLabel := func(addr uint16, u Usage) {
		l := labels[addr]
		l.Address = addr
		l.Usage |= u
		labels[addr] = l
	}

	end := base + uint16(len(image))
	chunks := []Chunk{{Start: base, End: end}}

	visited := map[uint16]bool{}
	worklist := []uint16{entry}
	seedLabel(entry, UsageJump)

	variants := allVariants()
	var possible uint32 = variants

	read := func(addr uint16) (byte, bool) {
		if addr < base || addr >= end {
			return 0, false
		}

		return image[addr-base], true
	}

	splitChunk := func(at uint16, tag Usage) {
		for i, c := range chunks {
			if at > c.Start && at < c.End {
				chunks[i] = Chunk{Start: c.Start, End: at, Usage: c.Usage}
				chunks = append(chunks, Chunk{Start: at, End: c.End, Usage: c.Usage | tag})

				return
			}
		}
	}

	for len(worklist) > 0 {
		addr := worklist[0]
		worklist = worklist[1:]

		if visited[addr] {
			continue
		}

		regs := [16]reg{}
		ireg := unknown()

		for {
			if visited[addr] {
				break
			}

			visited[addr] = true

			hi, ok1 := read(addr)
			lo, ok2 := read(addr + 1)

			if !ok1 || !ok2 {
				break
			}

			inst := uint16(hi)<<8 | uint16(lo)
			possible &= variantsFor(inst)

			term, next, branches := step(inst, addr, &regs, &ireg, seedLabel)

			for _, b := range branches {
				if !visited[b] {
					worklist = append(worklist, b)
				}
			}

			if term {
				splitChunk(addr+length(inst), terminatorUsage(inst))
				break
			}

			addr = next
		}
	}

	var out []chip8.Variant
	for _, v := range variantList() {
		if possible&(1<<uint(v)) != 0 {
			out = append(out, v)
		}
	}

	return &Result{Chunks: chunks, Labels: labels, PossibleVariants: out}
}

func length(inst uint16) uint16 {
	if inst == 0xF000 {
		return 4
	}

	return 2
}

func terminatorUsage(inst uint16) Usage {
	switch {
	case inst&0xF000 == 0x1000:
		return UsageJump
	case inst == 0x00EE:
		return Usage(0)
	default:
		return Usage(0)
	}
}

// step decodes one instruction, conservatively updates the speculative
// register file, seeds labels for any address it references, and reports
// whether this is a chunk-terminating opcode plus the branch targets (if
// any) to enqueue.
func step(inst uint16, addr uint16, regs *[16]reg, ireg *reg, seed func(uint16, Usage)) (terminates bool, next uint16, branches []uint16) {
	x := byte(inst >> 8 & 0xF)
	y := byte(inst >> 4 & 0xF)
	n := byte(inst & 0xF)
	nn := byte(inst & 0xFF)
	nnn := inst & 0xFFF

	next = addr + 2

	switch {
	case inst == 0x00EE:
		return true, next, nil
	case inst == 0x00E0, inst == 0x00FB, inst == 0x00FC, inst == 0x00FD, inst == 0x00FE, inst == 0x00FF:
		if inst == 0x00FD {
			return true, next, nil
		}

		return false, next, nil
	case inst&0xF000 == 0x1000:
		seed(nnn, UsageJump)
		return true, next, []uint16{nnn}
	case inst&0xF000 == 0x2000:
		seed(nnn, UsageCall)
		return false, next, []uint16{nnn}
	case inst&0xF000 == 0x3000, inst&0xF000 == 0x4000:
		regs[x] = unknown() // skip-on-compare doesn't invalidate Vx, but the
		// not-taken fallthrough and taken (+2) paths diverge, so conservative
		// analysis treats the register as unknown from here on.
		branches = []uint16{next + 2}
		return false, next, branches
	case inst&0xF00F == 0x5000, inst&0xF000 == 0x9000:
		branches = []uint16{next + 2}
		return false, next, branches
	case inst&0xF000 == 0x6000:
		regs[x] = known(uint16(nn))
		return false, next, nil
	case inst&0xF000 == 0x7000:
		if regs[x].known {
			regs[x] = known(regs[x].value + uint16(nn))
		}

		return false, next, nil
	case inst&0xF00F == 0x8000:
		regs[x] = regs[y]
		return false, next, nil
	case inst&0xF00F >= 0x8001 && inst&0xF00F <= 0x800E:
		regs[x] = unknown()
		return false, next, nil
	case inst&0xF000 == 0xA000:
		*ireg = known(nnn)
		return false, next, nil
	case inst&0xF000 == 0xB000:
		seed(nnn, UsageJump)
		return true, next, nil // target depends on a register; can't enqueue precisely
	case inst&0xF000 == 0xC000:
		regs[x] = unknown()
		return false, next, nil
	case inst&0xF000 == 0xD000:
		if ireg.known {
			seed(ireg.value, UsageSprite|UsageRead)
		}

		return false, next, nil
	case inst&0xF0FF == 0xE09E, inst&0xF0FF == 0xE0A1:
		branches = []uint16{next + 2}
		return false, next, branches
	case inst == 0xF000:
		*ireg = unknown()
		seed(addr+2, UsageLoad)
		return false, addr + 4, nil
	case inst&0xF0FF == 0xF007, inst&0xF0FF == 0xF00A:
		regs[x] = unknown()
		return false, next, nil
	case inst&0xF0FF == 0xF01E:
		*ireg = unknown()
		return false, next, nil
	case inst&0xF0FF == 0xF029, inst&0xF0FF == 0xF030:
		*ireg = unknown()
		return false, next, nil
	case inst&0xF0FF == 0xF033:
		if ireg.known {
			seed(ireg.value, UsageWrite)
		}

		return false, next, nil
	case inst&0xF0FF == 0xF002:
		if ireg.known {
			seed(ireg.value, UsageAudio|UsageRead)
		}

		return false, next, nil
	case inst&0xF0FF == 0xF055, inst&0xF0FF == 0xF065:
		if ireg.known {
			u := Usage(UsageRead)
			if inst&0xF0FF == 0xF055 {
				u = UsageWrite
			}

			seed(ireg.value, u)
		}

		*ireg = unknown()
		return false, next, nil
	case n == 0 && x == 0 && y == 0:
		return true, next, nil // unrecognised, treat as terminal
	default:
		return false, next, nil
	}
}
