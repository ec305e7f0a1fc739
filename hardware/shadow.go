// Package hardware holds the pieces shared by the real-hardware cores
// (COSMAC VIP, DREAM6800, ETI-660): the register-lifting shim spec.md
// §4.5 describes, which peeks at a monitor ROM's CHIP-8 interpreter
// workspace instead of re-implementing CHIP-8 semantics.
package hardware

// Shadow lifts a CHIP-8 interpreter's register file, I, PC, DT and ST out
// of a real monitor's RAM workspace. Offsets are relative to a base
// address captured the first time the backend CPU's program counter
// reaches the monitor's documented fetch-decode entry point, per the
// design note that implementations must compute these from the observed
// stack pointer rather than hardcode them, since some monitor variants
// relocate their work area.
type Shadow struct {
	FetchDecodeEntry uint16

	VOffset  int32
	IOffset  int32
	PCOffset int32
	DTOffset int32
	STOffset int32

	base     uint16
	captured bool
	read     func(addr uint16) byte
}

// NewShadow builds a shim for a monitor whose fetch-decode loop begins at
// entry, with register offsets (relative to the captured stack base)
// given in bytes. read accesses the emulated RAM the monitor uses.
func NewShadow(entry uint16, vOff, iOff, pcOff, dtOff, stOff int32, read func(uint16) byte) *Shadow {
	return &Shadow{
		FetchDecodeEntry: entry,
		VOffset:          vOff,
		IOffset:          iOff,
		PCOffset:         pcOff,
		DTOffset:         dtOff,
		STOffset:         stOff,
		read:             read,
	}
}

// Observe is called at every backend instruction boundary with the
// backend's current PC and (on first reaching FetchDecodeEntry) the value
// to use as the work-area base. It returns whether the backend is
// currently sitting at the fetch-decode entry point.
func (s *Shadow) Observe(pc, stackBase uint16) bool {
	atEntry := pc == s.FetchDecodeEntry

	if atEntry && !s.captured {
		s.base = stackBase
		s.captured = true
	}

	return atEntry
}

// Captured reports whether the shim has ever seen the fetch-decode entry
// and therefore has a usable base address.
func (s *Shadow) Captured() bool { return s.captured }

// V reads shadow register Vi (0-15).
func (s *Shadow) V(i int) byte { return s.read(s.base + uint16(s.VOffset) + uint16(i)) }

func (s *Shadow) word(off int32) uint16 {
	addr := s.base + uint16(off)
	return uint16(s.read(addr))<<8 | uint16(s.read(addr+1))
}

func (s *Shadow) I() uint16  { return s.word(s.IOffset) }
func (s *Shadow) PC() uint16 { return s.word(s.PCOffset) }
func (s *Shadow) DT() byte   { return s.read(s.base + uint16(s.DTOffset)) }
func (s *Shadow) ST() byte   { return s.read(s.base + uint16(s.STOffset)) }
