// Package chip8 implements the generic CHIP-8 interpreter: a single
// execution core whose opcode semantics are parameterized by a Quirks
// value rather than hardcoded to one dialect, so CHIP-8, CHIP-48,
// SUPER-CHIP, XO-CHIP, MEGA-CHIP and CHIP-8X all run on the same Core type.
package chip8

// Variant names one of the CHIP-8 family dialects this core can run.
type Variant int

const (
	VariantCHIP8 Variant = iota
	VariantCHIP48
	VariantSCHIP10
	VariantSCHIP11
	VariantSCHIPModern
	VariantXOCHIP
	VariantMegaChip
	VariantCHIP8X
)

func (v Variant) String() string {
	switch v {
	case VariantCHIP8:
		return "CHIP-8"
	case VariantCHIP48:
		return "CHIP-48"
	case VariantSCHIP10:
		return "SUPER-CHIP 1.0"
	case VariantSCHIP11:
		return "SUPER-CHIP 1.1"
	case VariantSCHIPModern:
		return "SUPER-CHIP modern"
	case VariantXOCHIP:
		return "XO-CHIP"
	case VariantMegaChip:
		return "MEGA-CHIP"
	case VariantCHIP8X:
		return "CHIP-8X"
	default:
		return "UNKNOWN"
	}
}

// Quirks parameterizes every point where the documented CHIP-8 opcodes
// diverge across dialects. A Core built for a given Variant resolves these
// once at construction time and bakes the result into its dispatch table,
// rather than branching on them inside the hot opcode-execution path.
type Quirks struct {
	// VFReset clears VF after the 8XY1/8XY2/8XY3 logic ops (original
	// COSMAC VIP behaviour); modern interpreters leave VF untouched.
	VFReset bool

	// IIncrementByX makes FX55/FX65 advance I by X only, not X+1 (CHIP-48).
	// Mutually exclusive with IUnchanged; if neither is set, I advances by
	// the full X+1 (original CHIP-8).
	IIncrementByX bool

	// IUnchanged makes FX55/FX65 leave I untouched (SUPER-CHIP 1.1+).
	IUnchanged bool

	// ShiftVXOnly makes 8XY6/8XYE shift VX in place when true (CHIP-48/
	// SUPER-CHIP), or shift VY into VX when false (original CHIP-8).
	ShiftVXOnly bool

	// WrapSprites draws off-screen sprite pixels by wrapping them to the
	// opposite edge instead of clipping them.
	WrapSprites bool

	// Jump0BXNN makes BNNN use VX (X taken from the high nibble of NNN)
	// instead of V0 (SUPER-CHIP modern quirk).
	Jump0BXNN bool

	// HalfPixelScroll marks SUPER-CHIP 1.0's low-res scroll behaviour. No
	// opcode handler reads it: 00FB/00FC always scroll 4 pixels and
	// 00CN/00DN scroll N pixels, in every mode and on every variant.
	HalfPixelScroll bool

	// SC11Collisions reports a sprite-clipped-at-bottom-edge collision even
	// when no pixel was actually unset (SUPER-CHIP 1.1 bug many ROMs rely
	// on).
	SC11Collisions bool

	// ScreenWidth/ScreenHeight are the low-res (non-hires) screen
	// dimensions for this variant.
	ScreenWidth, ScreenHeight int

	// Planes is how many independently-selectable bit-planes the video
	// buffer exposes (1 for everything except XO-CHIP/MEGA-CHIP's 4).
	Planes int

	// HasHires allows the 00FE/00FF/128x64 mode switch (SUPER-CHIP and
	// later).
	HasHires bool

	// AllowF000 enables XO-CHIP's F000 NNNN 32-bit "load I immediate"
	// extended opcode.
	AllowF000 bool

	// IndexedSprites marks MEGA-CHIP's indexed-colour sprite mode. No
	// opcode handler reads it: Dxyn draws into bit-planes on every
	// variant, and no 256-colour drawing mode is implemented.
	IndexedSprites bool

	// InstantDxyn skips the VBLANK wait on Dxyn: on real hardware and
	// classic interpreters, a sprite draw that straddles two display
	// refreshes pauses the CPU until the next video line; modern
	// interpreters (SUPER-CHIP and later, by convention) draw instantly.
	InstantDxyn bool

	// LoresDxy0Is16x16 makes Dxy0 draw a 16x16 sprite even outside hires
	// mode; when false (the default 8x16 reading) Dxy0 in lores draws an
	// 8x16 sprite identically to Dn with n=16.
	LoresDxy0Is16x16 bool

	// CyclicStack makes the return-address stack wrap modulo its capacity
	// on overflow/underflow instead of halting with ERROR.
	CyclicStack bool

	// StackSize is the return-address stack's capacity: 16 for every
	// variant except MEGA-CHIP, which documents 24. Zero means "use the
	// default of 16" so callers building a Quirks literal by hand don't
	// need to know this field exists.
	StackSize int
}

// QuirksFor returns the documented default quirk set for a variant.
func QuirksFor(v Variant) Quirks {
	switch v {
	case VariantCHIP8:
		return Quirks{VFReset: true, ShiftVXOnly: false, WrapSprites: true, ScreenWidth: 64, ScreenHeight: 32, Planes: 1}
	case VariantCHIP48:
		return Quirks{VFReset: false, IIncrementByX: true, ShiftVXOnly: true, WrapSprites: false, ScreenWidth: 64, ScreenHeight: 32, Planes: 1}
	case VariantSCHIP10:
		return Quirks{VFReset: false, IUnchanged: true, ShiftVXOnly: true, WrapSprites: false, HalfPixelScroll: true, InstantDxyn: true, ScreenWidth: 64, ScreenHeight: 32, Planes: 1, HasHires: true}
	case VariantSCHIP11:
		return Quirks{VFReset: false, IUnchanged: true, ShiftVXOnly: true, WrapSprites: false, SC11Collisions: true, InstantDxyn: true, ScreenWidth: 64, ScreenHeight: 32, Planes: 1, HasHires: true}
	case VariantSCHIPModern:
		return Quirks{VFReset: false, IUnchanged: true, ShiftVXOnly: true, WrapSprites: false, Jump0BXNN: true, InstantDxyn: true, ScreenWidth: 64, ScreenHeight: 32, Planes: 1, HasHires: true}
	case VariantXOCHIP:
		return Quirks{VFReset: false, ShiftVXOnly: true, WrapSprites: false, InstantDxyn: true, ScreenWidth: 64, ScreenHeight: 32, Planes: 4, HasHires: true, AllowF000: true}
	case VariantMegaChip:
		return Quirks{VFReset: false, IUnchanged: true, ShiftVXOnly: true, WrapSprites: false, InstantDxyn: true, ScreenWidth: 256, ScreenHeight: 192, Planes: 1, HasHires: true, IndexedSprites: true, StackSize: 24}
	case VariantCHIP8X:
		return Quirks{VFReset: true, ShiftVXOnly: false, WrapSprites: true, ScreenWidth: 64, ScreenHeight: 32, Planes: 1}
	default:
		return QuirksFor(VariantCHIP8)
	}
}
