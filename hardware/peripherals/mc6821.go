package peripherals

// MC6821 is a Peripheral Interface Adapter: two independently-configurable
// 8-bit ports (A and B), each with a control register selecting whether the
// port register or its data-direction register is addressed. The DREAM6800
// wires port A to the hex keypad's row-select outputs and port B to its
// column-readback inputs.
type MC6821 struct {
	ddrA, ddrB   byte
	orA, orB     byte
	crA, crB     byte
	keypad       *Keypad
}

// NewMC6821 creates a PIA wired to keypad for its port A/B keyboard matrix
// behaviour.
func NewMC6821(keypad *Keypad) *MC6821 {
	return &MC6821{keypad: keypad}
}

// the four PIA registers, in the DREAM6800's address order: ORA/DDRA, CRA,
// ORB/DDRB, CRB. bit 2 of the control register selects register vs DDR.
const (
	RegA = 0
	RegCRA = 1
	RegB = 2
	RegCRB = 3
)

func (p *MC6821) Read(reg int) byte {
	switch reg {
	case RegA:
		if p.crA&0x04 == 0 {
			return p.ddrA
		}

		return p.orA
	case RegCRA:
		return p.crA
	case RegB:
		if p.crB&0x04 == 0 {
			return p.ddrB
		}

		// Port B's input bits reflect the keypad column scan driven by
		// whatever row pattern was last written to port A.
		return p.keypad.Scan(p.orA&0x0F) | (p.orB & 0xF0)
	case RegCRB:
		return p.crB
	default:
		return 0
	}
}

func (p *MC6821) Write(reg int, v byte) {
	switch reg {
	case RegA:
		if p.crA&0x04 == 0 {
			p.ddrA = v
		} else {
			p.orA = v
		}
	case RegCRA:
		p.crA = v
	case RegB:
		if p.crB&0x04 == 0 {
			p.ddrB = v
		} else {
			p.orB = v
		}
	case RegCRB:
		p.crB = v
	}
}
