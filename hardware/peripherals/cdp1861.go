package peripherals

import "cadmium/internal/video"

// CDP1861 is the RCA "Pixie" video chip used by the COSMAC VIP. Real
// hardware steals CPU cycles during DMA bursts and raises an interrupt at
// the start of the active display area; cadmium models the bus-visible
// result of that burst (the display RAM blitted to the screen once per
// field and an IRQ request available to the backend CPU) without
// reproducing the exact cycle-by-cycle DMA handshake, which no opcode or
// debugger-visible state depends on.
type CDP1861 struct {
	DisplayBase uint16 // start of the 1-bit-per-pixel display RAM window
	Width       int    // pixels per scan line (always 64 on the VIP)
	Height      int    // scan lines (32 lores / 64 with the two-page trick)

	enabled     bool
	irqPending  bool
	video       *video.Buffer
}

// NewCDP1861 attaches a Pixie chip to a video buffer; width/height describe
// the display RAM window it reads each field.
func NewCDP1861(v *video.Buffer, base uint16, width, height int) *CDP1861 {
	return &CDP1861{DisplayBase: base, Width: width, Height: height, video: v}
}

// SetEnabled mirrors the 1861's DISPLAY ON/OFF latch (toggled by the 1802
// executing `67`/SEx-driven I/O to the chip's select line).
func (p *CDP1861) SetEnabled(on bool) { p.enabled = on }

func (p *CDP1861) Enabled() bool { return p.enabled }

// Buffer exposes the video buffer this chip blits into.
func (p *CDP1861) Buffer() *video.Buffer { return p.video }

// Field reads one field's worth of display RAM out of mem and blits it into
// the video buffer, called once per emulated video field (60Hz on NTSC
// COSMAC VIP hardware). It also latches the field's interrupt, serviced by
// the backend CPU at its next instruction boundary.
func (p *CDP1861) Field(mem func(addr uint16) byte) {
	if !p.enabled {
		return
	}

	p.irqPending = true
	rowBytes := p.Width / 8

	for y := 0; y < p.Height; y++ {
		for xb := 0; xb < rowBytes; xb++ {
			b := mem(p.DisplayBase + uint16(y*rowBytes+xb))

			for bit := 0; bit < 8; bit++ {
				x := xb*8 + bit
				on := b&(0x80>>uint(bit)) != 0

				if on {
					p.video.SetPixel(x, y, 1)
				}
			}
		}
	}
}

// ClearScreen wipes the video buffer, called before each Field blit so
// pixels that went dark in display RAM disappear.
func (p *CDP1861) ClearScreen() { p.video.ClearPlane(1) }

// TakeInterrupt reports and clears the pending field interrupt.
func (p *CDP1861) TakeInterrupt() bool {
	if !p.irqPending {
		return false
	}

	p.irqPending = false

	return true
}
