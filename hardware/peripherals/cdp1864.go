package peripherals

import "cadmium/internal/video"

// CDP1864 is the RCA video/audio/colour chip used by the ETI-660 (and
// COSMAC VIP colour expansion). It adds a tone generator clocked by a
// divider latch and a background colour register to the CDP1861's display
// pipeline.
type CDP1864 struct {
	DisplayBase uint16
	Width       int
	Height      int

	enabled    bool
	irqPending bool
	toneOn     bool
	toneDiv    byte // tone frequency divider latch, written via OUT
	video      *video.Buffer
}

func NewCDP1864(v *video.Buffer, base uint16, width, height int) *CDP1864 {
	return &CDP1864{DisplayBase: base, Width: width, Height: height, video: v}
}

func (p *CDP1864) SetEnabled(on bool) { p.enabled = on }
func (p *CDP1864) Enabled() bool      { return p.enabled }

// Buffer exposes the video buffer this chip blits into.
func (p *CDP1864) Buffer() *video.Buffer { return p.video }

// SetTone latches the Q-line-controlled tone on/off state; the 1802's Q
// output line drives the 1864's tone generator directly on real hardware.
func (p *CDP1864) SetTone(on bool) { p.toneOn = on }

// SetToneDivider latches the divider value written to the chip's tone
// frequency register, which together with the system clock sets the
// beeper's pitch.
func (p *CDP1864) SetToneDivider(v byte) { p.toneDiv = v }

// ToneFrequency returns the resulting tone pitch in Hz for a given system
// clock, or 0 if the tone is off.
func (p *CDP1864) ToneFrequency(clockHz int64) float64 {
	if !p.toneOn || p.toneDiv == 0 {
		return 0
	}

	return float64(clockHz) / (8 * float64(p.toneDiv+1) * 2)
}

func (p *CDP1864) Field(mem func(addr uint16) byte) {
	if !p.enabled {
		return
	}

	p.irqPending = true
	rowBytes := p.Width / 8

	for y := 0; y < p.Height; y++ {
		for xb := 0; xb < rowBytes; xb++ {
			b := mem(p.DisplayBase + uint16(y*rowBytes+xb))

			for bit := 0; bit < 8; bit++ {
				if b&(0x80>>uint(bit)) != 0 {
					p.video.SetPixel(xb*8+bit, y, 1)
				}
			}
		}
	}
}

func (p *CDP1864) ClearScreen() { p.video.ClearPlane(1) }

func (p *CDP1864) TakeInterrupt() bool {
	if !p.irqPending {
		return false
	}

	p.irqPending = false

	return true
}
