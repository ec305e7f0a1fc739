package chip8

import (
	"math"

	"github.com/go-audio/audio"
)

// audioState tracks everything Step/opAudio/opPitch need to render sound,
// independently of any particular host audio backend (the teacher instead
// drove an SDL callback directly off VM.ST; cadmium renders into a
// buffer the host pulls on its own schedule).
type audioState struct {
	pattern [16]byte // XO-CHIP 128-bit playback pattern, MSB first per byte
	pitch   byte     // XO-CHIP FX3A pitch register, default 64 (4000Hz)
	phase   float64  // running phase accumulator in pattern-bits per sample
}

const defaultPitch = 64

// loadAudioPattern copies the 16-byte pattern buffer starting at I into the
// audio state, per XO-CHIP's F002 instruction.
func (c *Core) loadAudioPattern() {
	for i := 0; i < 16; i++ {
		addr := int(c.I) + i
		if addr < len(c.Memory) {
			c.audio.pattern[i] = c.Memory[addr]
		}
	}
}

// playbackRate converts the pitch register into a pattern playback
// frequency in Hz, following XO-CHIP's documented formula.
func playbackRate(pitch byte) float64 {
	return 4000 * math.Pow(2, (float64(pitch)-64)/48)
}

func (c *Core) patternBit(phase float64) bool {
	idx := int(phase) % 128
	byteIdx := idx / 8
	bit := byte(0x80 >> uint(idx%8))
	return c.audio.pattern[byteIdx]&bit != 0
}

// RenderAudio fills buf with one sample-buffer's worth of audio at
// sampleRate Hz, silent when ST is zero, a classic single-tone beeper for
// plain CHIP-8/SUPER-CHIP variants, and the XO-CHIP bit-pattern tone
// (at the pitch-derived rate) for variants with pattern-buffer support.
// Samples are emitted as full-scale signed values, the interchange
// format github.com/go-audio/audio.IntBuffer expects.
func (c *Core) RenderAudio(buf *audio.IntBuffer, sampleRate int) {
	if !c.SoundActive() {
		for i := range buf.Data {
			buf.Data[i] = 0
		}

		c.audio.phase = 0

		return
	}

	if c.Quirks.Planes <= 1 {
		c.renderBeep(buf, sampleRate)
		return
	}

	rate := playbackRate(c.audio.pitch)
	bitsPerSample := rate / float64(sampleRate)

	for i := range buf.Data {
		if c.patternBit(c.audio.phase) {
			buf.Data[i] = math.MaxInt16
		} else {
			buf.Data[i] = math.MinInt16
		}

		c.audio.phase += bitsPerSample
		if c.audio.phase >= 128 {
			c.audio.phase -= 128
		}
	}
}

// renderBeep produces a fixed 440Hz square wave, cadmium's stand-in for the
// classic CHIP-8 beeper tone the teacher's SDL callback drove directly off
// VM.ST rather than rendering into a buffer.
func (c *Core) renderBeep(buf *audio.IntBuffer, sampleRate int) {
	const beepFreq = 440.0
	samplesPerCycle := float64(sampleRate) / beepFreq

	for i := range buf.Data {
		if math.Mod(c.audio.phase, samplesPerCycle) < samplesPerCycle/2 {
			buf.Data[i] = math.MaxInt16
		} else {
			buf.Data[i] = math.MinInt16
		}

		c.audio.phase++
	}
}
