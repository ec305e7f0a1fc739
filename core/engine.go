package core

import (
	"github.com/go-audio/audio"

	"cadmium/cpu"
	"cadmium/internal/video"
)

// Engine is what EmulationCore drives: a cpu.GenericCpu execution unit
// plus the CHIP-8-shaped host surface (video, keys, timers, audio) every
// concrete core (chip8.Core or a hybrid hardware core) exposes
// identically regardless of which dialect or real machine it implements.
type Engine interface {
	cpu.GenericCpu

	Video() *video.Buffer
	PressKey(key int)
	ReleaseKey(key int)
	TickTimers()
	SoundActive() bool
	RenderAudio(buf *audio.IntBuffer, sampleRate int)
	Vblank()
}
