// Package core wires the generic chip8 interpreter and the real-hardware
// hybrid cores into a single host-facing facade: one EmulationCore that
// loads a binary, drives it a frame or a slice of microseconds at a time,
// and exposes the screen, palette, and audio buffer a host renders.
package core

import (
	"github.com/go-audio/audio"
	"github.com/pkg/errors"

	"cadmium/cpu"
	"cadmium/internal/clock"
	"cadmium/internal/log"
	"cadmium/internal/palette"
	"cadmium/internal/properties"
	"cadmium/internal/video"
	"cadmium/librarian"
)

// Host is the callback surface EmulationCore drives. A GUI, a headless
// runner, and a test harness each implement it differently; EmulationCore
// itself never touches a window, a file, or an audio device directly.
type Host interface {
	// OnRomLoaded fires once LoadBinary has successfully constructed a new
	// engine, naming the binary and (when known from the rom database or
	// a bundled cartridge) the source/compiler options to surface in a
	// host-side editor.
	OnRomLoaded(name string, autoRun bool, compilerOpt, sourceOpt string)

	// OnEmuChanged fires whenever the running engine is replaced (a new
	// LoadBinary, or a property change that forced reconstruction), so the
	// host can refresh anything it cached off the old engine.
	OnEmuChanged(c *EmulationCore)

	// UpdateScreen is called once per ExecuteFrame so the host can blit
	// Screen() to its window.
	UpdateScreen()

	// Vblank is called once per ExecuteFrame after timers tick, mirroring
	// the engine's own Vblank boundary for host-side bookkeeping (e.g. an
	// on-screen debugger's single-step-to-next-frame feature).
	Vblank()

	// IsHeadless reports whether there is a real display to draw to; a
	// headless host still calls ExecuteFrame but skips the screen side of
	// UpdateScreen.
	IsHeadless() bool

	// GetKeyPressed returns the first hex key currently held, used by
	// FX0A-style wait-for-key opcodes when the host fields raw input
	// rather than EmulationCore.KeyDown per key.
	GetKeyPressed() (key int, ok bool)

	// GetKeyStates returns a 16-bit mask, bit i set if hex key i is down.
	GetKeyStates() uint16

	// MonitorROM returns the fixed monitor/ROM image a hybrid real-hardware
	// class (VIP, DREAM6800, ETI-660) runs underneath a loaded CHIP-8
	// program. Generic chip8.Core classes never call this.
	MonitorROM(class string) ([]byte, error)
}

// buildContext is what EmulationCore passes as the opaque host parameter to
// properties.Factory: a Factory has no rom-bytes parameter of its own
// (properties.Registry predates any particular core needing one), so
// EmulationCore threads the pending rom through the same interface{} slot
// the Factory already receives, alongside the real Host it should wrap.
type buildContext struct {
	Host Host
	ROM  []byte
	Seed int64
}

// EmulationCore is the single mutable emulation session a worker drives.
// It owns at most one Engine at a time; LoadBinary and a quirk-affecting
// UpdateProperties both replace it wholesale rather than mutate it in
// place, since every concrete Engine bakes its dispatch table at
// construction (chip8.Core's Quirks, a hybrid core's monitor ROM).
type EmulationCore struct {
	host     Host
	registry *properties.Registry
	seed     int64

	engine      Engine
	props       *properties.Properties
	variantName string

	romName string
	romSHA1 string

	frameRate float64
}

// New returns an EmulationCore with no rom loaded. seed feeds every
// constructed engine's deterministic RNG; pass a value derived from real
// entropy once at process startup, not per load.
func New(host Host, registry *properties.Registry, seed int64) *EmulationCore {
	return &EmulationCore{host: host, registry: registry, seed: seed, frameRate: 60}
}

// Properties returns the live Properties of the currently loaded engine, or
// nil if none is loaded.
func (c *EmulationCore) Properties() *properties.Properties { return c.props }

// VariantName returns the human-readable dialect name the factory reported
// (e.g. "CHIP-8", "XO-CHIP", "COSMAC VIP"), or "" if none is loaded.
func (c *EmulationCore) VariantName() string { return c.variantName }

// RomSHA1 returns the fingerprint librarian.Fingerprint computed for the
// last loaded binary, or "" if none is loaded.
func (c *EmulationCore) RomSHA1() string { return c.romSHA1 }

// LoadBinary constructs a fresh engine for props's class, seeded with data
// as its program rom, replacing any previously running engine. isKnown
// marks whether the caller resolved the binary against a rom database
// entry (librarian.Known) rather than by decompiler inference, purely for
// the OnRomLoaded autoRun hint: unknown binaries default to starting
// paused so a host can offer the user a chance to inspect it first.
func (c *EmulationCore) LoadBinary(name string, data []byte, props *properties.Properties, isKnown bool) error {
	if len(data) == 0 {
		return newRomLoadError("core: refusing to load an empty binary %q", name)
	}

	ctx := &buildContext{Host: c.host, ROM: data, Seed: c.seed}

	variantName, built, err := c.registry.Create(ctx, props)
	if err != nil {
		return wrapRomLoadError(err, "constructing engine for class "+props.Class)
	}

	engine, ok := built.(Engine)
	if !ok {
		return newRomLoadError("core: factory for class %q did not return a core.Engine", props.Class)
	}

	c.engine = engine
	c.variantName = variantName
	c.props = props.Clone()
	c.romName = name
	c.romSHA1 = librarian.Fingerprint(data)

	log.Infof("core: loaded %q (%d bytes) as %s, sha1=%s", name, len(data), variantName, c.romSHA1)

	if c.host != nil {
		c.host.OnRomLoaded(name, isKnown, "", "")
		c.host.OnEmuChanged(c)
	}

	return nil
}

// UpdateProperties applies a new Properties value to the running engine.
// Every property this codebase defines affects either the dispatch table
// or the monitor-ROM wiring baked in at construction, so needsRecreate is
// always true for any actual change; a caller sees that and calls
// LoadBinary again with the same rom bytes and the new properties. This is
// a conservative simplification over "adjust compatible quirks in place"
// language elsewhere, recorded as a deliberate choice.
func (c *EmulationCore) UpdateProperties(newProps *properties.Properties) (needsRecreate bool, err error) {
	if c.props == nil {
		return false, wrapPropertiesError(errors.New("no engine loaded"))
	}

	if newProps.Class != c.props.Class {
		return true, nil
	}

	if len(properties.Diff(c.props, newProps)) == 0 {
		return false, nil
	}

	c.props = newProps.Clone()

	return true, nil
}

// SetExecMode sets the running engine's cpu.Mode (Normal, Paused, Step,
// ...). It is a no-op if no engine is loaded.
func (c *EmulationCore) SetExecMode(mode cpu.Mode) {
	if c.engine != nil {
		c.engine.SetMode(mode)
	}
}

// ExecMode returns the running engine's cpu.Mode, or cpu.Error if no
// engine is loaded.
func (c *EmulationCore) ExecMode() cpu.Mode {
	if c.engine == nil {
		return cpu.Error
	}

	return c.engine.Mode()
}

// Engine exposes the live execution unit for tools that need the full
// cpu.GenericCpu surface (a debugger.Session, a decompiler re-analysis
// pass). It returns nil if no binary has been loaded.
func (c *EmulationCore) Engine() Engine { return c.engine }

// cyclesPerFrame returns how many Step calls one ExecuteFrame should make,
// derived from the loaded engine's own reported clock (its Time() cadence
// is cycles, one per Step; the frame rate is fixed at 60Hz across every
// supported variant and real machine).
func (c *EmulationCore) cyclesPerFrame() int64 {
	hz := c.props.Int("Clock Hz")
	if hz <= 0 {
		hz = 700_000 // a conventional XO-CHIP-era default; classic roms run fine well above their 1970s originals
	}

	return clock.CyclesPerFrame(hz, c.frameRate)
}

// ExecuteFrame steps the engine for one frame's worth of cycles (derived
// from its configured clock speed), ticks its 60Hz timers once, and fires
// the Vblank boundary on both the engine and the host. It is a no-op
// returning nil if no engine is loaded, matching a host that calls it on a
// fixed schedule regardless of whether a rom happens to be running yet.
func (c *EmulationCore) ExecuteFrame() error {
	if c.engine == nil {
		return nil
	}

	for i := int64(0); i < c.cyclesPerFrame(); i++ {
		mode := c.engine.Mode()
		if mode == cpu.Error || mode == cpu.Paused || mode == cpu.Wait {
			break
		}

		if err := c.engine.Step(); err != nil {
			c.engine.SetMode(cpu.Error)
			log.Errorf("core: %s halted at pc=%#04x: %v", c.romName, c.engine.ProgramCounter(), err)
			return wrapEmulationFatal(err)
		}
	}

	c.engine.TickTimers()
	c.engine.Vblank()

	if c.host != nil {
		c.host.Vblank()
		c.host.UpdateScreen()
	}

	return nil
}

// ExecuteFor runs whole frames until fewer than one frame period's worth
// of microseconds remain, returning the leftover for the caller to carry
// into its next call (the worker package's cooperative loop accumulates
// this across calls rather than losing it to rounding).
func (c *EmulationCore) ExecuteFor(us float64) (remainingUs float64, err error) {
	framePeriodUs := 1e6 / c.frameRate

	for us >= framePeriodUs {
		if err := c.ExecuteFrame(); err != nil {
			return us, err
		}

		us -= framePeriodUs
	}

	return us, nil
}

// Screen returns the running engine's planar framebuffer, or nil if no
// engine is loaded.
func (c *EmulationCore) Screen() *video.Buffer {
	if c.engine == nil {
		return nil
	}

	return c.engine.Video()
}

// Palette returns the running engine's active colour palette, or the
// default palette if no engine is loaded.
func (c *EmulationCore) Palette() palette.Palette {
	if c.engine == nil {
		return palette.Default()
	}

	return c.engine.Video().Palette()
}

// AudioRender fills buf with sampleRate's worth of PCM audio from the
// running engine, leaving buf untouched if no engine is loaded (a host
// should treat an untouched buffer as silence).
func (c *EmulationCore) AudioRender(buf *audio.IntBuffer, sampleRate int) {
	if c.engine != nil {
		c.engine.RenderAudio(buf, sampleRate)
	}
}

// KeyDown reports and forwards a hex key's current physical state to the
// running engine, a thin host-polling convenience around PressKey/
// ReleaseKey for hosts that track key state themselves rather than
// fielding discrete press/release events.
func (c *EmulationCore) KeyDown(key int, down bool) bool {
	if c.engine == nil {
		return down
	}

	if down {
		c.engine.PressKey(key)
	} else {
		c.engine.ReleaseKey(key)
	}

	return down
}
