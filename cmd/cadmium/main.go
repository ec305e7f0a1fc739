// Command cadmium is a headless runner for the CHIP-8 family emulation
// core: it loads a binary, classifies it, runs it for a fixed number of
// frames with no display attached, and reports the result with an exit
// code a script can branch on.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"cadmium/core"
	"cadmium/cpu"
	"cadmium/internal/log"
	"cadmium/internal/properties"
	"cadmium/internal/video"
	"cadmium/librarian"
	"cadmium/romdb"
	"cadmium/worker"
)

const (
	exitSuccess       = 0
	exitInvalidInput  = 2
	exitEmulationFail = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("cadmium", flag.ContinueOnError)

	eti := fs.Bool("eti", false, "start ROM at 0x600 for ETI-660")
	preset := fs.String("preset", "CHIP-8", "property preset to run under (see -list-presets)")
	listPresets := fs.Bool("list-presets", false, "print every registered preset name and exit")
	frames := fs.Int("frames", 600, "number of 60Hz frames to run headless before exiting")
	monitorROM := fs.String("monitor", "", "path to a monitor ROM image, required for VIP/DREAM6800/ETI-660 presets")
	platformsPath := fs.String("platforms", "", "path to a platforms.json rom database (falls back to the embedded copy)")
	programsPath := fs.String("programs", "", "path to a programs.json rom database")

	if err := fs.Parse(args); err != nil {
		return exitInvalidInput
	}

	registry := core.NewRegistry()

	if *listPresets {
		for _, p := range registry.Presets() {
			fmt.Printf("%-24s %s\n", p.Name, p.Description)
		}

		return exitSuccess
	}

	if *eti {
		*preset = "ETI-660"
	}

	romPath := fs.Arg(0)
	if romPath == "" {
		fmt.Fprintln(os.Stderr, "cadmium: missing ROM path")
		return exitInvalidInput
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		log.Errorf("cadmium: %v", err)
		return exitInvalidInput
	}

	db := openDatabase(*platformsPath, *programsPath)
	entry := librarian.New(db).Classify(filepath.Base(romPath), data)

	log.Infof("cadmium: %s classified as %s (sha1=%s)", romPath, entry.Classification, entry.SHA1)

	props, ok := presetProperties(registry, *preset)
	if !ok {
		fmt.Fprintf(os.Stderr, "cadmium: unknown preset %q (see -list-presets)\n", *preset)
		return exitInvalidInput
	}

	host := &headlessHost{monitorROMPath: *monitorROM}
	emu := core.New(host, registry, time.Now().UnixNano())

	if err := emu.LoadBinary(filepath.Base(romPath), data, props, entry.Classification == librarian.Known); err != nil {
		log.Errorf("cadmium: %v", err)
		return exitInvalidInput
	}

	w := worker.New(emu, 60)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*frames)*time.Second/60)
	defer cancel()

	if err := w.Run(ctx); err != nil && err != context.DeadlineExceeded && err != context.Canceled {
		log.Errorf("cadmium: %v", err)
		return exitEmulationFail
	}

	if emu.ExecMode() == cpu.Error {
		fmt.Fprintln(os.Stderr, "cadmium: emulation halted in an error state")
		return exitEmulationFail
	}

	dumpScreen(emu.Screen())

	return exitSuccess
}

// openDatabase loads an on-disk rom database when both paths are given,
// otherwise falls back to the embedded offline-first-run copy. A load
// failure is logged and treated the same as "none given" rather than
// aborting the run: an unrecognised ROM just classifies as Unknown.
func openDatabase(platformsPath, programsPath string) *romdb.Database {
	if platformsPath == "" || programsPath == "" {
		return romdb.Fallback()
	}

	db, err := romdb.Load(platformsPath, programsPath)
	if err != nil {
		log.Warnf("cadmium: %v, falling back to the embedded rom database", err)
		return romdb.Fallback()
	}

	return db
}

func presetProperties(r *properties.Registry, name string) (*properties.Properties, bool) {
	for _, p := range r.Presets() {
		if strings.EqualFold(p.Name, name) {
			return p.Properties.Clone(), true
		}
	}

	return nil, false
}

// dumpScreen prints the final framebuffer as block characters, a
// terminal-friendly stand-in for the window a GUI host would have drawn.
func dumpScreen(screen *video.Buffer) {
	if screen == nil {
		return
	}

	w, h := screen.Width(), screen.Height()

	var b strings.Builder

	const allPlanes = 0xF // every plane video.Buffer supports (MaxPlanes == 4)

	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top := screen.PixelOn(x, y, allPlanes)
			bottom := y+1 < h && screen.PixelOn(x, y+1, allPlanes)

			b.WriteRune(blockFor(top, bottom))
		}

		b.WriteByte('\n')
	}

	fmt.Print(b.String())
}

func blockFor(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}

// headlessHost implements core.Host with no display or input device: it
// never reports a key pressed, refuses any draw-side callback, and reads
// its one fixed monitor ROM from disk on demand for hybrid classes.
type headlessHost struct {
	monitorROMPath string
}

func (h *headlessHost) OnRomLoaded(name string, autoRun bool, compilerOpt, sourceOpt string) {
	log.Infof("cadmium: loaded %q (auto-run=%v)", name, autoRun)
}

func (h *headlessHost) OnEmuChanged(c *core.EmulationCore) {
	log.Infof("cadmium: now running %s", c.VariantName())
}

func (h *headlessHost) UpdateScreen() {}
func (h *headlessHost) Vblank()       {}
func (h *headlessHost) IsHeadless() bool { return true }

func (h *headlessHost) GetKeyPressed() (int, bool) { return 0, false }
func (h *headlessHost) GetKeyStates() uint16        { return 0 }

func (h *headlessHost) MonitorROM(class string) ([]byte, error) {
	if h.monitorROMPath == "" {
		return nil, errors.Errorf("cadmium: preset %q needs a monitor ROM, pass -monitor", class)
	}

	return os.ReadFile(h.monitorROMPath)
}
