// Package worker drives an *core.EmulationCore on a cooperative frame loop:
// a single goroutine ticking against a monotonic clock, with fire-and-forget
// signalling from other goroutines (a host's input thread, a UI thread
// requesting pause/resume) handled through atomics rather than taking the
// core's mutex for every keystroke.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"cadmium/core"
	"cadmium/cpu"
	"cadmium/internal/clock"
	"cadmium/internal/log"
)

// Phase is the worker's own run state, distinct from the engine's cpu.Mode:
// a worker can be Stopped with no engine loaded at all, where cpu.Mode is
// meaningless.
type Phase uint32

const (
	PhaseStopped Phase = iota
	PhaseRunning
	PhasePausing
)

// Worker owns one EmulationCore and runs it at a fixed frame rate in its
// own goroutine, started by Run and stopped by Shutdown. Every exported
// method except Run is safe to call concurrently from any goroutine.
type Worker struct {
	mu   sync.Mutex
	core *core.EmulationCore

	frameRate float64

	phase    atomic.Uint32
	shutdown atomic.Bool

	keyStates atomic.Uint32 // 16 bits used, packed for a single atomic load/store
}

// New returns a Worker driving c at frameRate frames per second (60 for
// every supported variant and real machine).
func New(c *core.EmulationCore, frameRate float64) *Worker {
	w := &Worker{core: c, frameRate: frameRate}
	w.phase.Store(uint32(PhaseStopped))

	return w
}

// Core returns the underlying EmulationCore, taking the worker's mutex for
// the duration of fn so the caller can safely call LoadBinary or
// UpdateProperties without racing the frame loop.
func (w *Worker) Core(fn func(c *core.EmulationCore)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	fn(w.core)
}

// SetKeyDown records a hex key's physical state for the frame loop to pick
// up on its next tick, without blocking on the worker's mutex.
func (w *Worker) SetKeyDown(key int, down bool) {
	if key < 0 || key > 0xF {
		return
	}

	for {
		old := w.keyStates.Load()
		next := old

		if down {
			next |= 1 << uint(key)
		} else {
			next &^= 1 << uint(key)
		}

		if w.keyStates.CompareAndSwap(old, next) {
			return
		}
	}
}

// Phase returns the worker's current run phase.
func (w *Worker) Phase() Phase { return Phase(w.phase.Load()) }

// Pause requests the frame loop stop stepping the engine after its current
// frame; the engine itself moves to cpu.Paused.
func (w *Worker) Pause() {
	w.Core(func(c *core.EmulationCore) { c.SetExecMode(cpu.Paused) })
	w.phase.Store(uint32(PhasePausing))
}

// Resume requests the frame loop resume stepping.
func (w *Worker) Resume() {
	w.Core(func(c *core.EmulationCore) { c.SetExecMode(cpu.Normal) })
	w.phase.Store(uint32(PhaseRunning))
}

// Run drives the frame loop until ctx is cancelled or Shutdown is called,
// blocking the calling goroutine. It returns the first error a frame
// produced (an EmulationFatal) or ctx.Err() on cancellation, nil on a
// clean Shutdown.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.loop(ctx)
	})

	return g.Wait()
}

// Shutdown asks Run's loop to stop before its next frame and then sleeps
// one frame period; it does not wait on the loop itself.
func (w *Worker) Shutdown() {
	w.shutdown.Store(true)
	time.Sleep(clock.FramePeriod(w.frameRate))
}

func (w *Worker) loop(ctx context.Context) error {
	period := clock.FramePeriod(w.frameRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	w.phase.Store(uint32(PhaseRunning))

	deadline := time.Now()

	for {
		select {
		case <-ctx.Done():
			w.phase.Store(uint32(PhaseStopped))
			return ctx.Err()
		case now := <-ticker.C:
			if w.shutdown.Load() {
				w.phase.Store(uint32(PhaseStopped))
				return nil
			}

			// Skip ahead rather than spin a catch-up burst if the host
			// stalled (a debugger breakpoint hit, a slow render) for two
			// or more frame periods past this tick's due time.
			if missed := now.Sub(deadline) - period; missed >= period*2 {
				log.Warnf("worker: skipping ahead %v of missed frames", missed)
				deadline = now.Add(-period)
			}

			deadline = deadline.Add(period)

			if Phase(w.phase.Load()) != PhasePausing {
				w.tick()
			}
		}
	}
}

func (w *Worker) tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	states := w.keyStates.Load()
	for key := 0; key < 16; key++ {
		w.core.KeyDown(key, states&(1<<uint(key)) != 0)
	}

	if err := w.core.ExecuteFrame(); err != nil {
		log.Errorf("worker: frame execution failed: %v", err)
		w.phase.Store(uint32(PhasePausing))
	}
}
