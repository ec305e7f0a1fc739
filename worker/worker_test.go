package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadmium/core"
)

type fakeHost struct{}

func (fakeHost) OnRomLoaded(name string, autoRun bool, compilerOpt, sourceOpt string) {}
func (fakeHost) OnEmuChanged(c *core.EmulationCore)                                   {}
func (fakeHost) UpdateScreen()                                                        {}
func (fakeHost) Vblank()                                                              {}
func (fakeHost) IsHeadless() bool                                                     { return true }
func (fakeHost) GetKeyPressed() (int, bool)                                           { return 0, false }
func (fakeHost) GetKeyStates() uint16                                                 { return 0 }
func (fakeHost) MonitorROM(class string) ([]byte, error)                              { return make([]byte, 512), nil }

func TestSetKeyDownIsRaceFree(t *testing.T) {
	c := core.New(fakeHost{}, core.NewRegistry(), 1)
	w := New(c, 60)

	done := make(chan struct{})

	go func() {
		for i := 0; i < 1000; i++ {
			w.SetKeyDown(i%16, i%2 == 0)
		}

		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out toggling keys")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	c := core.New(fakeHost{}, core.NewRegistry(), 1)
	w := New(c, 240) // fast frame period so the test doesn't wait long

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}

	assert.Equal(t, PhaseStopped, w.Phase())
}

func TestShutdownStopsTheLoop(t *testing.T) {
	c := core.New(fakeHost{}, core.NewRegistry(), 1)
	w := New(c, 240)

	done := make(chan struct{})
	go func() {
		_ = w.Run(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	w.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after Shutdown")
	}
}

func TestCoreRunsEngineUnderLock(t *testing.T) {
	c := core.New(fakeHost{}, core.NewRegistry(), 1)
	w := New(c, 60)

	var sawNilEngine bool
	w.Core(func(inner *core.EmulationCore) {
		sawNilEngine = inner.Engine() == nil
	})

	require.True(t, sawNilEngine)
}
