// Package debugger sits between a host and an emulation core's
// execution units, driving the execution-mode state machine, latching
// breakpoint hits, and keeping one-instruction-old state snapshots so a
// UI can colour changed bytes and registers (spec.md §4.6).
package debugger

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cadmium/cpu"
	"cadmium/internal/expr"
)

// Snapshot is a point-in-time copy of one execution unit's visible
// state, taken by CaptureStates so the previous instruction's state stays
// available for diffing.
type Snapshot struct {
	Registers []cpu.Register
	PC        uint32
	Stack     []byte
	Memory    []byte
}

func captureSnapshot(unit cpu.GenericCpu, memoryWindow [2]uint32) Snapshot {
	regs := unit.Registers()
	cp := make([]cpu.Register, len(regs))
	copy(cp, regs)

	var mem []byte
	if memoryWindow[1] > memoryWindow[0] {
		mem = make([]byte, memoryWindow[1]-memoryWindow[0])
		for i := range mem {
			mem[i] = unit.ReadMemory(memoryWindow[0] + uint32(i))
		}
	}

	desc := unit.StackDescriptor()

	var stack []byte
	if desc.EntrySize > 0 {
		stack = make([]byte, desc.EntrySize*8) // zero-filled, sized for 8 entries; stack contents are not copied
	}

	return Snapshot{Registers: cp, PC: unit.ProgramCounter(), Stack: stack, Memory: mem}
}

// Unit tracks one execution unit's debugger-visible state: its current
// and previous snapshot, and its breakpoint-triggered latch.
type Unit struct {
	ID   uuid.UUID
	Name string
	CPU  cpu.GenericCpu

	memoryWindow [2]uint32

	Current  Snapshot
	Previous Snapshot

	breakpointTriggered bool
	lastBreakpoint      cpu.Breakpoint

	savedSP uint32 // for step-over/step-out comparisons, interpreted by the unit's own StackDescriptor direction
}

// NewUnit wraps u as a debugger-tracked execution unit. memoryWindow, if
// non-zero, bounds the address range CaptureStates mirrors into
// Snapshot.Memory; a zero window means "don't snapshot memory" (some
// execution units, like a hybrid core's backend CPU, have address spaces
// too large to mirror wholesale every frame).
func NewUnit(name string, u cpu.GenericCpu, memoryWindow [2]uint32) *Unit {
	return &Unit{ID: uuid.New(), Name: name, CPU: u, memoryWindow: memoryWindow}
}

// CaptureStates snapshots every unit's current state into Previous,
// replacing Current with a fresh read. The host calls this once before
// each user-visible render (spec.md §4.6).
func (u *Unit) CaptureStates() {
	u.Previous = u.Current
	u.Current = captureSnapshot(u.CPU, u.memoryWindow)
}

// Session manages the execution-mode state machine and breakpoint
// latching for a set of execution units belonging to one emulation core.
type Session struct {
	ID    uuid.UUID
	Units map[string]*Unit

	watches map[string]*expr.Expr
}

// NewSession creates an empty debugger session.
func NewSession() *Session {
	return &Session{ID: uuid.New(), Units: map[string]*Unit{}, watches: map[string]*expr.Expr{}}
}

// AddUnit registers an execution unit under name (e.g. "chip8", "1802").
func (s *Session) AddUnit(name string, u cpu.GenericCpu, memoryWindow [2]uint32) *Unit {
	unit := NewUnit(name, u, memoryWindow)
	s.Units[name] = unit

	return unit
}

// CaptureStates snapshots every tracked unit.
func (s *Session) CaptureStates() {
	for _, u := range s.Units {
		u.CaptureStates()
	}
}

// Run transitions unit from cpu.Paused to cpu.Normal, per the PAUSED
// --run--> RUNNING edge of the state machine (spec.md §4.6 names the
// running state RUNNING; cpu.Normal is cadmium's name for the same
// state, see cpu.Mode).
func (s *Session) Run(name string) error {
	u, err := s.unit(name)
	if err != nil {
		return err
	}

	if u.CPU.Mode() == cpu.Error {
		return errors.Errorf("debugger: unit %q is halted in ERROR and cannot resume", name)
	}

	u.CPU.SetMode(cpu.Normal)

	return nil
}

// Pause transitions unit to cpu.Paused from any non-terminal mode.
func (s *Session) Pause(name string) error {
	u, err := s.unit(name)
	if err != nil {
		return err
	}

	if u.CPU.Mode() != cpu.Error {
		u.CPU.SetMode(cpu.Paused)
	}

	return nil
}

// Step transitions unit through PAUSED --step--> STEP --one insn done-->
// PAUSED, executing exactly one instruction.
func (s *Session) Step(name string) error {
	u, err := s.unit(name)
	if err != nil {
		return err
	}

	u.CPU.SetMode(cpu.Step)

	if err := u.CPU.Step(); err != nil {
		u.CPU.SetMode(cpu.Error)
		return err
	}

	s.checkBreakpoint(u)

	if u.CPU.Mode() != cpu.Error {
		u.CPU.SetMode(cpu.Paused)
	}

	return nil
}

// StepOver transitions unit through PAUSED --step-over--> STEPOVER, using
// its stack pointer's saved value so a CALL steps over the callee instead
// of stopping inside it.
func (s *Session) StepOver(name string) error {
	u, err := s.unit(name)
	if err != nil {
		return err
	}

	u.CPU.SetMode(cpu.StepOver)

	type stepOverable interface{ StepOver() error }

	if so, ok := u.CPU.(stepOverable); ok {
		if err := so.StepOver(); err != nil {
			u.CPU.SetMode(cpu.Error)
			return err
		}
	} else if err := u.CPU.Step(); err != nil {
		u.CPU.SetMode(cpu.Error)
		return err
	}

	s.checkBreakpoint(u)

	if u.CPU.Mode() != cpu.Error {
		u.CPU.SetMode(cpu.Paused)
	}

	return nil
}

// StepOut transitions unit through PAUSED --step-out--> STEPOUT, running
// until the current subroutine returns.
func (s *Session) StepOut(name string) error {
	u, err := s.unit(name)
	if err != nil {
		return err
	}

	u.CPU.SetMode(cpu.StepOut)

	type stepOutable interface{ StepOut() error }

	if so, ok := u.CPU.(stepOutable); ok {
		if err := so.StepOut(); err != nil {
			u.CPU.SetMode(cpu.Error)
			return err
		}
	} else if err := u.CPU.Step(); err != nil {
		u.CPU.SetMode(cpu.Error)
		return err
	}

	s.checkBreakpoint(u)

	if u.CPU.Mode() != cpu.Error {
		u.CPU.SetMode(cpu.Paused)
	}

	return nil
}

// checkBreakpoint fires the breakpoint_triggered latch if the unit's PC,
// after the instruction that just retired, matches an enabled
// breakpoint. Transient breakpoints self-clear on fire (spec.md §4.6).
func (s *Session) checkBreakpoint(u *Unit) {
	bp, ok := u.CPU.FindBreakpoint(u.CPU.ProgramCounter())
	if !ok || !bp.Enabled {
		return
	}

	u.breakpointTriggered = true
	u.lastBreakpoint = bp

	if bp.Kind == cpu.TransientBreakpoint {
		u.CPU.ClearBreakpoint(bp.Address)
	}
}

// BreakpointTriggered reports and does not clear the latch; the host
// calls AcknowledgeBreakpoint once it has reacted.
func (s *Session) BreakpointTriggered(name string) (cpu.Breakpoint, bool) {
	u, ok := s.Units[name]
	if !ok {
		return cpu.Breakpoint{}, false
	}

	return u.lastBreakpoint, u.breakpointTriggered
}

// AcknowledgeBreakpoint clears the breakpoint_triggered latch.
func (s *Session) AcknowledgeBreakpoint(name string) {
	if u, ok := s.Units[name]; ok {
		u.breakpointTriggered = false
	}
}

func (s *Session) unit(name string) (*Unit, error) {
	u, ok := s.Units[name]
	if !ok {
		return nil, errors.Errorf("debugger: no execution unit named %q", name)
	}

	return u, nil
}

// SetWatch compiles and registers a named watch expression.
func (s *Session) SetWatch(name, expression string) error {
	e, err := expr.Parse(expression)
	if err != nil {
		return errors.Wrapf(err, "debugger: watch %q", name)
	}

	s.watches[name] = e

	return nil
}

// ClearWatch removes a previously registered watch expression.
func (s *Session) ClearWatch(name string) { delete(s.watches, name) }

// EvalWatch evaluates a registered watch expression against unit's
// current register/memory state.
func (s *Session) EvalWatch(unitName, watchName string) (int64, error) {
	u, err := s.unit(unitName)
	if err != nil {
		return 0, err
	}

	e, ok := s.watches[watchName]
	if !ok {
		return 0, errors.Errorf("debugger: no watch named %q", watchName)
	}

	return e.Eval(cpuEnv{u.CPU})
}

// cpuEnv adapts a cpu.GenericCpu to expr.Env.
type cpuEnv struct {
	cpu cpu.GenericCpu
}

func (e cpuEnv) Register(name string) (uint64, bool) {
	for _, r := range e.cpu.Registers() {
		if r.Name == name {
			return r.Value, true
		}
	}

	return 0, false
}

func (e cpuEnv) MemoryByte(addr uint64) byte { return e.cpu.ReadMemory(uint32(addr)) }
