// Package cpu defines GenericCpu, the common contract every execution unit
// in cadmium implements: backend CPUs (6800, 1802), the CHIP-8 interpreter,
// and the CHIP-8 state shadowed out of a real-hardware core's RAM.
package cpu

// Mode is the CPU's execution-mode state machine.
type Mode int

const (
	Normal Mode = iota
	Paused
	Wait
	Step
	StepOver
	StepOut
	Error
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "NORMAL"
	case Paused:
		return "PAUSED"
	case Wait:
		return "WAIT"
	case Step:
		return "STEP"
	case StepOver:
		return "STEPOVER"
	case StepOut:
		return "STEPOUT"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StackDescriptor describes an execution unit's return-address stack shape,
// for the debugger's generic stack view.
type StackDescriptor struct {
	EntrySize int // bytes per entry
	GrowsDown bool
	BigEndian bool
	Contents  func() []byte
}

// Register describes one named register slot and its current value.
type Register struct {
	Name  string
	Width int // bits
	Value uint64
}

// BreakpointKind classifies how a breakpoint came to exist.
type BreakpointKind int

const (
	UserBreakpoint BreakpointKind = iota
	TransientBreakpoint
	CodedBreakpoint
)

// Breakpoint is a single address->behaviour mapping.
type Breakpoint struct {
	Address uint32
	Label   string
	Kind    BreakpointKind
	Enabled bool
}

// GenericCpu is the contract every execution unit exposes to the debugger
// and disassembler.
type GenericCpu interface {
	Identifier() string
	Registers() []Register
	ProgramCounter() uint32
	StackDescriptor() StackDescriptor
	ReadMemory(addr uint32) byte
	Disassemble(addr uint32) (text string, length int)

	SetBreakpoint(bp Breakpoint)
	ClearBreakpoint(addr uint32)
	FindBreakpoint(addr uint32) (Breakpoint, bool)
	Breakpoints() []Breakpoint

	Mode() Mode
	SetMode(Mode)

	Cycles() int64
	Time() int64 // monotonic tick count, clock-scaled

	// Step executes exactly one instruction (or services exactly one
	// pending interrupt) and returns an error only on EmulationFatal.
	Step() error

	// Reset returns the execution unit to its post-construction state.
	Reset()
}
