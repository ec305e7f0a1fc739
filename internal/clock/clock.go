// Package clock implements the monotonic tick arithmetic shared by every
// execution unit in cadmium: a cycle count paired with a clock frequency,
// convertible to and from wall-clock microseconds.
package clock

import "time"

// Time is a 64-bit cycle count at a given clock frequency (Hz), an explicit
// and testable stand-in for raw wall-clock deltas.
type Time struct {
	cycles int64
	hz     int64
}

// New returns a Time at zero cycles for the given clock frequency in Hz.
func New(hz int64) Time {
	return Time{hz: hz}
}

// FromMicroseconds builds a Time representing the given number of elapsed
// microseconds at clock frequency hz.
func FromMicroseconds(us float64, hz int64) Time {
	cycles := int64(us * float64(hz) / 1e6)
	return Time{cycles: cycles, hz: hz}
}

// Cycles returns the raw cycle count.
func (t Time) Cycles() int64 { return t.cycles }

// Hz returns the clock frequency.
func (t Time) Hz() int64 { return t.hz }

// AddCycles returns a Time advanced by n cycles. The clock argument allows
// the frequency to change between calls (e.g. a speed-adjustable core);
// when it differs from t.hz the elapsed time is preserved and re-expressed
// at the new frequency.
func (t Time) AddCycles(n int64, hz int64) Time {
	if hz == t.hz || t.hz == 0 {
		return Time{cycles: t.cycles + n, hz: hz}
	}

	us := t.Microseconds()
	rebased := FromMicroseconds(us, hz)

	return Time{cycles: rebased.cycles + n, hz: hz}
}

// Microseconds converts the tick count to elapsed microseconds.
func (t Time) Microseconds() float64 {
	if t.hz == 0 {
		return 0
	}

	return float64(t.cycles) * 1e6 / float64(t.hz)
}

// DifferenceUs returns t-other expressed in microseconds.
func (t Time) DifferenceUs(other Time) float64 {
	return t.Microseconds() - other.Microseconds()
}

// Before reports whether t occurs strictly before other.
func (t Time) Before(other Time) bool {
	return t.Microseconds() < other.Microseconds()
}

// After reports whether t occurs strictly after other.
func (t Time) After(other Time) bool {
	return t.Microseconds() > other.Microseconds()
}

// Equal reports whether t and other represent the same instant.
func (t Time) Equal(other Time) bool {
	return t.Microseconds() == other.Microseconds()
}

// CyclesPerFrame returns how many cycles elapse in one frame period at the
// given frame rate (Hz), rounding to the nearest whole cycle.
func CyclesPerFrame(clockHz int64, frameRate float64) int64 {
	if frameRate <= 0 {
		return 0
	}

	return int64(float64(clockHz)/frameRate + 0.5)
}

// FramePeriod returns the wall-clock duration of one frame at frameRate Hz.
func FramePeriod(frameRate float64) time.Duration {
	if frameRate <= 0 {
		return 0
	}

	return time.Duration(float64(time.Second) / frameRate)
}
