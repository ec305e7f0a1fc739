package core

import "github.com/pkg/errors"

// RomLoadError reports a problem loading a binary: file not found, too
// large for the variant, or a malformed cartridge header (spec.md §7).
// The core's state is left unchanged when this is returned.
type RomLoadError struct {
	cause error
}

func (e *RomLoadError) Error() string { return "core: rom load failed: " + e.cause.Error() }
func (e *RomLoadError) Unwrap() error { return e.cause }

func newRomLoadError(format string, args ...interface{}) error {
	return &RomLoadError{cause: errors.Errorf(format, args...)}
}

func wrapRomLoadError(err error, msg string) error {
	return &RomLoadError{cause: errors.Wrap(err, msg)}
}

// PropertiesError reports an invalid or unrecognised Properties value
// (e.g. an unknown class, a read-only property write).
type PropertiesError struct {
	cause error
}

func (e *PropertiesError) Error() string { return "core: " + e.cause.Error() }
func (e *PropertiesError) Unwrap() error { return e.cause }

func wrapPropertiesError(err error) error {
	return &PropertiesError{cause: err}
}

// EmulationFatal reports an unrecoverable runtime fault: an illegal
// opcode, an unsupported extended opcode on a variant that doesn't
// document it, or a backend CPU that never reached its fetch-decode
// entry point. The core halts in cpu.Error until reset.
type EmulationFatal struct {
	cause error
}

func (e *EmulationFatal) Error() string { return "core: emulation fatal: " + e.cause.Error() }
func (e *EmulationFatal) Unwrap() error { return e.cause }

func wrapEmulationFatal(err error) error {
	return &EmulationFatal{cause: err}
}

// CompileError reports a failure compiling or parsing a cartridge's
// embedded source (Octo cartridges carry source alongside their
// compiled ROM).
type CompileError struct {
	cause error
}

func (e *CompileError) Error() string { return "core: compile error: " + e.cause.Error() }
func (e *CompileError) Unwrap() error { return e.cause }
