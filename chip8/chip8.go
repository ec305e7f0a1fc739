package chip8

import "cadmium/cpu"

// ToggleBreakpoint sets or clears a plain breakpoint at the current PC.
func (c *Core) ToggleBreakpoint() {
	addr := uint32(c.PC)

	if _, ok := c.breakpoints[addr]; ok {
		delete(c.breakpoints, addr)
		return
	}

	c.SetChip8Breakpoint(Breakpoint{Address: c.PC, Reason: "user break"})
}

// ClearBreakpoints removes every breakpoint.
func (c *Core) ClearBreakpoints() {
	c.breakpoints = map[uint32]Breakpoint{}
}

// StepOut runs until the current subroutine returns (SP drops below its
// value when StepOut was called) or an error/breakpoint interrupts it. At
// the top level (SP 0) there is no subroutine to leave, and it executes a
// single instruction.
func (c *Core) StepOut() error {
	target := c.SP

	for {
		if err := c.Step(); err != nil {
			return err
		}

		if c.mode == cpu.Error || c.mode == cpu.Paused || c.waitReg >= 0 {
			return nil
		}

		if target == 0 || c.SP < target {
			return nil
		}
	}
}

// StepOver runs a single instruction, but if it is a CALL, runs until the
// matching return instead of stopping inside the callee.
func (c *Core) StepOver() error {
	isCall := false

	if int(c.PC)+1 < len(c.Memory) {
		inst := uint16(c.Memory[c.PC])<<8 | uint16(c.Memory[c.PC+1])
		isCall = inst&0xF000 == 0x2000
	}

	target := c.SP

	if err := c.Step(); err != nil {
		return err
	}

	if !isCall || c.mode == cpu.Error || c.mode == cpu.Paused || c.waitReg >= 0 {
		return nil
	}

	for c.SP > target {
		if err := c.Step(); err != nil {
			return err
		}

		if c.mode == cpu.Error || c.mode == cpu.Paused || c.waitReg >= 0 {
			return nil
		}
	}

	return nil
}
