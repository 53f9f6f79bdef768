//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts and returns the previous mask. Every
// read-then-write of alarm state runs between this and restoreInterrupts.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt mask
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
