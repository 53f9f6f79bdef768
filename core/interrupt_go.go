//go:build !tinygo

package core

// State stands in for the saved interrupt mask on the host
type State uintptr

// disableInterrupts is a no-op on the host; tests drive the emulated
// peripheral from one goroutine
func disableInterrupts() State {
	return 0
}

func restoreInterrupts(state State) {}
