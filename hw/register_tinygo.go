//go:build tinygo

package hw

import "runtime/volatile"

// Register32 is a memory-mapped 32 bit register. Accesses go through
// runtime/volatile so they are never reordered or elided.
type Register32 = volatile.Register32
