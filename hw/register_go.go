//go:build !tinygo

package hw

import "sync/atomic"

// Register32 is the host stand-in for a memory-mapped register.
// A register may carry a write hook that models what the peripheral does
// when software writes it (task triggers, write-one-to-set/clear).
type Register32 struct {
	Reg   uint32
	write func(v uint32)
}

// Get returns the register value
func (r *Register32) Get() uint32 {
	return atomic.LoadUint32(&r.Reg)
}

// Set writes the register, running the peripheral hook if any
func (r *Register32) Set(value uint32) {
	if r.write != nil {
		r.write(value)
		return
	}
	atomic.StoreUint32(&r.Reg, value)
}

// SetBits reads the register, sets the given bits and writes it back
func (r *Register32) SetBits(value uint32) {
	r.Set(r.Get() | value)
}

// ClearBits reads the register, clears the given bits and writes it back
func (r *Register32) ClearBits(value uint32) {
	r.Set(r.Get() &^ value)
}

// HasBits reports whether any of the given bits are set
func (r *Register32) HasBits(value uint32) bool {
	return r.Get()&value != 0
}

// store updates the value without running the write hook.
// Used by the emulated peripheral to latch hardware-side changes.
func (r *Register32) store(value uint32) {
	atomic.StoreUint32(&r.Reg, value)
}
