// Package st is the system tick source of the kernel: a free-running
// hardware counter and a single one-shot alarm compare slot.
//
// Exactly one backend is compiled in. The default uses RTC0, a 24 bit
// low-power counter. Building with the st_timer tag uses TIMER0 in 32 bit
// mode, read through a capture channel.
//
// None of the functions validate their arguments or lock anything. They are
// called from the kernel with interrupts masked, or from the alarm interrupt
// itself, and callers own the ordering between the two.
package st

// Systime is a tick value. It wraps at CounterBits; compare tick values with
// Before and Elapsed, never with the integer operators.
type Systime uint32

// CounterMask masks a tick value to the width of the backend counter.
const CounterMask Systime = 1<<CounterBits - 1

// Add returns t advanced by d ticks.
func Add(t, d Systime) Systime {
	return (t + d) & CounterMask
}

// Elapsed returns the number of ticks from a forward to b.
func Elapsed(a, b Systime) Systime {
	return (b - a) & CounterMask
}

// Before reports whether a comes strictly before b, taking the shorter way
// around the counter.
func Before(a, b Systime) bool {
	d := Elapsed(a, b)
	return d != 0 && d <= CounterMask>>1
}

var handler func()

// SetHandler registers the kernel callback run by ServeInterrupt when the
// alarm fires.
func SetHandler(fn func()) {
	handler = fn
}
