//go:build nrf51 && st_timer

package main

import (
	"device/nrf"
	"runtime/interrupt"

	"nrftick/st"
)

// enableAlarmInterrupt hooks the TIMER0 compare interrupt to the tick source
func enableAlarmInterrupt() {
	irq := interrupt.New(nrf.IRQ_TIMER0, func(interrupt.Interrupt) {
		st.ServeInterrupt()
	})
	irq.SetPriority(0xc0)
	irq.Enable()
}
