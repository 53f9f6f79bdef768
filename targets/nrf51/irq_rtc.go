//go:build nrf51 && !st_timer

package main

import (
	"device/nrf"
	"runtime/interrupt"

	"nrftick/st"
)

// enableAlarmInterrupt hooks the RTC0 compare interrupt to the tick source.
// The TinyGo runtime keeps RTC1 for sleep, so RTC0 is free.
func enableAlarmInterrupt() {
	irq := interrupt.New(nrf.IRQ_RTC0, func(interrupt.Interrupt) {
		st.ServeInterrupt()
	})
	irq.SetPriority(0xc0)
	irq.Enable()
}
