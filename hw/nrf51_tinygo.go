//go:build tinygo

package hw

import "unsafe"

// Peripheral instances. There is exactly one of each on the chip.
var (
	CLOCK  = (*CLOCK_Type)(unsafe.Pointer(uintptr(clockBase)))
	TIMER0 = (*TIMER_Type)(unsafe.Pointer(uintptr(timer0Base)))
	RTC0   = (*RTC_Type)(unsafe.Pointer(uintptr(rtc0Base)))
)
