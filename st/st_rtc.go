//go:build !st_timer

package st

import "nrftick/hw"

const (
	// Backend names the compiled tick source.
	Backend = "rtc"

	// CounterBits is the width of the RTC counter.
	CounterBits = 24

	// Frequency is the tick rate in Hz.
	Frequency = RTCFrequency
)

const rtcPrescaler = hw.LFCLKFrequency/RTCFrequency - 1

// Init starts the low frequency clock and RTC0. The counter runs from zero
// and is never stopped. The alarm is left disabled with its interrupt
// unmasked, so enabling the compare event is all StartAlarm has to do.
func Init() {
	hw.CLOCK.LFCLKSRC.Set(LFCLKSource)
	hw.CLOCK.EVENTS_LFCLKSTARTED.Set(0)
	hw.CLOCK.TASKS_LFCLKSTART.Set(1)
	for hw.CLOCK.EVENTS_LFCLKSTARTED.Get() == 0 {
	}
	hw.CLOCK.EVENTS_LFCLKSTARTED.Set(0)

	hw.RTC0.TASKS_STOP.Set(1)
	hw.RTC0.PRESCALER.Set(rtcPrescaler)
	hw.RTC0.EVTENCLR.Set(hw.RTC_EVTEN_COMPARE0_Msk)
	hw.RTC0.EVENTS_COMPARE[0].Set(0)
	hw.RTC0.INTENSET.Set(hw.RTC_INTENSET_COMPARE0_Msk)
	hw.RTC0.TASKS_CLEAR.Set(1)
	hw.RTC0.TASKS_START.Set(1)
}

// GetCounter returns the current tick.
func GetCounter() Systime {
	return Systime(hw.RTC0.COUNTER.Get())
}

// StartAlarm arms the alarm for target. The stale compare event is cleared
// after the target is written and before the event is enabled, so no
// earlier match can fire.
func StartAlarm(target Systime) {
	hw.RTC0.CC[0].Set(uint32(target))
	hw.RTC0.EVENTS_COMPARE[0].Set(0)
	hw.RTC0.EVTENSET.Set(hw.RTC_EVTEN_COMPARE0_Msk)
}

// StopAlarm disables the alarm and clears its compare event.
func StopAlarm() {
	hw.RTC0.EVTENCLR.Set(hw.RTC_EVTEN_COMPARE0_Msk)
	hw.RTC0.EVENTS_COMPARE[0].Set(0)
}

// SetAlarm moves the target of an armed alarm.
func SetAlarm(target Systime) {
	hw.RTC0.CC[0].Set(uint32(target))
}

// GetAlarm returns the programmed alarm target.
func GetAlarm() Systime {
	return Systime(hw.RTC0.CC[0].Get())
}

// IsAlarmActive reports whether the compare event is enabled.
func IsAlarmActive() bool {
	return hw.RTC0.EVTEN.Get()&hw.RTC_EVTEN_COMPARE0_Msk != 0
}

// ServeInterrupt is the body of the RTC0 interrupt handler.
func ServeInterrupt() {
	if hw.RTC0.EVENTS_COMPARE[0].Get() == 0 {
		return
	}
	hw.RTC0.EVENTS_COMPARE[0].Set(0)
	if handler != nil {
		handler()
	}
}
