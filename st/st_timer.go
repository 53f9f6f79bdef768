//go:build st_timer

package st

import "nrftick/hw"

const (
	// Backend names the compiled tick source.
	Backend = "timer"

	// CounterBits is the width of the TIMER0 counter in 32 bit mode.
	CounterBits = 32

	// Frequency is the tick rate in Hz.
	Frequency = hw.HFCLKFrequency >> TimerPrescaler
)

// CC[0] holds the alarm, CC[1] receives counter captures.
const (
	alarmChannel   = 0
	captureChannel = 1
)

// Init configures TIMER0 as a 32 bit free-running timer and starts it.
func Init() {
	hw.TIMER0.TASKS_STOP.Set(1)
	hw.TIMER0.MODE.Set(hw.TIMER_MODE_MODE_Timer)
	hw.TIMER0.BITMODE.Set(hw.TIMER_BITMODE_BITMODE_32Bit)
	hw.TIMER0.PRESCALER.Set(TimerPrescaler)
	hw.TIMER0.SHORTS.Set(0)
	hw.TIMER0.INTENCLR.Set(hw.TIMER_INTENCLR_COMPARE0_Msk)
	hw.TIMER0.EVENTS_COMPARE[alarmChannel].Set(0)
	hw.TIMER0.TASKS_CLEAR.Set(1)
	hw.TIMER0.TASKS_START.Set(1)
}

// GetCounter returns the current tick. The counter has no readable
// register, so it is captured into CC[1] and read back from there.
func GetCounter() Systime {
	hw.TIMER0.TASKS_CAPTURE[captureChannel].Set(1)
	return Systime(hw.TIMER0.CC[captureChannel].Get())
}

// StartAlarm arms the alarm for target. The stale compare event is cleared
// after the target is written and before the interrupt is enabled, so no
// earlier match can fire.
func StartAlarm(target Systime) {
	hw.TIMER0.CC[alarmChannel].Set(uint32(target))
	hw.TIMER0.EVENTS_COMPARE[alarmChannel].Set(0)
	hw.TIMER0.INTENSET.Set(hw.TIMER_INTENSET_COMPARE0_Msk)
}

// StopAlarm disables the alarm interrupt and clears its compare event.
func StopAlarm() {
	hw.TIMER0.INTENCLR.Set(hw.TIMER_INTENCLR_COMPARE0_Msk)
	hw.TIMER0.EVENTS_COMPARE[alarmChannel].Set(0)
}

// SetAlarm moves the target of an armed alarm.
func SetAlarm(target Systime) {
	hw.TIMER0.CC[alarmChannel].Set(uint32(target))
}

// GetAlarm returns the programmed alarm target.
func GetAlarm() Systime {
	return Systime(hw.TIMER0.CC[alarmChannel].Get())
}

// IsAlarmActive always reports false on this backend.
// TODO: read INTENSET COMPARE0 once the kernel is checked against a true
// result here; the RTC backend already does.
func IsAlarmActive() bool {
	return false
}

// ServeInterrupt is the body of the TIMER0 interrupt handler.
func ServeInterrupt() {
	if hw.TIMER0.EVENTS_COMPARE[alarmChannel].Get() == 0 {
		return
	}
	hw.TIMER0.EVENTS_COMPARE[alarmChannel].Set(0)
	if handler != nil {
		handler()
	}
}
