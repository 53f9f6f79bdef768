package core

import "nrftick/st"

// TimerFreq is the tick rate of the system tick source in Hz
const TimerFreq = st.Frequency

var (
	// uptime tracking, updated under disableInterrupts
	lastTicks  st.Systime
	uptimeBase uint64 // ticks accounted for by completed counter wraps
)

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return uint32(st.GetCounter())
}

// GetUptime returns the number of ticks since TimerInit as a 64-bit value.
// The tick source wraps, so this must be called at least once per wrap
// period; ProcessTimers does that from the main loop.
func GetUptime() uint64 {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	now := st.GetCounter()
	if now < lastTicks {
		uptimeBase += uint64(st.CounterMask) + 1
	}
	lastTicks = now
	return uptimeBase + uint64(now)
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / TimerFreq)
}

// WrapPeriodUS returns how long the tick counter takes to wrap, in microseconds
func WrapPeriodUS() uint64 {
	return (uint64(st.CounterMask) + 1) * 1000000 / TimerFreq
}

// TimerInit starts the tick source and hooks the virtual timer dispatcher
// to its alarm. Call once at boot.
func TimerInit() {
	st.Init()
	st.SetHandler(TimerDispatch)

	timerList = nil
	alarmArmed = false
	lastTicks = 0
	uptimeBase = 0

	RegisterConstant("CLOCK_FREQ", uint32(TimerFreq))
	RegisterConstant("CLOCK_BITS", uint32(st.CounterBits))
	RegisterConstant("ST_BACKEND", st.Backend)
	RegisterConstant("ST_TIMEDELTA", uint32(st.TimeDelta))
}

// ProcessTimers is called from the main loop. It keeps the uptime wrap
// tracking current; timers themselves are dispatched from the alarm interrupt.
func ProcessTimers() {
	_ = GetUptime()
}
