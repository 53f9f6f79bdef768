//go:build !tinygo

package hw

// Peripheral instances. On the host they are backed by an emulator that
// tests drive with Advance.
var (
	CLOCK  = &CLOCK_Type{}
	TIMER0 = &TIMER_Type{}
	RTC0   = &RTC_Type{}
)

// emulator holds peripheral state that has no readable register.
// It is driven from a single goroutine.
type emulator struct {
	lfclkRunning bool
	rtcRunning   bool
	rtcInten     uint32
	timerRunning bool
	timerInten   uint32
	timerCounter uint32
}

var emu emulator

func init() {
	wire()
}

// Reset puts every emulated peripheral back into its power-on state.
func Reset() {
	*CLOCK = CLOCK_Type{}
	*TIMER0 = TIMER_Type{}
	*RTC0 = RTC_Type{}
	emu = emulator{}
	wire()
}

// Advance moves every running counter forward by n ticks of its own clock
// and latches the events the hardware would have produced on the way.
// RTC compare events are only generated while enabled in EVTEN; TIMER
// compare events are always generated.
func Advance(n uint32) {
	if n == 0 {
		return
	}
	if emu.rtcRunning && emu.lfclkRunning {
		advanceRTC(n)
	}
	if emu.timerRunning && TIMER0.MODE.Get() == TIMER_MODE_MODE_Timer {
		advanceTimer(n)
	}
}

// RTCPending reports whether RTC0 is requesting its interrupt.
func RTCPending() bool {
	for i := range RTC0.EVENTS_COMPARE {
		if RTC0.EVENTS_COMPARE[i].Get() != 0 && emu.rtcInten&(RTC_INTENSET_COMPARE0_Msk<<i) != 0 {
			return true
		}
	}
	return (RTC0.EVENTS_TICK.Get() != 0 && emu.rtcInten&RTC_EVTEN_TICK_Msk != 0) ||
		(RTC0.EVENTS_OVRFLW.Get() != 0 && emu.rtcInten&RTC_EVTEN_OVRFLW_Msk != 0)
}

// TimerPending reports whether TIMER0 is requesting its interrupt.
func TimerPending() bool {
	for i := range TIMER0.EVENTS_COMPARE {
		if TIMER0.EVENTS_COMPARE[i].Get() != 0 && emu.timerInten&(TIMER_INTENSET_COMPARE0_Msk<<i) != 0 {
			return true
		}
	}
	return false
}

// RTCRunning reports whether RTC0 has been started and has a clock.
func RTCRunning() bool {
	return emu.rtcRunning && emu.lfclkRunning
}

// TimerRunning reports whether TIMER0 has been started.
func TimerRunning() bool {
	return emu.timerRunning
}

// TimerCount returns the internal TIMER0 counter. The hardware only exposes
// it through a capture task.
func TimerCount() uint32 {
	return emu.timerCounter
}

func advanceRTC(n uint32) {
	from := RTC0.COUNTER.Get()
	evten := RTC0.EVTEN.Get()
	for i := range RTC0.CC {
		if evten&(RTC_EVTEN_COMPARE0_Msk<<i) != 0 &&
			crosses(from, RTC0.CC[i].Get(), n, RTC_COUNTER_COUNTER_Msk) {
			RTC0.EVENTS_COMPARE[i].store(1)
		}
	}
	if evten&RTC_EVTEN_OVRFLW_Msk != 0 && crosses(from, 0, n, RTC_COUNTER_COUNTER_Msk) {
		RTC0.EVENTS_OVRFLW.store(1)
	}
	if evten&RTC_EVTEN_TICK_Msk != 0 {
		RTC0.EVENTS_TICK.store(1)
	}
	RTC0.COUNTER.store((from + n) & RTC_COUNTER_COUNTER_Msk)
}

func advanceTimer(n uint32) {
	mask := timerWidthMask(TIMER0.BITMODE.Get())
	from := emu.timerCounter
	for i := range TIMER0.CC {
		if crosses(from, TIMER0.CC[i].Get()&mask, n, mask) {
			TIMER0.EVENTS_COMPARE[i].store(1)
		}
	}
	emu.timerCounter = (from + n) & mask
}

// crosses reports whether a counter sitting at from reaches target during
// the next n increments, counting modulo mask+1.
func crosses(from, target, n, mask uint32) bool {
	if uint64(n) > uint64(mask) {
		return true
	}
	d := (target - from) & mask
	return d != 0 && d <= n
}

// timerWidthMask returns the counter mask selected by a BITMODE value.
func timerWidthMask(bitmode uint32) uint32 {
	switch bitmode & 3 {
	case TIMER_BITMODE_BITMODE_08Bit:
		return 0xFF
	case TIMER_BITMODE_BITMODE_24Bit:
		return 0xFFFFFF
	case TIMER_BITMODE_BITMODE_32Bit:
		return 0xFFFFFFFF
	default:
		return 0xFFFF
	}
}

func task(fn func()) func(uint32) {
	return func(v uint32) {
		if v&1 != 0 {
			fn()
		}
	}
}

func readOnly(uint32) {}

func setRTCEvten(v uint32) {
	RTC0.EVTEN.store(v)
	RTC0.EVTENSET.store(v)
	RTC0.EVTENCLR.store(v)
}

func setRTCInten(v uint32) {
	emu.rtcInten = v
	RTC0.INTENSET.store(v)
	RTC0.INTENCLR.store(v)
}

func setTimerInten(v uint32) {
	emu.timerInten = v
	TIMER0.INTENSET.store(v)
	TIMER0.INTENCLR.store(v)
}

// wire attaches the peripheral behaviour to the registers software writes.
func wire() {
	CLOCK.TASKS_LFCLKSTART.write = task(func() {
		emu.lfclkRunning = true
		CLOCK.EVENTS_LFCLKSTARTED.store(1)
	})
	CLOCK.TASKS_LFCLKSTOP.write = task(func() { emu.lfclkRunning = false })

	RTC0.TASKS_START.write = task(func() { emu.rtcRunning = true })
	RTC0.TASKS_STOP.write = task(func() { emu.rtcRunning = false })
	RTC0.TASKS_CLEAR.write = task(func() { RTC0.COUNTER.store(0) })
	RTC0.COUNTER.write = readOnly
	RTC0.PRESCALER.write = func(v uint32) { RTC0.PRESCALER.store(v & RTC_PRESCALER_PRESCALER_Msk) }
	for i := range RTC0.CC {
		cc := &RTC0.CC[i]
		cc.write = func(v uint32) { cc.store(v & RTC_COUNTER_COUNTER_Msk) }
	}
	RTC0.EVTEN.write = setRTCEvten
	RTC0.EVTENSET.write = func(v uint32) { setRTCEvten(RTC0.EVTEN.Get() | v) }
	RTC0.EVTENCLR.write = func(v uint32) { setRTCEvten(RTC0.EVTEN.Get() &^ v) }
	RTC0.INTENSET.write = func(v uint32) { setRTCInten(emu.rtcInten | v) }
	RTC0.INTENCLR.write = func(v uint32) { setRTCInten(emu.rtcInten &^ v) }

	TIMER0.TASKS_START.write = task(func() { emu.timerRunning = true })
	TIMER0.TASKS_STOP.write = task(func() { emu.timerRunning = false })
	TIMER0.TASKS_SHUTDOWN.write = task(func() { emu.timerRunning = false })
	TIMER0.TASKS_CLEAR.write = task(func() { emu.timerCounter = 0 })
	for i := range TIMER0.TASKS_CAPTURE {
		cc := &TIMER0.CC[i]
		TIMER0.TASKS_CAPTURE[i].write = task(func() { cc.store(emu.timerCounter) })
	}
	TIMER0.INTENSET.write = func(v uint32) { setTimerInten(emu.timerInten | v) }
	TIMER0.INTENCLR.write = func(v uint32) { setTimerInten(emu.timerInten &^ v) }
}
