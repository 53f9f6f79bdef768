package st

// Build-time configuration. Every check below is a constant expression that
// stops the build when the configuration is not supported.

// Scheduling modes.
const (
	// ModePeriodic drives the kernel from the one-shot alarm, rearmed by the
	// kernel for every deadline.
	ModePeriodic = iota + 1
	// ModeFreeRunning is the tick-less mode. It is not supported.
	ModeFreeRunning
)

const (
	// Mode is the scheduling mode the kernel is built for.
	Mode = ModePeriodic

	// TimeDelta is the minimum distance, in ticks, between the current
	// counter value and an alarm target requested by the kernel.
	TimeDelta = 5

	// LFCLKSource selects the low frequency clock feeding the RTC backend.
	LFCLKSource = lfclkXtal

	// RTCFrequency is the tick rate of the RTC backend. It must divide the
	// 32768 Hz low frequency clock.
	RTCFrequency = 1024

	// TimerPrescaler sets the tick rate of the TIMER backend to
	// 16 MHz >> TimerPrescaler.
	TimerPrescaler = 4
)

const (
	lfclkRC = iota
	lfclkXtal
	lfclkSynth
)

// TimeDelta is too low.
const _ uint = TimeDelta - 5

// Free-running (tick-less) mode is not supported.
const _ uint = ModePeriodic - Mode

// RTCFrequency must divide the LFCLK and fit the 12 bit prescaler.
const _ uint = 0 - 32768%RTCFrequency
const _ uint = 4095 - (32768/RTCFrequency - 1)

// TimerPrescaler is out of range.
const _ uint = 9 - TimerPrescaler

// LFCLKSource is not a valid source.
const _ uint = lfclkSynth - LFCLKSource
