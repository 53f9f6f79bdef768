// Package hw describes the nRF51 peripherals used by the system tick source.
//
// The register layouts match the nRF51 Series Reference Manual. On TinyGo the
// peripheral handles point at the real memory-mapped blocks; on regular Go
// they point at an emulated peripheral so the tick source can be tested on
// the host.
package hw

// Peripheral base addresses
const (
	clockBase  = 0x40000000
	timer0Base = 0x40008000
	rtc0Base   = 0x4000B000
)

// RTC_Type is the register block of a real-time counter (RTC0..RTC1).
// COUNTER and CC are 24 bits wide.
type RTC_Type struct {
	TASKS_START      Register32 // 0x000
	TASKS_STOP       Register32 // 0x004
	TASKS_CLEAR      Register32 // 0x008
	TASKS_TRIGOVRFLW Register32 // 0x00C
	_                [0xF0]byte
	EVENTS_TICK      Register32 // 0x100
	EVENTS_OVRFLW    Register32 // 0x104
	_                [0x38]byte
	EVENTS_COMPARE   [4]Register32 // 0x140
	_                [0x1B4]byte
	INTENSET         Register32 // 0x304
	INTENCLR         Register32 // 0x308
	_                [0x34]byte
	EVTEN            Register32 // 0x340
	EVTENSET         Register32 // 0x344
	EVTENCLR         Register32 // 0x348
	_                [0x1B8]byte
	COUNTER          Register32 // 0x504
	PRESCALER        Register32 // 0x508
	_                [0x34]byte
	CC               [4]Register32 // 0x540
}

// TIMER_Type is the register block of a general purpose timer (TIMER0..TIMER2).
// Only TIMER0 supports the 32 bit mode.
type TIMER_Type struct {
	TASKS_START    Register32 // 0x000
	TASKS_STOP     Register32 // 0x004
	TASKS_COUNT    Register32 // 0x008
	TASKS_CLEAR    Register32 // 0x00C
	TASKS_SHUTDOWN Register32 // 0x010
	_              [0x2C]byte
	TASKS_CAPTURE  [4]Register32 // 0x040
	_              [0xF0]byte
	EVENTS_COMPARE [4]Register32 // 0x140
	_              [0xB0]byte
	SHORTS         Register32 // 0x200
	_              [0x100]byte
	INTENSET       Register32 // 0x304
	INTENCLR       Register32 // 0x308
	_              [0x1F8]byte
	MODE           Register32 // 0x504
	BITMODE        Register32 // 0x508
	_              [4]byte
	PRESCALER      Register32 // 0x510
	_              [0x2C]byte
	CC             [4]Register32 // 0x540
}

// CLOCK_Type is the clock control block. Only the low frequency clock is
// handled here; the RTC cannot count without it.
type CLOCK_Type struct {
	TASKS_HFCLKSTART    Register32 // 0x000
	TASKS_HFCLKSTOP     Register32 // 0x004
	TASKS_LFCLKSTART    Register32 // 0x008
	TASKS_LFCLKSTOP     Register32 // 0x00C
	_                   [0xF0]byte
	EVENTS_HFCLKSTARTED Register32 // 0x100
	EVENTS_LFCLKSTARTED Register32 // 0x104
	_                   [0x410]byte
	LFCLKSRC            Register32 // 0x518
}

// RTC event and interrupt bits. EVTEN, INTENSET and INTENCLR share one layout.
const (
	RTC_EVTEN_TICK_Msk          = 1 << 0
	RTC_EVTEN_OVRFLW_Msk        = 1 << 1
	RTC_EVTEN_COMPARE0_Msk      = 1 << 16
	RTC_INTENSET_COMPARE0_Msk   = 1 << 16
	RTC_INTENCLR_COMPARE0_Msk   = 1 << 16
	RTC_COUNTER_COUNTER_Msk     = 0xFFFFFF
	RTC_PRESCALER_PRESCALER_Msk = 0xFFF
)

// TIMER bits and field values.
const (
	TIMER_INTENSET_COMPARE0_Msk = 1 << 16
	TIMER_INTENCLR_COMPARE0_Msk = 1 << 16

	TIMER_MODE_MODE_Timer   = 0
	TIMER_MODE_MODE_Counter = 1

	TIMER_BITMODE_BITMODE_16Bit = 0
	TIMER_BITMODE_BITMODE_08Bit = 1
	TIMER_BITMODE_BITMODE_24Bit = 2
	TIMER_BITMODE_BITMODE_32Bit = 3

	TIMER_PRESCALER_PRESCALER_Max = 9
)

// LFCLKSRC values.
const (
	CLOCK_LFCLKSRC_SRC_RC    = 0
	CLOCK_LFCLKSRC_SRC_Xtal  = 1
	CLOCK_LFCLKSRC_SRC_Synth = 2
)

// Input clocks of the counters.
const (
	LFCLKFrequency = 32768
	HFCLKFrequency = 16000000
)
