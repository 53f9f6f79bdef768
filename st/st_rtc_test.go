//go:build !tinygo && !st_timer

package st

import (
	"testing"

	"nrftick/hw"
)

const activeWhenArmed = true

func matchFlag() bool { return hw.RTC0.EVENTS_COMPARE[0].Get() != 0 }

func setMatchFlag() { hw.RTC0.EVENTS_COMPARE[0].Set(1) }

func pending() bool { return hw.RTCPending() }

func TestRTCInit(t *testing.T) {
	setup(t)

	if !hw.RTCRunning() {
		t.Fatal("RTC0 not running after Init")
	}
	if got := hw.RTC0.PRESCALER.Get(); got != 31 {
		t.Errorf("Expected prescaler 31 for 1024 Hz, got %d", got)
	}
	if got := hw.CLOCK.LFCLKSRC.Get(); got != hw.CLOCK_LFCLKSRC_SRC_Xtal {
		t.Errorf("Expected LFCLK source Xtal, got %d", got)
	}
	if !hw.RTC0.INTENSET.HasBits(hw.RTC_INTENSET_COMPARE0_Msk) {
		t.Error("COMPARE0 interrupt not enabled")
	}
}

func TestRTCIsAlarmActiveReadsEvten(t *testing.T) {
	setup(t)

	StartAlarm(100)
	if !IsAlarmActive() {
		t.Fatal("Alarm inactive after StartAlarm")
	}

	// The hardware bit is the only state.
	hw.RTC0.EVTENCLR.Set(hw.RTC_EVTEN_COMPARE0_Msk)
	if IsAlarmActive() {
		t.Error("Alarm reported active with EVTEN COMPARE0 clear")
	}
}

func TestRTCStoppedAlarmDoesNotLatch(t *testing.T) {
	setup(t)

	StartAlarm(10)
	StopAlarm()
	hw.Advance(20)
	if matchFlag() {
		t.Error("Compare event latched while the alarm was stopped")
	}
}

func TestRTCCounterWidth(t *testing.T) {
	if CounterBits != 24 || CounterMask != 0xFFFFFF {
		t.Errorf("Expected 24 bit counter, got %d bits mask 0x%X", CounterBits, CounterMask)
	}
	if Backend != "rtc" {
		t.Errorf("Expected rtc backend, got %q", Backend)
	}
}
