//go:build !tinygo

package core

import (
	"testing"

	"nrftick/st"
)

func TestHeartbeatCountsPeriods(t *testing.T) {
	setupTimers(t)

	StartHeartbeat(50)
	tick(149)
	if got := HeartbeatBeats(); got != 2 {
		t.Fatalf("Expected 2 beats after 149 ticks, got %d", got)
	}
	tick(1)
	if got := HeartbeatBeats(); got != 3 {
		t.Errorf("Expected 3 beats after 150 ticks, got %d", got)
	}
	if got := st.GetAlarm(); got != 200 {
		t.Errorf("Expected next beat at 200, got %d", got)
	}
}

func TestHeartbeatRestartDoesNotDuplicate(t *testing.T) {
	setupTimers(t)

	StartHeartbeat(50)
	StartHeartbeat(50)
	if n := PendingTimers(); n != 1 {
		t.Fatalf("Expected one heartbeat timer, got %d", n)
	}
	tick(100)
	if got := HeartbeatBeats(); got != 2 {
		t.Errorf("Expected 2 beats, got %d", got)
	}
}

func TestHeartbeatShortPeriodRaised(t *testing.T) {
	setupTimers(t)

	StartHeartbeat(1)
	if got := st.GetAlarm(); got != st.TimeDelta {
		t.Errorf("Expected first beat at %d, got %d", st.TimeDelta, got)
	}
}

func TestHeartbeatStopsOnShutdown(t *testing.T) {
	setupTimers(t)

	StartHeartbeat(50)
	tick(50)
	Shutdown()
	tick(200)
	if got := HeartbeatBeats(); got != 1 {
		t.Errorf("Expected heartbeat to stop after shutdown, got %d beats", got)
	}
}
