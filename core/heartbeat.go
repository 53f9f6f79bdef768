package core

import (
	"sync/atomic"

	"nrftick/st"
)

// heartbeat is a periodic timer that counts its own firings. A board
// indicator driven from the count shows the alarm keeps running; it stops
// on shutdown along with every other timer.
var heartbeat struct {
	timer  Timer
	period st.Systime
	beats  uint32 // atomic
}

// StartHeartbeat (re)starts the heartbeat timer with the given period in
// ticks. Periods shorter than st.TimeDelta are raised to it.
func StartHeartbeat(period st.Systime) {
	CancelTimer(&heartbeat.timer)
	if period < st.TimeDelta {
		period = st.TimeDelta
	}
	heartbeat.period = period
	atomic.StoreUint32(&heartbeat.beats, 0)

	heartbeat.timer.Handler = heartbeatEvent
	heartbeat.timer.WakeTime = st.Add(st.GetCounter(), period)
	ScheduleTimer(&heartbeat.timer)
}

func heartbeatEvent(t *Timer) uint8 {
	atomic.AddUint32(&heartbeat.beats, 1)
	t.WakeTime = st.Add(t.WakeTime, heartbeat.period)
	return SF_RESCHEDULE
}

// HeartbeatBeats returns how many times the heartbeat has fired
func HeartbeatBeats() uint32 {
	return atomic.LoadUint32(&heartbeat.beats)
}
