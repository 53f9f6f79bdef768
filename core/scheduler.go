package core

import "nrftick/st"

// Timer represents a scheduled event
type Timer struct {
	WakeTime st.Systime
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

var (
	timerList *Timer

	// alarmArmed mirrors whether this scheduler has the alarm started.
	// st.IsAlarmActive always reports false on the TIMER backend.
	alarmArmed bool
)

// ScheduleTimer adds a timer to the schedule and reprograms the alarm if
// it became the earliest one
func ScheduleTimer(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	RecordTiming(EvtTimerSchedule, 0, GetTime(), uint32(t.WakeTime), 0)
	insertTimer(t)
	programAlarm()
}

// CancelTimer removes a timer from the schedule. Returns false if the timer
// was not scheduled.
func CancelTimer(t *Timer) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	prev := &timerList
	for cur := timerList; cur != nil; cur = cur.Next {
		if cur == t {
			*prev = cur.Next
			cur.Next = nil
			programAlarm()
			return true
		}
		prev = &cur.Next
	}
	return false
}

// PendingTimers returns the number of scheduled timers
func PendingTimers() int {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	n := 0
	for cur := timerList; cur != nil; cur = cur.Next {
		n++
	}
	return n
}

// insertTimer inserts a timer in wake order. Equal wake times keep
// insertion order.
func insertTimer(t *Timer) {
	if timerList == nil || st.Before(t.WakeTime, timerList.WakeTime) {
		t.Next = timerList
		timerList = t
		return
	}

	current := timerList
	for current.Next != nil && !st.Before(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// programAlarm points the hardware alarm at the head of the timer list.
// Targets closer than st.TimeDelta, or already behind the counter, are
// pushed out to now+TimeDelta: the comparator can miss a match that close.
func programAlarm() {
	if timerList == nil {
		if alarmArmed {
			st.StopAlarm()
			alarmArmed = false
			RecordTiming(EvtAlarmStop, 0, GetTime(), 0, 0)
		}
		return
	}

	now := st.GetCounter()
	target := timerList.WakeTime
	if !st.Before(now, target) || st.Elapsed(now, target) < st.TimeDelta {
		RecordTiming(EvtTimerPast, 0, uint32(now), uint32(target), 0)
		if debugEnabled {
			DebugAsync("[sched] late alarm " + utoa(uint32(target)) + " at " + utoa(uint32(now)))
		}
		target = st.Add(now, st.TimeDelta)
	}

	if alarmArmed {
		st.SetAlarm(target)
		RecordTiming(EvtAlarmMove, 0, uint32(now), uint32(target), 0)
		return
	}
	st.StartAlarm(target)
	alarmArmed = true
	RecordTiming(EvtAlarmStart, 0, uint32(now), uint32(target), 0)
}

// TimerDispatch runs every due timer and reprograms the alarm. It is the
// tick source interrupt handler registered by TimerInit.
func TimerDispatch() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	var again *Timer
	now := st.GetCounter()
	for timerList != nil && !st.Before(now, timerList.WakeTime) {
		timer := timerList
		timerList = timer.Next
		timer.Next = nil

		RecordTiming(EvtTimerFire, 0, uint32(now), uint32(timer.WakeTime), 0)
		if timer.Handler(timer) == SF_RESCHEDULE {
			// Re-inserted after the loop; the new wake time may already be due.
			timer.Next = again
			again = timer
		}
		now = st.GetCounter()
	}

	for again != nil {
		timer := again
		again = timer.Next
		insertTimer(timer)
	}
	programAlarm()
}
