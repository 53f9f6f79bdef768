package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures an alarm or timer event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	OID       uint8  // Object ID, 0 for the scheduler itself
	Clock     uint32 // Tick at event
	Value1    uint32 // Context-dependent value, usually the alarm target
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtTimerSchedule = 1 // Timer added to the list
	EvtTimerFire     = 2 // Timer handler ran
	EvtTimerPast     = 3 // Head target too close, alarm pushed to now+TimeDelta
	EvtAlarmStart    = 4 // st.StartAlarm
	EvtAlarmMove     = 5 // st.SetAlarm
	EvtAlarmStop     = 6 // st.StopAlarm
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is set by platform code; no-op by default
	debugPrintln DebugWriter = func(s string) {}

	debugEnabled bool

	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8
	timingEnabled  = true

	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// SetTimingEnabled turns the timing ring on or off
func SetTimingEnabled(enabled bool) {
	timingEnabled = enabled
}

// InitAsyncDebug starts the goroutine draining DebugAsync messages.
// Call from main after SetDebugWriter.
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message synchronously when debug is enabled
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message without blocking. Safe from the alarm
// interrupt; the message is dropped when the queue is full.
func DebugAsync(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// RecordTiming captures a timing event in the ring buffer.
// Never blocks, callable with interrupts disabled.
func RecordTiming(eventType, oid uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		OID:       oid,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// TimingEvents returns the recorded events, oldest first
func TimingEvents() []TimingEvent {
	events := make([]TimingEvent, 0, TimingRingSize)
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType != 0 {
			events = append(events, evt)
		}
	}
	return events
}

func eventName(eventType uint8) string {
	switch eventType {
	case EvtTimerSchedule:
		return "TIMER_SCHED"
	case EvtTimerFire:
		return "TIMER_FIRE"
	case EvtTimerPast:
		return "TIMER_PAST!"
	case EvtAlarmStart:
		return "ALARM_START"
	case EvtAlarmMove:
		return "ALARM_MOVE"
	case EvtAlarmStop:
		return "ALARM_STOP"
	default:
		return "UNKNOWN"
	}
}

// DumpTimingRing writes the timing ring to the debug writer, oldest first.
// Call after stopping time-critical code.
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	for _, evt := range TimingEvents() {
		debugPrintln("[TIMING] " + eventName(evt.EventType) +
			" oid=" + itoa(int(evt.OID)) +
			" clock=" + hex32(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
}
