package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"nrftick/core"
	"nrftick/host/monitor/monitortest"
	"nrftick/st"
)

func connect(t *testing.T, fw *monitortest.Firmware, opts ...Option) *Monitor {
	t.Helper()
	m := New(fw.Conn, opts...)
	t.Cleanup(func() { m.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NilError(t, m.Connect(ctx))
	return m
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestConnectLoadsDictionary(t *testing.T) {
	fw := monitortest.Start(t)
	m := connect(t, fw)

	dict := m.Dictionary()
	assert.Check(t, is.Equal(dict.Config["ST_BACKEND"], st.Backend))
	assert.Check(t, is.Equal(m.Frequency(), uint32(st.Frequency)))
	assert.Check(t, is.Equal(m.CounterMask(), uint32(st.CounterMask)))
	assert.Check(t, len(m.RawDictionary()) > 0)

	id, ok := dict.CommandID("identify")
	assert.Check(t, ok)
	assert.Check(t, is.Equal(id, uint16(1)))
}

func TestQueriesBeforeConnect(t *testing.T) {
	fw := monitortest.Start(t)
	m := New(fw.Conn)
	defer m.Close()

	_, err := m.Clock(context.Background())
	assert.Check(t, errors.Is(err, ErrNotConnected))
	_, err = m.Sample(context.Background(), 3, time.Second)
	assert.Check(t, errors.Is(err, ErrNotConnected))
}

func TestClock(t *testing.T) {
	fw := monitortest.Start(t)
	m := connect(t, fw)
	ctx := testContext(t)

	first, err := m.Clock(ctx)
	assert.NilError(t, err)

	fw.Step.Store(100)
	second, err := m.Clock(ctx)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(st.Elapsed(st.Systime(first), st.Systime(second)), st.Systime(100)))
}

func TestUptimeAcrossWrap(t *testing.T) {
	fw := monitortest.Start(t)
	m := connect(t, fw)
	ctx := testContext(t)

	half := uint32(st.CounterMask/2) + 1
	fw.Step.Store(half)
	var last uint64
	for i := 0; i < 4; i++ {
		up, err := m.Uptime(ctx)
		assert.NilError(t, err)
		assert.Check(t, up > last, "uptime went from %d to %d", last, up)
		last = up
	}
	assert.Check(t, last > uint64(st.CounterMask), "uptime %d never passed the counter width", last)
}

func TestAlarm(t *testing.T) {
	fw := monitortest.Start(t)
	m := connect(t, fw)
	ctx := testContext(t)

	state, err := m.Alarm(ctx)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(state.Timers, 0))
	assert.Check(t, !state.Active)

	now, err := m.Clock(ctx)
	assert.NilError(t, err)
	target := st.Add(st.Systime(now), 1000)
	core.ScheduleTimer(&core.Timer{WakeTime: target, Handler: func(*core.Timer) uint8 { return core.SF_DONE }})

	state, err = m.Alarm(ctx)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(state.Target, uint32(target)))
	assert.Check(t, is.Equal(state.Timers, 1))
	assert.Check(t, is.Equal(state.Active, st.IsAlarmActive()))

	// Let the timer fire.
	fw.Step.Store(1000)
	state, err = m.Alarm(ctx)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(state.Timers, 0))
	assert.Check(t, !state.Active)
}

func TestConfig(t *testing.T) {
	fw := monitortest.Start(t)
	m := connect(t, fw)

	state, err := m.Config(testContext(t))
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual(state, ConfigState{}))
}

type sampleResult struct {
	report SampleReport
	err    error
}

func runSample(t *testing.T, m *Monitor, fc *fakeclock.FakeClock, n int, interval time.Duration) SampleReport {
	t.Helper()
	ctx := testContext(t)
	res := make(chan sampleResult, 1)
	go func() {
		r, err := m.Sample(ctx, n, interval)
		res <- sampleResult{r, err}
	}()
	for i := 1; i < n; i++ {
		fc.WaitForWatcherAndIncrement(interval)
	}
	r := <-res
	assert.NilError(t, r.err)
	return r.report
}

func TestSampleRate(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Unix(0, 0))
	fw := monitortest.Start(t)
	m := connect(t, fw, WithClock(fc))

	fw.Step.Store(uint32(st.Frequency))
	report := runSample(t, m, fc, 5, time.Second)

	assert.Check(t, is.Len(report.Readings, 5))
	assert.Check(t, is.Equal(report.Ticks, uint64(4*st.Frequency)))
	assert.Check(t, is.Equal(report.Elapsed, 4*time.Second))
	assert.Check(t, is.Equal(report.Rate, float64(st.Frequency)))
	assert.Check(t, is.Equal(report.Nominal, uint32(st.Frequency)))
	assert.Check(t, report.Monotonic())
}

func TestSampleAcrossWrap(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Unix(0, 0))
	fw := monitortest.Start(t)
	m := connect(t, fw, WithClock(fc))

	step := uint32((uint64(st.CounterMask) + 1) / 3)
	fw.Step.Store(step)
	report := runSample(t, m, fc, 5, 10*time.Millisecond)

	assert.Check(t, is.Equal(report.Wraps, 1))
	assert.Check(t, is.Equal(report.Ticks, 4*uint64(step)))
	assert.Check(t, report.Monotonic())
}

func TestSampleDetectsBackwardSteps(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Unix(0, 0))
	fw := monitortest.Start(t)
	m := connect(t, fw, WithClock(fc))

	// Forward steps beyond half the range read as steps backwards.
	fw.Step.Store(uint32(st.CounterMask/2) + 10)
	report := runSample(t, m, fc, 3, time.Second)

	assert.Check(t, is.Equal(report.Backsteps, 2))
	assert.Check(t, !report.Monotonic())
	assert.Check(t, is.Equal(report.Ticks, uint64(0)))
}

func TestSampleNeedsTwoReadings(t *testing.T) {
	fw := monitortest.Start(t)
	m := connect(t, fw)

	_, err := m.Sample(testContext(t), 1, time.Second)
	assert.ErrorContains(t, err, "at least 2 readings")
}

func TestSampleCancelled(t *testing.T) {
	fc := fakeclock.NewFakeClock(time.Unix(0, 0))
	fw := monitortest.Start(t)
	m := connect(t, fw, WithClock(fc))

	ctx, cancel := context.WithCancel(context.Background())
	res := make(chan error, 1)
	go func() {
		_, err := m.Sample(ctx, 3, time.Hour)
		res <- err
	}()

	// Wait until Sample is parked on its timer, then cancel.
	for fc.WatcherCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	assert.Check(t, errors.Is(<-res, context.Canceled))
}
