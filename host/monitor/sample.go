package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/containerd/log"
)

// SampleReport summarises a series of counter readings
type SampleReport struct {
	Readings []uint32
	// Ticks is the forward distance from the first to the last reading,
	// unwrapped across counter overflows
	Ticks   uint64
	Elapsed time.Duration
	// Rate is the measured tick rate in Hz; Nominal is CLOCK_FREQ
	Rate    float64
	Nominal uint32
	// Wraps counts readings where the counter overflowed
	Wraps int
	// Backsteps counts readings that moved more than half the counter
	// range, which only a counter running backwards produces
	Backsteps int
}

// Monotonic reports whether no reading went backwards
func (r SampleReport) Monotonic() bool {
	return r.Backsteps == 0
}

// Sample reads the counter n times, interval apart, and checks that it
// only moves forward modulo its width.
func (m *Monitor) Sample(ctx context.Context, n int, interval time.Duration) (SampleReport, error) {
	if m.dict == nil {
		return SampleReport{}, ErrNotConnected
	}
	if n < 2 {
		return SampleReport{}, fmt.Errorf("sample: need at least 2 readings, got %d", n)
	}

	report := SampleReport{Readings: make([]uint32, 0, n), Nominal: m.freq}
	prev, err := m.Clock(ctx)
	if err != nil {
		return report, err
	}
	start := m.clock.Now()
	report.Readings = append(report.Readings, prev)

	for i := 1; i < n; i++ {
		timer := m.clock.NewTimer(interval)
		select {
		case <-timer.C():
		case <-ctx.Done():
			timer.Stop()
			return report, ctx.Err()
		}

		cur, err := m.Clock(ctx)
		if err != nil {
			return report, err
		}
		report.Readings = append(report.Readings, cur)

		delta := (cur - prev) & m.mask
		if delta > m.mask>>1 {
			report.Backsteps++
			log.G(ctx).WithFields(log.Fields{"prev": prev, "cur": cur}).Warn("counter moved backwards")
		} else {
			report.Ticks += uint64(delta)
			if cur < prev {
				report.Wraps++
			}
		}
		prev = cur
	}

	report.Elapsed = m.clock.Since(start)
	if report.Elapsed > 0 {
		report.Rate = float64(report.Ticks) / report.Elapsed.Seconds()
	}
	log.G(ctx).WithFields(log.Fields{
		"ticks":     report.Ticks,
		"elapsed":   report.Elapsed,
		"rate":      report.Rate,
		"wraps":     report.Wraps,
		"backsteps": report.Backsteps,
	}).Debug("sample complete")
	return report, nil
}
