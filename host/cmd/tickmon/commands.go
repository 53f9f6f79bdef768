package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/containerd/log"
	"github.com/spf13/cobra"

	"nrftick/host/monitor"
)

// errNotMonotonic is returned by sample when the counter ran backwards
var errNotMonotonic = errors.New("counter is not monotonic")

// query connects, runs fn with a per-query timeout and closes the link
func query(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, m *monitor.Monitor) error) error {
	m, err := opts.connect(cmd.Context())
	if err != nil {
		return err
	}
	defer m.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()
	return fn(ctx, m)
}

func newClockCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clock",
		Short: "Print the raw tick counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, opts, func(ctx context.Context, m *monitor.Monitor) error {
				clock, err := m.Clock(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "clock: %d (0x%08X)\n", clock, clock)
				return nil
			})
		},
	}
}

func newUptimeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "uptime",
		Short: "Print ticks and time since the firmware booted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, opts, func(ctx context.Context, m *monitor.Monitor) error {
				ticks, err := m.Uptime(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "uptime: %d ticks (%s)\n",
					ticks, ticksToDuration(ticks, m.Frequency()))
				return nil
			})
		},
	}
}

func newAlarmCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "alarm",
		Short: "Print the programmed alarm and the pending timer count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, opts, func(ctx context.Context, m *monitor.Monitor) error {
				alarm, err := m.Alarm(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "target: %d\n", alarm.Target)
				fmt.Fprintf(out, "active: %t\n", alarm.Active)
				fmt.Fprintf(out, "timers: %d\n", alarm.Timers)
				return nil
			})
		},
	}
}

func newConfigCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the firmware configuration state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, opts, func(ctx context.Context, m *monitor.Monitor) error {
				cfg, err := m.Config(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "configured: %t\n", cfg.IsConfig)
				fmt.Fprintf(out, "crc: 0x%08X\n", cfg.CRC)
				fmt.Fprintf(out, "shutdown: %t\n", cfg.IsShutdown)
				return nil
			})
		},
	}
}

func newDictCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dict",
		Short: "Print the firmware constants and message IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, opts, func(ctx context.Context, m *monitor.Monitor) error {
				dict := m.Dictionary()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "version: %s\n", dict.Version)
				for _, name := range sortedKeys(dict.Config) {
					fmt.Fprintf(out, "%s=%s\n", name, dict.Config[name])
				}
				return nil
			})
		},
	}
}

type sampleOptions struct {
	count    int
	interval time.Duration
}

func newSampleCommand(opts *globalOptions) *cobra.Command {
	var sopts sampleOptions

	cmd := &cobra.Command{
		Use:   "sample [OPTIONS]",
		Short: "Read the counter repeatedly and check its rate and monotonicity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, opts, sopts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&sopts.count, "count", "n", 10, "Number of readings")
	flags.DurationVarP(&sopts.interval, "interval", "i", time.Second, "Time between readings")
	return cmd
}

func runSample(cmd *cobra.Command, opts *globalOptions, sopts sampleOptions) error {
	m, err := opts.connect(cmd.Context())
	if err != nil {
		return err
	}
	defer m.Close()

	budget := opts.timeout + time.Duration(sopts.count)*sopts.interval
	ctx, cancel := context.WithTimeout(cmd.Context(), budget)
	defer cancel()

	report, err := m.Sample(ctx, sopts.count, sopts.interval)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, r := range report.Readings {
		fmt.Fprintf(out, "%3d %10d\n", i, r)
	}
	fmt.Fprintf(out, "ticks: %d in %s\n", report.Ticks, report.Elapsed)
	fmt.Fprintf(out, "rate: %.1f Hz (nominal %d Hz)\n", report.Rate, report.Nominal)
	fmt.Fprintf(out, "wraps: %d backsteps: %d\n", report.Wraps, report.Backsteps)

	if !report.Monotonic() {
		log.G(ctx).WithField("backsteps", report.Backsteps).Warn("counter moved backwards")
		return errNotMonotonic
	}
	return nil
}

func ticksToDuration(ticks uint64, freq uint32) time.Duration {
	if freq == 0 {
		return 0
	}
	secs := ticks / uint64(freq)
	rem := ticks % uint64(freq)
	return time.Duration(secs)*time.Second + time.Duration(rem*uint64(time.Second)/uint64(freq))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
