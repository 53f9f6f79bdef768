package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"nrftick/host/monitor/monitortest"
	"nrftick/host/serial"
	"nrftick/st"
)

// runTickmon executes the CLI against an emulated firmware
func runTickmon(t *testing.T, fw *monitortest.Firmware, args ...string) (string, error) {
	t.Helper()
	var opened *serial.Config
	orig := openPort
	openPort = func(cfg *serial.Config) (io.ReadWriteCloser, error) {
		opened = cfg
		return fw.Conn, nil
	}
	t.Cleanup(func() { openPort = orig })

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(append([]string{"--device", "/dev/ttyTEST"}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	if opened != nil {
		assert.Check(t, is.Equal(opened.Device, "/dev/ttyTEST"))
	}
	return stdout.String(), err
}

func TestClockCommand(t *testing.T) {
	fw := monitortest.Start(t)
	fw.Step.Store(42)

	out, err := runTickmon(t, fw, "clock")
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "clock: "))
}

func TestUptimeCommand(t *testing.T) {
	fw := monitortest.Start(t)
	fw.Step.Store(uint32(st.Frequency))

	out, err := runTickmon(t, fw, "uptime")
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "ticks ("))
}

func TestAlarmCommand(t *testing.T) {
	fw := monitortest.Start(t)

	out, err := runTickmon(t, fw, "alarm")
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "timers: 0\n"))
}

func TestConfigCommand(t *testing.T) {
	fw := monitortest.Start(t)

	out, err := runTickmon(t, fw, "config")
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "configured: false\n"))
	assert.Check(t, is.Contains(out, "shutdown: false\n"))
}

func TestDictCommand(t *testing.T) {
	fw := monitortest.Start(t)

	out, err := runTickmon(t, fw, "dict")
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "ST_BACKEND="+st.Backend+"\n"))
	assert.Check(t, is.Contains(out, "version: nrftick-"))
}

func TestSampleCommand(t *testing.T) {
	fw := monitortest.Start(t)
	fw.Step.Store(10)

	out, err := runTickmon(t, fw, "sample", "--count", "3", "--interval", "1ms")
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "backsteps: 0\n"))
	assert.Check(t, is.Equal(strings.Count(out, "\n"), 3+3))
}

func TestSampleCommandBackwards(t *testing.T) {
	fw := monitortest.Start(t)
	fw.Step.Store(uint32(st.CounterMask/2) + 10)

	_, err := runTickmon(t, fw, "sample", "-n", "3", "-i", "1ms")
	assert.Check(t, errors.Is(err, errNotMonotonic))
}

func TestOpenError(t *testing.T) {
	orig := openPort
	openPort = func(cfg *serial.Config) (io.ReadWriteCloser, error) {
		return nil, serial.ErrNoDevice
	}
	defer func() { openPort = orig }()

	cmd := newRootCommand()
	cmd.SetArgs([]string{"clock"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	assert.Check(t, errors.Is(err, serial.ErrNoDevice))
}

func TestRejectsBadLogFormat(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--log-format", "xml", "clock"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.Check(t, cmd.Execute() != nil)
}

func TestGlobalFlagDefaults(t *testing.T) {
	cmd := newRootCommand()
	flags := cmd.PersistentFlags()

	baud, err := flags.GetInt("baud")
	assert.NilError(t, err)
	assert.Check(t, is.Equal(baud, serial.DefaultConfig("").Baud))

	timeout, err := flags.GetDuration("timeout")
	assert.NilError(t, err)
	assert.Check(t, is.Equal(timeout, 5*time.Second))
}

func TestTicksToDuration(t *testing.T) {
	assert.Check(t, is.Equal(ticksToDuration(1024, 1024), time.Second))
	assert.Check(t, is.Equal(ticksToDuration(1536, 1024), 1500*time.Millisecond))
	assert.Check(t, is.Equal(ticksToDuration(3_000_000, 1_000_000), 3*time.Second))
	assert.Check(t, is.Equal(ticksToDuration(10, 0), time.Duration(0)))
}
