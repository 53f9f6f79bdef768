// Package monitor talks to the tick firmware: it downloads the data
// dictionary, reads the tick counter, uptime and alarm state, and samples
// the counter to check its rate and that it only moves forward.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"code.cloudfoundry.org/clock"
	"github.com/containerd/log"

	"nrftick/protocol"
)

const (
	identifyResponseID = 0
	identifyID         = 1

	// identifyChunk keeps an identify_response inside one block
	identifyChunk = 40
)

// ErrNotConnected is returned before Connect has loaded the dictionary
var ErrNotConnected = errors.New("monitor: dictionary not loaded")

// Monitor is a client for one firmware instance
type Monitor struct {
	transport *protocol.HostTransport
	clock     clock.Clock

	dict *Dictionary
	raw  []byte
	ids  map[string]uint16
	freq uint32
	mask uint32
}

// Option configures a Monitor
type Option func(*Monitor)

// WithClock sets the clock Sample paces itself with
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

// New starts a Monitor on port. Call Connect before any query.
func New(port io.ReadWriteCloser, opts ...Option) *Monitor {
	m := &Monitor{
		transport: protocol.NewHostTransport(port),
		clock:     clock.NewClock(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close closes the link
func (m *Monitor) Close() error {
	return m.transport.Close()
}

// Connect downloads the data dictionary and resolves the messages the
// monitor uses
func (m *Monitor) Connect(ctx context.Context) error {
	raw, err := m.fetchDictionary(ctx)
	if err != nil {
		return err
	}
	dict, err := ParseDictionary(raw)
	if err != nil {
		return err
	}

	ids := make(map[string]uint16)
	for _, name := range []string{"get_clock", "get_uptime", "get_alarm", "get_config"} {
		id, ok := dict.CommandID(name)
		if !ok {
			return fmt.Errorf("monitor: firmware has no %s command", name)
		}
		ids[name] = id
	}
	for _, name := range []string{"clock", "uptime", "alarm", "config"} {
		id, ok := dict.ResponseID(name)
		if !ok {
			return fmt.Errorf("monitor: firmware has no %s response", name)
		}
		ids[name] = id
	}

	freq, err := dict.ConfigUint("CLOCK_FREQ")
	if err != nil {
		return err
	}
	bits, err := dict.ConfigUint("CLOCK_BITS")
	if err != nil {
		return err
	}
	if bits == 0 || bits > 32 {
		return fmt.Errorf("monitor: unsupported CLOCK_BITS %d", bits)
	}

	m.dict, m.raw, m.ids = dict, raw, ids
	m.freq = freq
	m.mask = uint32(uint64(1)<<bits - 1)

	log.G(ctx).WithFields(log.Fields{
		"version": dict.Version,
		"backend": dict.Config["ST_BACKEND"],
		"freq":    freq,
		"bits":    bits,
	}).Debug("dictionary loaded")
	return nil
}

// Dictionary returns the dictionary loaded by Connect
func (m *Monitor) Dictionary() *Dictionary {
	return m.dict
}

// RawDictionary returns the dictionary as downloaded
func (m *Monitor) RawDictionary() []byte {
	return m.raw
}

// Frequency returns the firmware tick rate in Hz
func (m *Monitor) Frequency() uint32 {
	return m.freq
}

// CounterMask returns the mask of the firmware tick counter
func (m *Monitor) CounterMask() uint32 {
	return m.mask
}

func (m *Monitor) fetchDictionary(ctx context.Context) ([]byte, error) {
	var blob []byte
	for {
		offset := uint32(len(blob))
		resp, err := m.transport.Request(ctx, identifyID, func(output protocol.OutputBuffer) {
			protocol.EncodeVLQUint(output, offset)
			protocol.EncodeVLQUint(output, identifyChunk)
		}, identifyResponseID)
		if err != nil {
			return nil, fmt.Errorf("identify at offset %d: %w", offset, err)
		}

		args := resp.Args
		respOffset, err := protocol.DecodeVLQUint(&args)
		if err != nil {
			return nil, fmt.Errorf("identify at offset %d: %w", offset, err)
		}
		if respOffset != offset {
			return nil, fmt.Errorf("identify at offset %d: response for offset %d", offset, respOffset)
		}
		chunk, err := protocol.DecodeVLQBytes(&args)
		if err != nil {
			return nil, fmt.Errorf("identify at offset %d: %w", offset, err)
		}

		blob = append(blob, chunk...)
		if len(chunk) < identifyChunk {
			log.G(ctx).WithField("bytes", len(blob)).Debug("dictionary retrieved")
			return blob, nil
		}
	}
}

// query sends an argument-less command and decodes n integer arguments of
// its response
func (m *Monitor) query(ctx context.Context, cmd, resp string, n int) ([]uint32, error) {
	if m.dict == nil {
		return nil, ErrNotConnected
	}
	msg, err := m.transport.Request(ctx, m.ids[cmd], nil, m.ids[resp])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}

	args := msg.Args
	vals := make([]uint32, n)
	for i := range vals {
		if vals[i], err = protocol.DecodeVLQUint(&args); err != nil {
			return nil, fmt.Errorf("%s: decoding %s: %w", cmd, resp, err)
		}
	}
	return vals, nil
}

// Clock reads the raw tick counter
func (m *Monitor) Clock(ctx context.Context) (uint32, error) {
	vals, err := m.query(ctx, "get_clock", "clock", 1)
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

// Uptime reads the firmware's 64-bit tick count since boot
func (m *Monitor) Uptime(ctx context.Context) (uint64, error) {
	vals, err := m.query(ctx, "get_uptime", "uptime", 2)
	if err != nil {
		return 0, err
	}
	return uint64(vals[0])<<32 | uint64(vals[1]), nil
}

// AlarmState is the firmware alarm as reported by get_alarm
type AlarmState struct {
	Target uint32
	// Active is the backend's own report. The TIMER backend always
	// reports false.
	Active bool
	Timers int
}

// Alarm reads the alarm target and the number of pending timers
func (m *Monitor) Alarm(ctx context.Context) (AlarmState, error) {
	vals, err := m.query(ctx, "get_alarm", "alarm", 3)
	if err != nil {
		return AlarmState{}, err
	}
	return AlarmState{Target: vals[0], Active: vals[1] != 0, Timers: int(vals[2])}, nil
}

// ConfigState is the handshake state reported by get_config
type ConfigState struct {
	IsConfig   bool
	CRC        uint32
	IsShutdown bool
	MoveCount  uint16
}

// Config reads the firmware configuration state
func (m *Monitor) Config(ctx context.Context) (ConfigState, error) {
	vals, err := m.query(ctx, "get_config", "config", 4)
	if err != nil {
		return ConfigState{}, err
	}
	return ConfigState{
		IsConfig:   vals[0] != 0,
		CRC:        vals[1],
		IsShutdown: vals[2] != 0,
		MoveCount:  uint16(vals[3]),
	}, nil
}
