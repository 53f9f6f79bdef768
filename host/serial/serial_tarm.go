package serial

import (
	"fmt"

	"github.com/tarm/serial"
)

type tarmPort struct {
	*serial.Port
}

// Open opens cfg.Device with github.com/tarm/serial
func Open(cfg *Config) (Port, error) {
	if cfg == nil || cfg.Device == "" {
		return nil, ErrNoDevice
	}
	if cfg.Baud <= 0 {
		return nil, fmt.Errorf("serial port %s: invalid baud rate %d", cfg.Device, cfg.Baud)
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return tarmPort{port}, nil
}
