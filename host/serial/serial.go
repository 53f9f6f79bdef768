// Package serial opens the UART link to the tick firmware.
package serial

import (
	"errors"
	"io"
	"time"
)

// Port is an open serial link
type Port interface {
	io.ReadWriteCloser

	// Flush discards data buffered in the driver
	Flush() error
}

// Config holds serial port settings
type Config struct {
	// Device path, e.g. "/dev/ttyACM0" or "COM3"
	Device string

	// Baud rate of the firmware UART
	Baud int

	// ReadTimeout bounds a single Read; zero blocks
	ReadTimeout time.Duration
}

// ErrNoDevice is returned by Open when no device path is configured
var ErrNoDevice = errors.New("no serial device configured")

// DefaultConfig returns the settings the nRF51 firmware uses
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}
