package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/containerd/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"nrftick/host/monitor"
	"nrftick/host/serial"
)

// openPort is replaced in tests
var openPort = func(cfg *serial.Config) (io.ReadWriteCloser, error) {
	return serial.Open(cfg)
}

type globalOptions struct {
	device    string
	baud      int
	timeout   time.Duration
	debug     bool
	logFormat string
}

func (o *globalOptions) installFlags(flags *pflag.FlagSet) {
	def := serial.DefaultConfig("")
	flags.StringVarP(&o.device, "device", "d", os.Getenv("TICKMON_DEVICE"), "Serial device of the firmware (env TICKMON_DEVICE)")
	flags.IntVarP(&o.baud, "baud", "b", def.Baud, "UART baud rate")
	flags.DurationVarP(&o.timeout, "timeout", "t", 5*time.Second, "Timeout for connecting and for each query")
	flags.BoolVarP(&o.debug, "debug", "D", false, "Enable debug logging")
	flags.StringVar(&o.logFormat, "log-format", string(log.TextFormat), "Log format (text or json)")
}

func (o *globalOptions) setupLogging(stderr io.Writer) error {
	logrus.SetOutput(stderr)
	if err := log.SetFormat(log.OutputFormat(o.logFormat)); err != nil {
		return err
	}
	level := "info"
	if o.debug {
		level = "debug"
	}
	return log.SetLevel(level)
}

// connect opens the port and loads the firmware dictionary
func (o *globalOptions) connect(ctx context.Context) (*monitor.Monitor, error) {
	cfg := serial.DefaultConfig(o.device)
	cfg.Baud = o.baud

	port, err := openPort(cfg)
	if err != nil {
		return nil, err
	}
	m := monitor.New(port)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	if err := m.Connect(ctx); err != nil {
		m.Close()
		return nil, fmt.Errorf("connect %s: %w", o.device, err)
	}
	log.G(ctx).WithFields(log.Fields{
		"device":  o.device,
		"freq":    m.Frequency(),
		"backend": m.Dictionary().Config["ST_BACKEND"],
	}).Debug("connected")
	return m, nil
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "tickmon [OPTIONS] COMMAND",
		Short:         "Inspect the system tick of an nrftick firmware",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging(cmd.ErrOrStderr())
		},
	}
	opts.installFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newClockCommand(opts),
		newUptimeCommand(opts),
		newAlarmCommand(opts),
		newConfigCommand(opts),
		newDictCommand(opts),
		newSampleCommand(opts),
	)
	return cmd
}
