// Package monitortest runs the tick firmware on the emulated nRF51
// peripherals, for testing host code without hardware.
package monitortest

import (
	"net"
	"sync/atomic"
	"testing"

	"nrftick/core"
	"nrftick/hw"
	"nrftick/protocol"
	"nrftick/st"
)

// Firmware is a firmware instance served over an in-memory pipe. Only one
// may run at a time: the firmware state is global.
type Firmware struct {
	// Conn is the host end of the link
	Conn net.Conn
	// Step is how far the tick counter advances before each block the
	// firmware receives
	Step atomic.Uint32

	done chan struct{}
}

// Start boots the firmware and stops it when the test ends
func Start(t testing.TB) *Firmware {
	t.Helper()
	hw.Reset()
	core.ResetFirmwareState()
	core.TimerInit()
	core.InitCoreCommands()
	core.GetGlobalDictionary().BuildDictionary()

	hostEnd, mcuEnd := net.Pipe()
	fw := &Firmware{Conn: hostEnd, done: make(chan struct{})}

	out := protocol.NewScratchOutput()
	flush := func() {
		if len(out.Result()) > 0 {
			_, _ = mcuEnd.Write(out.Result())
			out.Reset()
		}
	}
	tr := protocol.NewTransport(out, core.DispatchCommand)
	tr.SetFlushCallback(flush)
	core.SetGlobalTransport(tr)

	go func() {
		defer close(fw.done)
		fifo := protocol.NewFifoBuffer(256)
		buf := make([]byte, protocol.MessageLengthMax)
		for {
			n, err := mcuEnd.Read(buf)
			if err != nil {
				return
			}
			fifo.Write(buf[:n])
			advance(fw.Step.Load())
			tr.Receive(fifo)
			flush()
		}
	}()

	t.Cleanup(func() {
		mcuEnd.Close()
		<-fw.done
		core.SetGlobalTransport(nil)
	})
	return fw
}

// advance moves the counter and runs the alarm interrupt if it fired
func advance(n uint32) {
	if n == 0 {
		return
	}
	hw.Advance(n)
	if hw.RTCPending() || hw.TimerPending() {
		st.ServeInterrupt()
	}
}
