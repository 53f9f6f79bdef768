//go:build nrf51

package main

import (
	"machine"
	"time"

	"nrftick/core"
	"nrftick/protocol"
	"nrftick/st"
)

// debugUART routes core debug output to the UART. It shares the link with
// the host protocol, so it stays off unless the firmware is run standalone.
const debugUART = false

// heartbeatUS is the heartbeat half period
const heartbeatUS = 500000

var (
	uart         = machine.DefaultUART
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput
	transport    *protocol.Transport

	msgerrors   uint32
	dumpedTimes bool
)

func main() {
	uart.Configure(machine.UARTConfig{BaudRate: 115200})

	core.SetDebugWriter(func(s string) {
		uart.Write([]byte(s))
		uart.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(debugUART)
	core.InitAsyncDebug()

	core.TimerInit()
	enableAlarmInterrupt()

	core.InitCoreCommands()
	core.RegisterConstant("MCU", "nrf51")
	core.GetGlobalDictionary().BuildDictionary()

	inputBuffer = protocol.NewFifoBuffer(256)
	outputBuffer = protocol.NewScratchOutput()

	transport = protocol.NewTransport(outputBuffer, core.DispatchCommand)
	// Runs inside Receive; the buffers are still in use there
	transport.SetResetCallback(func() {
		core.ResetFirmwareState()
		core.StartHeartbeat(st.Systime(core.TimerFromUS(heartbeatUS)))
		dumpedTimes = false
	})
	// The host expects the ACK before any response in the same block
	transport.SetFlushCallback(writeUART)
	transport.SetErrorCallback(func(cmdID uint16, err error) {
		msgerrors++
		core.DebugPrintln("[cmd] " + err.Error())
	})
	core.SetGlobalTransport(transport)

	initHeartbeatLED()
	core.StartHeartbeat(st.Systime(core.TimerFromUS(heartbeatUS)))

	for {
		readUART()

		if inputBuffer.Available() > 0 {
			transport.Receive(inputBuffer)
		}
		writeUART()

		core.ProcessTimers()
		showHeartbeat(core.HeartbeatBeats())

		if core.IsShutdown() && !dumpedTimes {
			core.DumpTimingRing()
			dumpedTimes = true
		}

		time.Sleep(50 * time.Microsecond)
	}
}

// readUART moves buffered UART bytes into the input FIFO
func readUART() {
	for uart.Buffered() > 0 && inputBuffer.Free() > 0 {
		b, err := uart.ReadByte()
		if err != nil {
			msgerrors++
			return
		}
		inputBuffer.Write([]byte{b})
	}
}

// writeUART sends and clears the pending output
func writeUART() {
	result := outputBuffer.Result()
	if len(result) == 0 {
		return
	}
	if _, err := uart.Write(result); err != nil {
		msgerrors++
	}
	outputBuffer.Reset()
}
