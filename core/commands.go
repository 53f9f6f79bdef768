package core

import (
	"sync/atomic"

	"nrftick/protocol"
	"nrftick/st"
)

// ResponseSender frames and sends a message to the host.
// *protocol.Transport implements it.
type ResponseSender interface {
	SendCommand(cmdID uint16, args func(output protocol.OutputBuffer))
}

// FirmwareState holds the handshake state the host queries with get_config
type FirmwareState struct {
	configCRC  uint32 // atomic
	isShutdown uint32 // atomic bool
}

var (
	globalState  FirmwareState
	globalSender ResponseSender
)

// SetGlobalTransport sets where responses are sent
func SetGlobalTransport(sender ResponseSender) {
	globalSender = sender
}

// InitCoreCommands registers the protocol and clock commands.
// identify_response and identify must stay IDs 0 and 1; the host
// bootstraps the dictionary with them.
func InitCoreCommands() {
	RegisterResponse("identify_response", "offset=%u data=%.*s")      // ID 0
	RegisterCommand("identify", "offset=%u count=%c", handleIdentify) // ID 1

	RegisterCommand("get_uptime", "", handleGetUptime)
	RegisterCommand("get_clock", "", handleGetClock)
	RegisterCommand("get_alarm", "", handleGetAlarm)
	RegisterCommand("get_config", "", handleGetConfig)
	RegisterCommand("config_reset", "", handleConfigReset)
	RegisterCommand("finalize_config", "crc=%u", handleFinalizeConfig)
	RegisterCommand("allocate_oids", "count=%c", handleAllocateOids)
	RegisterCommand("emergency_stop", "", handleEmergencyStop)

	RegisterResponse("uptime", "high=%u clock=%u")
	RegisterResponse("clock", "clock=%u")
	RegisterResponse("alarm", "target=%u active=%c timers=%hu")
	RegisterResponse("config", "is_config=%c crc=%u is_shutdown=%c move_count=%hu")
}

// SendResponse sends a registered response through the global transport
func SendResponse(responseName string, args func(output protocol.OutputBuffer)) {
	if globalSender == nil {
		return
	}
	cmd, ok := globalRegistry.GetCommandByName(responseName)
	if !ok {
		panic("response not registered: " + responseName)
	}
	globalSender.SendCommand(cmd.ID, args)
}

func encodeBool(output protocol.OutputBuffer, v bool) {
	if v {
		protocol.EncodeVLQUint(output, 1)
	} else {
		protocol.EncodeVLQUint(output, 0)
	}
}

// handleIdentify returns a chunk of the data dictionary
func handleIdentify(data *[]byte) error {
	offset, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	count, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}

	chunk := GetGlobalDictionary().GetChunk(offset, uint8(count))
	SendResponse("identify_response", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, offset)
		protocol.EncodeVLQBytes(output, chunk)
	})
	return nil
}

// handleGetUptime returns the 64-bit tick count split in two words
func handleGetUptime(data *[]byte) error {
	uptime := GetUptime()
	SendResponse("uptime", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, uint32(uptime>>32))
		protocol.EncodeVLQUint(output, uint32(uptime))
	})
	return nil
}

// handleGetClock returns the raw tick counter
func handleGetClock(data *[]byte) error {
	clock := GetTime()
	SendResponse("clock", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, clock)
	})
	return nil
}

// handleGetAlarm reports the programmed alarm target and scheduler state
func handleGetAlarm(data *[]byte) error {
	state := disableInterrupts()
	target := st.GetAlarm()
	active := st.IsAlarmActive()
	timers := PendingTimers()
	restoreInterrupts(state)

	SendResponse("alarm", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, uint32(target))
		encodeBool(output, active)
		protocol.EncodeVLQUint(output, uint32(timers))
	})
	return nil
}

// handleGetConfig returns the configuration state
func handleGetConfig(data *[]byte) error {
	crc := atomic.LoadUint32(&globalState.configCRC)
	isShutdown := atomic.LoadUint32(&globalState.isShutdown) != 0

	SendResponse("config", func(output protocol.OutputBuffer) {
		encodeBool(output, crc != 0)
		protocol.EncodeVLQUint(output, crc)
		encodeBool(output, isShutdown)
		protocol.EncodeVLQUint(output, 0)
	})
	return nil
}

func handleConfigReset(data *[]byte) error {
	atomic.StoreUint32(&globalState.configCRC, 0)
	return nil
}

func handleFinalizeConfig(data *[]byte) error {
	crc, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	atomic.StoreUint32(&globalState.configCRC, crc)
	return nil
}

// handleAllocateOids accepts the allocation; no objects are configurable
func handleAllocateOids(data *[]byte) error {
	_, err := protocol.DecodeVLQUint(data)
	return err
}

func handleEmergencyStop(data *[]byte) error {
	Shutdown()
	return nil
}

// Shutdown drops every pending timer, disarms the alarm and marks the
// firmware shut down.
func Shutdown() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	atomic.StoreUint32(&globalState.isShutdown, 1)
	for timerList != nil {
		t := timerList
		timerList = t.Next
		t.Next = nil
	}
	programAlarm()
}

// IsShutdown returns true if the firmware is in shutdown state
func IsShutdown() bool {
	return atomic.LoadUint32(&globalState.isShutdown) != 0
}

// ResetFirmwareState clears the handshake state after a host reconnect
func ResetFirmwareState() {
	atomic.StoreUint32(&globalState.configCRC, 0)
	atomic.StoreUint32(&globalState.isShutdown, 0)
}
