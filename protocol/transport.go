package protocol

import (
	"errors"
	"sync/atomic"
)

// ErrHandlerPanic is reported when a command handler panics
var ErrHandlerPanic = errors.New("command handler panicked")

// CommandHandler handles one decoded command. It consumes its arguments
// from data.
type CommandHandler func(cmdID uint16, data *[]byte) error

// Transport is the firmware end of the link: it parses blocks from the host,
// acknowledges them and frames responses.
type Transport struct {
	scanner FrameScanner
	// nextSequence is the sequence expected from the host. Responses and
	// ACKs carry the same value.
	nextSequence uint32 // atomic

	output        OutputBuffer
	handler       CommandHandler
	resetCallback func()
	flushCallback func()
	errorCallback func(cmdID uint16, err error)
}

// NewTransport creates a Transport writing to output
func NewTransport(output OutputBuffer, handler CommandHandler) *Transport {
	return &Transport{
		scanner:      FrameScanner{synced: true},
		nextSequence: MessageDest,
		output:       output,
		handler:      handler,
	}
}

// Receive parses every complete block in input and pops what it consumed.
// Each block is acknowledged before its commands run, so the host sees the
// ACK ahead of any response.
func (t *Transport) Receive(input InputBuffer) {
	data := input.Data()
	consumed := 0
	for {
		frame, n, res := t.scanner.Scan(data[consumed:])
		consumed += n
		switch res {
		case ScanNeedMore:
			input.Pop(consumed)
			return
		case ScanResynced:
			t.encodeAckNak()
			continue
		}

		expected := uint8(atomic.LoadUint32(&t.nextSequence))
		if frame.Sequence == MessageDest && expected != MessageDest {
			// host restarted its sequence
			atomic.StoreUint32(&t.nextSequence, MessageDest)
			expected = MessageDest
			if t.resetCallback != nil {
				t.resetCallback()
			}
		}

		if frame.Sequence != expected {
			// NAK: ACK with the sequence still expected
			t.encodeAckNak()
			continue
		}
		atomic.StoreUint32(&t.nextSequence, uint32(NextSequence(expected)))
		t.encodeAckNak()
		t.parseFrame(frame.Payload)
	}
}

// parseFrame dispatches every command in a block. An error, a malformed ID
// or a handler panic drops the rest of the block.
func (t *Transport) parseFrame(payload []byte) {
	var cmdID uint32
	defer func() {
		if r := recover(); r != nil {
			t.reportError(uint16(cmdID), ErrHandlerPanic)
		}
	}()

	for len(payload) > 0 {
		var err error
		cmdID, err = DecodeVLQUint(&payload)
		if err != nil {
			t.reportError(0, err)
			return
		}
		if t.handler == nil {
			continue
		}
		if err := t.handler(uint16(cmdID), &payload); err != nil {
			t.reportError(uint16(cmdID), err)
			return
		}
	}
}

func (t *Transport) reportError(cmdID uint16, err error) {
	if t.errorCallback != nil {
		t.errorCallback(cmdID, err)
	}
}

// encodeAckNak writes an empty block carrying the expected sequence and
// flushes it at once
func (t *Transport) encodeAckNak() {
	EncodeFrame(t.output, uint8(atomic.LoadUint32(&t.nextSequence)), nil)
	if t.flushCallback != nil {
		t.flushCallback()
	}
}

// SendCommand frames a message: the command ID followed by args. It
// implements core.ResponseSender.
func (t *Transport) SendCommand(cmdID uint16, args func(output OutputBuffer)) {
	seq := uint8(atomic.LoadUint32(&t.nextSequence))
	EncodeFrame(t.output, seq, func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(cmdID))
		if args != nil {
			args(output)
		}
	})
}

// Sequence returns the sequence expected from the host
func (t *Transport) Sequence() uint8 {
	return uint8(atomic.LoadUint32(&t.nextSequence))
}

// Reset forgets the link state, e.g. after the UART is reopened
func (t *Transport) Reset() {
	t.scanner.Reset()
	atomic.StoreUint32(&t.nextSequence, MessageDest)
	if t.resetCallback != nil {
		t.resetCallback()
	}
}

// SetResetCallback sets the callback run when the host restarts its
// sequence
func (t *Transport) SetResetCallback(callback func()) {
	t.resetCallback = callback
}

// SetFlushCallback sets the callback that pushes pending output to the wire.
// It runs after every ACK/NAK.
func (t *Transport) SetFlushCallback(callback func()) {
	t.flushCallback = callback
}

// SetErrorCallback sets the callback told about rejected commands
func (t *Transport) SetErrorCallback(callback func(cmdID uint16, err error)) {
	t.errorCallback = callback
}
