//go:build !tinygo

package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

var (
	// ErrClosed is returned once the transport or its port is closed
	ErrClosed = errors.New("transport closed")
	// ErrNAK is returned when the firmware expects another sequence
	ErrNAK = errors.New("command not acknowledged")
	// ErrMessageTooLong is returned for a command that does not fit a block
	ErrMessageTooLong = errors.New("message too long")
)

// Message is one response received from the firmware
type Message struct {
	Sequence uint8
	CmdID    uint16
	Args     []byte // encoded arguments after the command ID
}

// ResponseHandler observes every response. It runs on the read loop and
// must not block.
type ResponseHandler func(msg *Message)

// HostTransport is the host end of the link. One command is in flight at a
// time; responses are queued until WaitResponse collects them.
type HostTransport struct {
	port io.ReadWriteCloser
	seq  uint32 // atomic, sequence of the next command

	sendMu sync.Mutex

	acks      chan uint8
	responses chan *Message

	handlerMu sync.RWMutex
	handler   ResponseHandler

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

// NewHostTransport starts reading from port
func NewHostTransport(port io.ReadWriteCloser) *HostTransport {
	t := &HostTransport{
		port:      port,
		seq:       MessageDest,
		acks:      make(chan uint8, 4),
		responses: make(chan *Message, 16),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// Send writes one command and waits until the firmware acknowledges it
func (t *HostTransport) Send(ctx context.Context, cmdID uint16, args func(output OutputBuffer)) error {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	seq := uint8(atomic.LoadUint32(&t.seq))
	out := NewScratchOutput()
	n := EncodeFrame(out, seq, func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(cmdID))
		if args != nil {
			args(output)
		}
	})
	if n > MessageLengthMax {
		return fmt.Errorf("command %d: %w: %d bytes", cmdID, ErrMessageTooLong, n)
	}

	t.drainAcks()
	if _, err := t.port.Write(out.Result()); err != nil {
		return fmt.Errorf("write command %d: %w", cmdID, err)
	}

	want := NextSequence(seq)
	for {
		select {
		case ack := <-t.acks:
			switch ack {
			case want:
				atomic.StoreUint32(&t.seq, uint32(want))
				return nil
			case seq:
				// not processed yet, e.g. the ACK of a resync
			default:
				atomic.StoreUint32(&t.seq, uint32(ack))
				return fmt.Errorf("command %d: %w: firmware expects seq 0x%02x", cmdID, ErrNAK, ack)
			}
		case <-ctx.Done():
			return fmt.Errorf("command %d: waiting for ACK: %w", cmdID, ctx.Err())
		case <-t.done:
			return t.closedErr()
		}
	}
}

// WaitResponse returns the next response with the given ID. Queued
// responses with other IDs are discarded.
func (t *HostTransport) WaitResponse(ctx context.Context, cmdID uint16) (*Message, error) {
	for {
		select {
		case msg := <-t.responses:
			if msg.CmdID == cmdID {
				return msg, nil
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for response %d: %w", cmdID, ctx.Err())
		case <-t.done:
			return nil, t.closedErr()
		}
	}
}

// Request sends a command and waits for the response respID
func (t *HostTransport) Request(ctx context.Context, cmdID uint16, args func(output OutputBuffer), respID uint16) (*Message, error) {
	if err := t.Send(ctx, cmdID, args); err != nil {
		return nil, err
	}
	return t.WaitResponse(ctx, respID)
}

// SetResponseHandler installs a handler observing every response
func (t *HostTransport) SetResponseHandler(handler ResponseHandler) {
	t.handlerMu.Lock()
	t.handler = handler
	t.handlerMu.Unlock()
}

// Sequence returns the sequence the next command will carry
func (t *HostTransport) Sequence() uint8 {
	return uint8(atomic.LoadUint32(&t.seq))
}

// Reset restarts the sequence and drops queued ACKs and responses. The
// firmware treats the next command as a host restart.
func (t *HostTransport) Reset() {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	atomic.StoreUint32(&t.seq, MessageDest)
	t.drainAcks()
	for {
		select {
		case <-t.responses:
		default:
			return
		}
	}
}

// Close stops the read loop and closes the port
func (t *HostTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.stop)
		err = t.port.Close()
		<-t.done
	})
	return err
}

// Err returns why the read loop stopped, or nil while it runs
func (t *HostTransport) Err() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.err
}

func (t *HostTransport) closedErr() error {
	err := t.Err()
	if err == nil || errors.Is(err, ErrClosed) {
		return ErrClosed
	}
	return fmt.Errorf("%w: %v", ErrClosed, err)
}

func (t *HostTransport) drainAcks() {
	for {
		select {
		case <-t.acks:
		default:
			return
		}
	}
}

func (t *HostTransport) readLoop() {
	defer close(t.done)

	input := NewFifoBuffer(MessageMax)
	scanner := NewFrameScanner()
	buf := make([]byte, MessageLengthMax)
	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			input.Write(buf[:n])
			t.process(input, scanner)
		}
		select {
		case <-t.stop:
			err = ErrClosed
		default:
		}
		if err != nil {
			t.errMu.Lock()
			t.err = err
			t.errMu.Unlock()
			return
		}
	}
}

func (t *HostTransport) process(input *FifoBuffer, scanner *FrameScanner) {
	data := input.Data()
	consumed := 0
	for {
		frame, n, res := scanner.Scan(data[consumed:])
		consumed += n
		if res == ScanNeedMore {
			break
		}
		if res == ScanFrame {
			t.dispatch(frame)
		}
	}
	input.Pop(consumed)
}

func (t *HostTransport) dispatch(frame Frame) {
	if len(frame.Payload) == 0 {
		select {
		case t.acks <- frame.Sequence:
		default:
		}
		return
	}

	args := append([]byte(nil), frame.Payload...)
	cmdID, err := DecodeVLQUint(&args)
	if err != nil {
		return
	}
	msg := &Message{Sequence: frame.Sequence, CmdID: uint16(cmdID), Args: args}

	t.handlerMu.RLock()
	handler := t.handler
	t.handlerMu.RUnlock()
	if handler != nil {
		handler(msg)
	}

	select {
	case t.responses <- msg:
	default:
		// queue full: drop the oldest
		select {
		case <-t.responses:
		default:
		}
		select {
		case t.responses <- msg:
		default:
		}
	}
}
