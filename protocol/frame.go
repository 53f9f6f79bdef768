package protocol

import "bytes"

// Frame is one validated message block. Payload aliases the scanned data.
type Frame struct {
	Sequence uint8
	Payload  []byte
}

// ScanResult tells the caller what FrameScanner.Scan found
type ScanResult uint8

const (
	// ScanNeedMore means no complete block is buffered yet
	ScanNeedMore ScanResult = iota
	// ScanFrame means a valid block was returned
	ScanFrame
	// ScanResynced means garbage was dropped up to a sync byte
	ScanResynced
)

// FrameScanner splits a byte stream into message blocks. After a bad
// length, sequence, CRC or trailer it drops input up to the next sync byte.
// The zero value is out of sync; use NewFrameScanner for a fresh link.
type FrameScanner struct {
	synced bool
}

// NewFrameScanner returns a scanner that assumes the stream starts on a
// block boundary
func NewFrameScanner() *FrameScanner {
	return &FrameScanner{synced: true}
}

// Synchronized reports whether the scanner is aligned on block boundaries
func (s *FrameScanner) Synchronized() bool {
	return s.synced
}

// Reset puts the scanner back on a block boundary
func (s *FrameScanner) Reset() {
	s.synced = true
}

// Scan looks at the front of data and returns the bytes it consumed. Bytes
// are consumed with every result, including ScanNeedMore when leading sync
// bytes or unsynchronized garbage were dropped.
func (s *FrameScanner) Scan(data []byte) (Frame, int, ScanResult) {
	n := 0
	for n < len(data) {
		rest := data[n:]
		if !s.synced {
			i := bytes.IndexByte(rest, MessageValueSync)
			if i < 0 {
				return Frame{}, len(data), ScanNeedMore
			}
			s.synced = true
			return Frame{}, n + i + 1, ScanResynced
		}

		if rest[0] == MessageValueSync {
			n++
			continue
		}
		if len(rest) < MessageLengthMin {
			break
		}

		msgLen := int(rest[MessagePositionLen])
		seq := rest[MessagePositionSeq]
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax || seq&^MessageSeqMask != MessageDest {
			s.synced = false
			continue
		}
		if len(rest) < msgLen {
			break
		}
		if rest[msgLen-MessageTrailerSync] != MessageValueSync {
			s.synced = false
			continue
		}
		crc := uint16(rest[msgLen-MessageTrailerCRC])<<8 | uint16(rest[msgLen-MessageTrailerCRC+1])
		if crc != CRC16(rest[:msgLen-MessageTrailerSize]) {
			s.synced = false
			continue
		}

		return Frame{
			Sequence: seq,
			Payload:  rest[MessageHeaderSize : msgLen-MessageTrailerSize],
		}, n + msgLen, ScanFrame
	}
	return Frame{}, n, ScanNeedMore
}

// EncodeFrame writes one block with sequence seq to output. body writes the
// payload and may be nil for an ACK/NAK. Returns the block length, which
// the caller must check against MessageLengthMax.
func EncodeFrame(output OutputBuffer, seq uint8, body func(output OutputBuffer)) int {
	cursor := output.CurPosition()
	output.Output([]byte{0, seq})
	if body != nil {
		body(output)
	}

	length := len(output.DataSince(cursor)) + MessageTrailerSize
	output.Update(cursor, uint8(length))
	tr := trailer(output.DataSince(cursor))
	output.Output(tr[:])
	return length
}
