// Package protocol implements the Klipper message block framing spoken
// between the tick firmware and the host monitor.
//
// A block is <len><seq><payload...><crc16 hi><crc16 lo><0x7E>. The payload is
// a sequence of VLQ encoded messages, each starting with its command ID.
package protocol

// Framing constants
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F

	// MessageMax is the capacity of a ScratchOutput: several blocks queued
	// between two flushes.
	MessageMax = 512
)

// NextSequence returns the sequence byte following seq
func NextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
