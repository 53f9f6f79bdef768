package protocol

// CRC16 is the CCITT variant used by Klipper message blocks, computed over
// the header and payload.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc)
		b ^= b << 4
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}

// trailer returns the three trailing bytes of a block whose header and
// payload are data
func trailer(data []byte) [MessageTrailerSize]byte {
	crc := CRC16(data)
	return [MessageTrailerSize]byte{uint8(crc >> 8), uint8(crc), MessageValueSync}
}
