package core

// String helpers for the firmware side, which avoids fmt and strconv.

// itoa formats a signed integer in decimal
func itoa(n int) string {
	if n < 0 {
		return "-" + utoa64(uint64(-int64(n)))
	}
	return utoa64(uint64(n))
}

// utoa formats a 32-bit tick or register value in decimal
func utoa(n uint32) string {
	return utoa64(uint64(n))
}

// utoa64 formats an unsigned value in decimal
func utoa64(n uint64) string {
	var buf [20]byte
	pos := len(buf)
	for {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return string(buf[pos:])
}

// hex32 formats v as 0x-prefixed upper case hex, zero padded to 8 digits
func hex32(v uint32) string {
	const digits = "0123456789ABCDEF"
	buf := []byte("0x00000000")
	for i := 9; i >= 2; i-- {
		buf[i] = digits[v&0xF]
		v >>= 4
	}
	return string(buf)
}

// valueToString converts a dictionary constant to its string form.
// Unsupported types yield an empty string.
func valueToString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int:
		return itoa(val)
	case int32:
		return itoa(int(val))
	case int64:
		if val < 0 {
			return "-" + utoa64(uint64(-val))
		}
		return utoa64(uint64(val))
	case uint:
		return utoa64(uint64(val))
	case uint8:
		return utoa(uint32(val))
	case uint16:
		return utoa(uint32(val))
	case uint32:
		return utoa(val)
	case uint64:
		return utoa64(val)
	default:
		return ""
	}
}
