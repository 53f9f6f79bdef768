// Package tinycompress writes zlib streams made of stored (uncompressed)
// DEFLATE blocks. The output is readable by any zlib decoder, which is all
// the host needs from the firmware dictionary, and the encoder fits TinyGo.
package tinycompress

import (
	"errors"
	"hash"
	"hash/adler32"
	"io"
)

const maxStoredBlock = 0xFFFF

// ErrClosed is returned when writing to a closed Writer.
var ErrClosed = errors.New("tinycompress: write after close")

// Writer buffers everything written to it and emits a zlib stream on Close.
type Writer struct {
	w      io.Writer
	buf    []byte
	adler  hash.Hash32
	closed bool
}

// NewWriter returns a Writer that emits its stream to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:     w,
		adler: adler32.New(),
	}
}

// Write buffers p.
func (z *Writer) Write(p []byte) (int, error) {
	if z.closed {
		return 0, ErrClosed
	}
	z.buf = append(z.buf, p...)
	z.adler.Write(p)
	return len(p), nil
}

// Close writes the zlib header, the stored blocks and the Adler-32 trailer.
func (z *Writer) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true

	out := make([]byte, 0, len(z.buf)+len(z.buf)/maxStoredBlock*5+11)
	out = append(out, 0x78, 0x01)

	data := z.buf
	for {
		n := len(data)
		final := byte(1)
		if n > maxStoredBlock {
			n = maxStoredBlock
			final = 0
		}
		out = append(out, final,
			byte(n), byte(n>>8),
			^byte(n), ^byte(n>>8))
		out = append(out, data[:n]...)
		data = data[n:]
		if final == 1 {
			break
		}
	}

	sum := z.adler.Sum32()
	out = append(out, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))

	_, err := z.w.Write(out)
	return err
}
