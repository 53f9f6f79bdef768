package tinycompress

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"
)

func roundTrip(t *testing.T, input []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if _, err := w.Write(input); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := zlib.NewReader(&buf)
	if err != nil {
		t.Fatalf("zlib.NewReader failed: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Decompression failed: %v", err)
	}
	return out
}

func TestWriterProducesValidZlib(t *testing.T) {
	input := []byte(`{"version":"nrftick","config":{"CLOCK_FREQ":"1024"}}`)
	if out := roundTrip(t, input); !bytes.Equal(out, input) {
		t.Errorf("Expected %q, got %q", input, out)
	}
}

func TestWriterEmptyInput(t *testing.T) {
	if out := roundTrip(t, nil); len(out) != 0 {
		t.Errorf("Expected empty output, got %d bytes", len(out))
	}
}

func TestWriterMultipleBlocks(t *testing.T) {
	input := bytes.Repeat([]byte("0123456789"), 15000)
	if out := roundTrip(t, input); !bytes.Equal(out, input) {
		t.Errorf("Round trip of %d bytes failed, got %d bytes", len(input), len(out))
	}
}

func TestWriteAfterClose(t *testing.T) {
	w := NewWriter(io.Discard)
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := w.Write([]byte{1}); err != ErrClosed {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
