package core

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"io"
	"testing"
)

func newTestDictionary() *Dictionary {
	reg := NewCommandRegistry()
	reg.Register("identify_response", "offset=%u data=%.*s", nil)
	reg.Register("identify", "offset=%u count=%c", func(*[]byte) error { return nil })
	reg.Register("get_clock", "", func(*[]byte) error { return nil })
	reg.Register("clock", "clock=%u", nil)
	return NewDictionary(reg)
}

func TestDictionaryJSON(t *testing.T) {
	d := newTestDictionary()
	d.AddConstant("CLOCK_FREQ", uint32(32768))
	d.AddConstant("ST_BACKEND", "rtc")
	d.SetVersion("test-1")

	want := `{"version":"test-1","build_versions":"go-tinygo",` +
		`"config":{"CLOCK_FREQ":"32768","ST_BACKEND":"rtc"},` +
		`"commands":{"identify offset=%u count=%c":1,"get_clock":2},` +
		`"responses":{"identify_response offset=%u data=%.*s":0,"clock clock=%u":3}}`
	if got := string(d.Generate()); got != want {
		t.Errorf("Unexpected dictionary\n got: %s\nwant: %s", got, want)
	}
}

func TestDictionaryCompressed(t *testing.T) {
	d := newTestDictionary()
	d.AddConstant("CLOCK_BITS", 24)
	raw := append([]byte(nil), d.Generate()...)

	d.BuildDictionary()
	zr, err := zlib.NewReader(bytes.NewReader(d.Generate()))
	if err != nil {
		t.Fatalf("Built dictionary is not zlib: %v", err)
	}
	inflated, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("Inflating: %v", err)
	}
	if !bytes.Equal(inflated, raw) {
		t.Errorf("Inflated dictionary differs\n got: %s\nwant: %s", inflated, raw)
	}
	if !json.Valid(inflated) {
		t.Error("Dictionary is not valid JSON")
	}

	// A new constant invalidates the compressed copy.
	d.AddConstant("ST_TIMEDELTA", 5)
	if !bytes.Contains(d.Generate(), []byte(`"ST_TIMEDELTA":"5"`)) {
		t.Error("Dictionary not rebuilt after AddConstant")
	}
}

func TestDictionaryChunks(t *testing.T) {
	d := newTestDictionary()
	data := d.Generate()

	var joined []byte
	for offset := uint32(0); ; offset += 16 {
		chunk := d.GetChunk(offset, 16)
		joined = append(joined, chunk...)
		if len(chunk) < 16 {
			break
		}
	}
	if !bytes.Equal(joined, data) {
		t.Error("Chunks do not reassemble into the dictionary")
	}
	if chunk := d.GetChunk(uint32(len(data))+10, 16); len(chunk) != 0 {
		t.Errorf("Chunk past the end has %d bytes", len(chunk))
	}
}
