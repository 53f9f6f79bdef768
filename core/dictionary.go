package core

import (
	"bytes"
	"sync"

	"nrftick/tinycompress"
)

// Dictionary is the data dictionary served to the host through identify.
// It is Klipper's JSON layout: version, config constants, commands and
// responses with their message IDs.
type Dictionary struct {
	mu            sync.RWMutex
	constants     map[string]string
	commandReg    *CommandRegistry
	version       string
	buildVersions string
	cached        []byte // zlib-compressed JSON, built by BuildDictionary
}

var globalDictionary = NewDictionary(globalRegistry)

// NewDictionary creates a dictionary describing the commands of cmdReg
func NewDictionary(cmdReg *CommandRegistry) *Dictionary {
	return &Dictionary{
		constants:     make(map[string]string),
		commandReg:    cmdReg,
		version:       "nrftick-0.1.0",
		buildVersions: "go-tinygo",
	}
}

// RegisterConstant registers a constant in the global dictionary
func RegisterConstant(name string, value interface{}) {
	globalDictionary.AddConstant(name, value)
}

// GetGlobalDictionary returns the global dictionary instance
func GetGlobalDictionary() *Dictionary {
	return globalDictionary
}

// AddConstant adds or replaces a constant. Invalidates the cached build.
func (d *Dictionary) AddConstant(name string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.constants[name] = valueToString(value)
	d.cached = nil
}

// SetVersion sets the firmware version string
func (d *Dictionary) SetVersion(version string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.version = version
	d.cached = nil
}

// BuildDictionary compresses and caches the dictionary. Call after every
// command and constant is registered.
func (d *Dictionary) BuildDictionary() {
	// Registry lock is taken before ours, never inside it.
	commands, responses := d.commandReg.GetCommandsAndResponses()

	d.mu.Lock()
	defer d.mu.Unlock()

	raw := d.buildJSON(commands, responses)

	var buf bytes.Buffer
	w := tinycompress.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		DebugPrintln("[dict] compression failed: " + err.Error())
		d.cached = raw
		return
	}
	if err := w.Close(); err != nil {
		DebugPrintln("[dict] compression failed: " + err.Error())
		d.cached = raw
		return
	}
	d.cached = buf.Bytes()
	DebugPrintln("[dict] " + itoa(len(raw)) + " bytes, " + itoa(len(d.cached)) + " compressed")
}

// Generate returns the dictionary as served to the host. Uncompressed JSON
// is returned until BuildDictionary has run.
func (d *Dictionary) Generate() []byte {
	d.mu.RLock()
	cached := d.cached
	d.mu.RUnlock()
	if cached != nil {
		return cached
	}

	commands, responses := d.commandReg.GetCommandsAndResponses()
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buildJSON(commands, responses)
}

// GetChunk returns a copy of up to count bytes of the dictionary at offset
func (d *Dictionary) GetChunk(offset uint32, count uint8) []byte {
	data := d.Generate()
	if offset >= uint32(len(data)) {
		return []byte{}
	}
	end := offset + uint32(count)
	if end > uint32(len(data)) {
		end = uint32(len(data))
	}
	chunk := make([]byte, end-offset)
	copy(chunk, data[offset:end])
	return chunk
}

// buildJSON writes the dictionary by hand; encoding/json is too heavy for
// the target. Caller holds d.mu.
func (d *Dictionary) buildJSON(commands, responses map[string]int) []byte {
	out := make([]byte, 0, 512)
	out = append(out, `{"version":"`...)
	out = append(out, d.version...)
	out = append(out, `","build_versions":"`...)
	out = append(out, d.buildVersions...)
	out = append(out, `","config":{`...)

	names := make([]string, 0, len(d.constants))
	for name := range d.constants {
		names = append(names, name)
	}
	sortStrings(names)
	for i, name := range names {
		if i > 0 {
			out = append(out, ',')
		}
		out = appendQuoted(out, name)
		out = append(out, ':')
		out = appendQuoted(out, d.constants[name])
	}

	out = append(out, `},"commands":`...)
	out = appendIDMap(out, commands)
	out = append(out, `,"responses":`...)
	out = appendIDMap(out, responses)
	out = append(out, '}')
	return out
}

// appendIDMap writes {"format":id,...} ordered by id
func appendIDMap(out []byte, m map[string]int) []byte {
	formats := make([]string, 0, len(m))
	for format := range m {
		formats = append(formats, format)
	}
	// order by ID, not by name
	for i := 1; i < len(formats); i++ {
		for j := i; j > 0 && m[formats[j]] < m[formats[j-1]]; j-- {
			formats[j], formats[j-1] = formats[j-1], formats[j]
		}
	}

	out = append(out, '{')
	for i, format := range formats {
		if i > 0 {
			out = append(out, ',')
		}
		out = appendQuoted(out, format)
		out = append(out, ':')
		out = append(out, itoa(m[format])...)
	}
	return append(out, '}')
}

func appendQuoted(out []byte, s string) []byte {
	out = append(out, '"')
	out = append(out, s...)
	return append(out, '"')
}

// sortStrings is an insertion sort; the lists are a handful of entries.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
