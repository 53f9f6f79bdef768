package monitor

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dictionary is the firmware data dictionary served through identify
type Dictionary struct {
	Version       string            `json:"version"`
	BuildVersions string            `json:"build_versions"`
	Config        map[string]string `json:"config"`
	Commands      map[string]int    `json:"commands"`
	Responses     map[string]int    `json:"responses"`
}

// ParseDictionary decodes a dictionary blob, inflating it first when it
// carries a zlib header
func ParseDictionary(data []byte) (*Dictionary, error) {
	if len(data) >= 2 && data[0] == 0x78 {
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("dictionary: %w", err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("dictionary: inflate: %w", err)
		}
	}

	var dict Dictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("dictionary: %w", err)
	}
	return &dict, nil
}

// CommandID returns the ID of the command called name
func (d *Dictionary) CommandID(name string) (uint16, bool) {
	return lookup(d.Commands, name)
}

// ResponseID returns the ID of the response called name
func (d *Dictionary) ResponseID(name string) (uint16, bool) {
	return lookup(d.Responses, name)
}

// ConfigUint returns a numeric config constant
func (d *Dictionary) ConfigUint(key string) (uint32, error) {
	s, ok := d.Config[key]
	if !ok {
		return 0, fmt.Errorf("dictionary: no config constant %s", key)
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("dictionary: config constant %s: %w", key, err)
	}
	return uint32(v), nil
}

// lookup matches name against "name format" keys
func lookup(m map[string]int, name string) (uint16, bool) {
	for key, id := range m {
		if key == name || strings.HasPrefix(key, name+" ") {
			return uint16(id), true
		}
	}
	return 0, false
}
