package audio

import (
	"fmt"
	"sort"
)

type Device interface {
	Set(key string, val interface{}) error
	Get(key string) (interface{}, error)
}

type preset map[string]interface{}

var presets = map[string]preset{
	"beep": preset{
		PropWave:   "sine",
		PropOctave: 4,
	},
	"alarm": preset{
		PropWave:   "saw",
		PropOctave: 5,
		PropVolume: 100,
	},
	"click": preset{
		PropWave:   "tan",
		PropOctave: 3,
		PropVolume: 60,
	},
	"quiet": preset{
		PropVolume: 25,
	},
}

// LoadPreset applies the named preset to d. Keys are applied in sorted order
// so a failing preset always leaves d in the same state.
func LoadPreset(name string, d Device) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset: %v", name)
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := d.Set(k, p[k]); err != nil {
			return err
		}
	}
	return nil
}

// Presets returns the preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
