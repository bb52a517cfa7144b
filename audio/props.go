package audio

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Props stores session settings that can be read without locks. All properties
// should be registered before any reads take place.
type Props struct {
	properties map[string]*atomic.Value
	setters    map[string]setter
}

func NewProps() *Props {
	return &Props{
		properties: make(map[string]*atomic.Value),
		setters:    make(map[string]setter),
	}
}

// Set updates the property with value. The key has to be registered first using Register.
func (p *Props) Set(key string, value interface{}) error {
	prop, ok := p.properties[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	set, ok := p.setters[key]
	if !ok {
		return fmt.Errorf("unknown property %s", key)
	}
	if err := set(value, prop); err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	return nil
}

func (p *Props) Get(key string) (interface{}, error) {
	prop, ok := p.properties[key]
	if !ok {
		return nil, fmt.Errorf("unknown property %s", key)
	}
	return prop.Load(), nil
}

// Keys returns the registered property names in sorted order.
func (p *Props) Keys() []string {
	keys := make([]string, 0, len(p.properties))
	for k := range p.properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register adds a new property.
func (p *Props) Register(key string, set setter, init interface{}) (*atomic.Value, error) {
	var prop atomic.Value
	p.properties[key] = &prop
	p.setters[key] = set
	return &prop, set(init, &prop)
}

type setter func(val interface{}, dest *atomic.Value) error

// setInt stores whole numbers in [min, max]. Floats from JSON or the REPL are
// accepted when they have no fractional part.
func setInt(min, max int) setter {
	return func(v interface{}, dest *atomic.Value) error {
		var n int
		switch x := v.(type) {
		case int:
			n = x
		case float64:
			if x != float64(int(x)) {
				return fmt.Errorf("value is not a whole number: %v", v)
			}
			n = int(x)
		default:
			return fmt.Errorf("value is not an int: %v", v)
		}
		if n < min || n > max {
			return fmt.Errorf("property value is not in valid range %v - %v: %v", min, max, n)
		}
		dest.Store(n)
		return nil
	}
}

func setString(v interface{}, dest *atomic.Value) error {
	if s, ok := v.(string); ok {
		dest.Store(s)
		return nil
	}
	return fmt.Errorf("value is not a string: %v", v)
}

func setWaveform(v interface{}, dest *atomic.Value) error {
	switch w := v.(type) {
	case Waveform:
		dest.Store(w)
		return nil
	case string:
		wave, err := ParseWaveform(w)
		if err != nil {
			return err
		}
		dest.Store(wave)
		return nil
	default:
		return fmt.Errorf("value is not a string: %v", v)
	}
}
