package audio

import (
	"fmt"
	"math"
	"strings"
)

const twoPi = 2 * math.Pi

// Waveform selects the oscillator shape. Unknown values play as WaveSine.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSaw
	// WaveTan is the tangent approximation of a sawtooth. Its poles are
	// clamped to full scale when the sample is quantized.
	WaveTan
)

func (w Waveform) String() string {
	switch w {
	case WaveSaw:
		return "saw"
	case WaveTan:
		return "tan"
	default:
		return "sine"
	}
}

func (w Waveform) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(s) {
	case "sine":
		return WaveSine, nil
	case "saw":
		return WaveSaw, nil
	case "tan":
		return WaveTan, nil
	default:
		return WaveSine, fmt.Errorf("not a valid waveform type: %v", s)
	}
}

// period is the phase length of one cycle. The non-sine shapes run on a
// period of π, which is why their phase increment is half that of a sine.
func (w Waveform) period() float64 {
	switch w {
	case WaveSaw, WaveTan:
		return math.Pi
	default:
		return twoPi
	}
}

type osc struct {
	wave       Waveform
	phase      float64
	phaseDelta float64
}

// start resets the phase and tunes the oscillator to freq, shifted by octave
// relative to ReferenceOctave.
func (o *osc) start(freq float64, octave, sampleRate int) {
	cyclesPerSample := math.Pow(2, float64(octave-ReferenceOctave)) * freq / float64(sampleRate)
	o.phaseDelta = cyclesPerSample * math.Pi
	if o.wave.period() == twoPi {
		o.phaseDelta *= 2
	}
	o.phase = 0
}

func (o *osc) value() float64 {
	switch o.wave {
	case WaveSaw:
		return 2*o.phase/math.Pi - 1
	case WaveTan:
		return math.Tan(o.phase)
	default:
		return math.Sin(o.phase)
	}
}

func (o *osc) advance() {
	period := o.wave.period()
	o.phase += o.phaseDelta
	if o.phase >= period {
		o.phase = math.Mod(o.phase, period)
	}
}

// quantize scales v to the int16 range, clamping poles and dropping NaN.
func quantize(v float64) int16 {
	v *= math.MaxInt16
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
