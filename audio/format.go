package audio

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFormat is returned when a Format cannot drive an engine.
var ErrInvalidFormat = errors.New("invalid audio format")

// rampTime is the duration of the attack and release ramps.
const rampTime = 0.02

// Format describes the PCM stream an Engine produces. Only mono is supported.
type Format struct {
	SampleRate     int
	BytesPerSample int
	Channels       int
}

// Mono16 returns a mono signed 16-bit format at the given sample rate.
func Mono16(sampleRate int) Format {
	return Format{SampleRate: sampleRate, BytesPerSample: 2, Channels: 1}
}

func (f Format) Validate() error {
	switch {
	case f.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidFormat, f.SampleRate)
	case f.rampSamples() < 1:
		return fmt.Errorf("%w: sample rate %d is too low for a %vs ramp", ErrInvalidFormat, f.SampleRate, rampTime)
	case f.BytesPerSample <= 0:
		return fmt.Errorf("%w: bytes per sample must be positive, got %d", ErrInvalidFormat, f.BytesPerSample)
	case f.Channels != 1:
		return fmt.Errorf("%w: only mono is supported, got %d channels", ErrInvalidFormat, f.Channels)
	}
	return nil
}

func (f Format) rampSamples() int {
	return int(rampTime * float64(f.SampleRate))
}

// BytesPerFrame is the size of one sample for every channel.
func (f Format) BytesPerFrame() int {
	return f.BytesPerSample * f.Channels
}

// BytesForDuration returns the number of whole frames' bytes that cover d.
func (f Format) BytesForDuration(d time.Duration) int {
	frames := int(int64(d) * int64(f.SampleRate) / int64(time.Second))
	return frames * f.BytesPerFrame()
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dbit/%dch", f.SampleRate, f.BytesPerSample*8, f.Channels)
}
