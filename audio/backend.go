package audio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

var (
	ErrBackendUnavailable = errors.New("audio backend not available in this build")
	ErrUnknownDevice      = errors.New("unknown audio device")
	ErrFormatNotSupported = errors.New("audio format not supported by device")
)

// Backend is a native audio output that pulls samples from an io.Reader.
type Backend interface {
	Name() string
	// Devices lists the output devices able to play f, default device first.
	Devices(f Format) ([]string, error)
	Open(cfg StreamConfig, src io.Reader) (Stream, error)
	Close() error
}

type StreamConfig struct {
	Device     string
	Format     Format
	BufferTime time.Duration
	// OnUnderrun is called from the audio callback and must not block.
	OnUnderrun func()
}

func (c StreamConfig) underrun() {
	if c.OnUnderrun != nil {
		c.OnUnderrun()
	}
}

// Stream is an open output bound to a source.
type Stream interface {
	Start() error
	Stop() error
	Close() error
	// SetVolume sets a linear gain in [0, 1].
	SetVolume(v float64)
}

// Backends lists the names accepted by NewBackend.
var Backends = []string{"portaudio", "oto", "null"}

func NewBackend(name string, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("backend", name))
	switch name {
	case "portaudio":
		b, err := NewPortAudio(logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "oto":
		return NewOto(logger), nil
	case "null":
		return NewNull(logger), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
}
