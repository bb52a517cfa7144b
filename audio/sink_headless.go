//go:build headless

package audio

import (
	"io"

	"go.uber.org/zap"
)

func NewPortAudio(logger *zap.Logger) (Backend, error) {
	return nil, ErrBackendUnavailable
}

func NewOto(logger *zap.Logger) Backend {
	return unavailable{"oto"}
}

type unavailable struct{ name string }

func (u unavailable) Name() string                                 { return u.name }
func (u unavailable) Devices(Format) ([]string, error)             { return nil, ErrBackendUnavailable }
func (u unavailable) Open(StreamConfig, io.Reader) (Stream, error) { return nil, ErrBackendUnavailable }
func (u unavailable) Close() error                                 { return nil }
