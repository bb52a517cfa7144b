//go:build !headless

package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

const otoDevice = "default"

// oto allows a single context per process, so all Oto backends share it.
var (
	otoMu   sync.Mutex
	otoCtx  *oto.Context
	otoRate int
)

// Oto plays through the system default output using oto's pull players.
type Oto struct {
	logger *zap.Logger
}

func NewOto(logger *zap.Logger) *Oto {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oto{logger: logger}
}

func (b *Oto) Name() string { return "oto" }

func (b *Oto) Devices(f Format) ([]string, error) {
	return []string{otoDevice}, nil
}

func (b *Oto) Open(cfg StreamConfig, src io.Reader) (Stream, error) {
	if cfg.Device != "" && cfg.Device != otoDevice {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, cfg.Device)
	}
	if cfg.Format.BytesPerSample != 2 || cfg.Format.Channels != 1 {
		return nil, fmt.Errorf("%w: %v", ErrFormatNotSupported, cfg.Format)
	}
	ctx, err := b.context(cfg)
	if err != nil {
		return nil, err
	}
	p := ctx.NewPlayer(src)
	p.SetBufferSize(cfg.Format.BytesForDuration(cfg.BufferTime))
	b.logger.Info("opened stream", zap.Stringer("format", cfg.Format), zap.Duration("bufferTime", cfg.BufferTime))
	return &otoStream{player: p}, nil
}

func (b *Oto) context(cfg StreamConfig) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()
	if otoCtx != nil {
		if otoRate != cfg.Format.SampleRate {
			return nil, fmt.Errorf("%w: oto is running at %d Hz", ErrFormatNotSupported, otoRate)
		}
		return otoCtx, nil
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.Format.SampleRate,
		ChannelCount: cfg.Format.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.BufferTime,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	otoCtx, otoRate = ctx, cfg.Format.SampleRate
	return ctx, nil
}

func (b *Oto) Close() error { return nil }

type otoStream struct {
	player *oto.Player
}

func (s *otoStream) Start() error {
	s.player.Play()
	return s.player.Err()
}

func (s *otoStream) Stop() error {
	s.player.Pause()
	return nil
}

func (s *otoStream) Close() error { return s.player.Close() }

func (s *otoStream) SetVolume(v float64) {
	s.player.SetVolume(clampUnit(v))
}
