package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

const nullDevice = "null"

// Null is a backend without a device. Its streams pull one buffer per buffer
// time from a goroutine and discard the samples.
type Null struct {
	logger *zap.Logger
}

func NewNull(logger *zap.Logger) *Null {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Null{logger: logger}
}

func (b *Null) Name() string { return "null" }

func (b *Null) Devices(f Format) ([]string, error) {
	return []string{nullDevice}, nil
}

func (b *Null) Open(cfg StreamConfig, src io.Reader) (Stream, error) {
	if cfg.Device != "" && cfg.Device != nullDevice {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, cfg.Device)
	}
	size := cfg.Format.BytesForDuration(cfg.BufferTime)
	if size <= 0 || cfg.BufferTime <= 0 {
		return nil, fmt.Errorf("%w: buffer time %v", ErrFormatNotSupported, cfg.BufferTime)
	}
	b.logger.Debug("opening stream", zap.Stringer("format", cfg.Format), zap.Int("bufferBytes", size))
	return &nullStream{
		src:    src,
		buf:    make([]byte, size),
		period: cfg.BufferTime,
	}, nil
}

func (b *Null) Close() error { return nil }

type nullStream struct {
	src    io.Reader
	buf    []byte
	period time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func (s *nullStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
	return nil
}

func (s *nullStream) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.src.Read(s.buf)
		}
	}
}

func (s *nullStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
	return nil
}

func (s *nullStream) Close() error {
	return s.Stop()
}

func (s *nullStream) SetVolume(v float64) {}
