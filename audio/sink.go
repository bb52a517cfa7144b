//go:build !headless

package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// PortAudio plays through the portaudio library using a callback stream.
type PortAudio struct {
	logger *zap.Logger
}

func NewPortAudio(logger *zap.Logger) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortAudio{logger: logger}, nil
}

func (b *PortAudio) Name() string { return "portaudio" }

func (b *PortAudio) Devices(f Format) ([]string, error) {
	def, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, err
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	names := []string{def.Name}
	for _, d := range devices {
		if d.Name == def.Name || d.MaxOutputChannels < f.Channels {
			continue
		}
		if err := portaudio.IsFormatSupported(streamParameters(d, f, 0), func([]int16) {}); err != nil {
			b.logger.Debug("skipping device", zap.String("device", d.Name), zap.Error(err))
			continue
		}
		names = append(names, d.Name)
	}
	return names, nil
}

func (b *PortAudio) Open(cfg StreamConfig, src io.Reader) (Stream, error) {
	if cfg.Format.BytesPerSample != 2 {
		return nil, fmt.Errorf("%w: portaudio streams are 16 bit", ErrFormatNotSupported)
	}
	dev, err := b.lookup(cfg.Device)
	if err != nil {
		return nil, err
	}
	frames := cfg.Format.BytesForDuration(cfg.BufferTime) / cfg.Format.BytesPerFrame()
	params := streamParameters(dev, cfg.Format, frames)
	if err := portaudio.IsFormatSupported(params, func([]int16) {}); err != nil && dev.Name != "default" {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormatNotSupported, dev.Name, err)
	}

	s := &paStream{
		cfg: cfg,
		src: src,
		buf: make([]byte, frames*cfg.Format.BytesPerFrame()),
	}
	s.gain.Store(math.Float64bits(1))
	stream, err := portaudio.OpenStream(params, s.process)
	if err != nil {
		return nil, err
	}
	s.stream = stream
	b.logger.Info("opened stream", zap.String("device", dev.Name), zap.Stringer("format", cfg.Format), zap.Int("frames", frames))
	return s, nil
}

func (b *PortAudio) lookup(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		return portaudio.DefaultOutputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.Name == name && d.MaxOutputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, name)
}

func (b *PortAudio) Close() error {
	return portaudio.Terminate()
}

func streamParameters(d *portaudio.DeviceInfo, f Format, frames int) portaudio.StreamParameters {
	p := portaudio.HighLatencyParameters(nil, d)
	p.Output.Channels = f.Channels
	p.SampleRate = float64(f.SampleRate)
	if frames > 0 {
		p.FramesPerBuffer = frames
	}
	return p
}

type paStream struct {
	cfg    StreamConfig
	src    io.Reader
	buf    []byte
	gain   atomic.Uint64
	stream *portaudio.Stream
}

func (s *paStream) process(out []int16, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	if flags&portaudio.OutputUnderflow != 0 {
		s.cfg.underrun()
	}
	n := len(out) * 2
	if n > len(s.buf) {
		// portaudio may hand out a larger buffer than requested on some hosts
		s.buf = make([]byte, n)
	}
	buf := s.buf[:n]
	s.src.Read(buf)
	gain := math.Float64frombits(s.gain.Load())
	for i := range out {
		sample := int16(binary.LittleEndian.Uint16(buf[2*i:]))
		out[i] = int16(float64(sample) * gain)
	}
}

func (s *paStream) Start() error { return s.stream.Start() }
func (s *paStream) Stop() error  { return s.stream.Stop() }
func (s *paStream) Close() error { return s.stream.Close() }

func (s *paStream) SetVolume(v float64) {
	s.gain.Store(math.Float64bits(clampUnit(v)))
}
