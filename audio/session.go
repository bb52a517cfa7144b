package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Session property keys.
const (
	PropVolume     = "volume"
	PropOctave     = "octave"
	PropWave       = "wave"
	PropBufferTime = "buffer-time"
	PropSampleRate = "sample-rate"
	PropDevice     = "device"
)

const (
	DefaultSampleRate = 48000
	DefaultBufferTime = 256 * time.Millisecond
	DefaultVolume     = 100
)

// User visible error messages.
const (
	ErrMsgFormat   = "Audio format not supported, The selected audio device does not support the synth's audio format. Please select another device."
	ErrMsgStalled  = "Audio output is stalled right now. Sound cannot be produced. Please increase the buffer time to avoid this problem."
	ErrMsgUnderrun = "Underrun Error, Audio buffer underrun errors have been detected. Please increase the buffer time to avoid this problem."
)

// SessionConfig holds the initial settings of a Session. Zero values select
// the defaults; volume and octave can be set to zero after construction.
type SessionConfig struct {
	Backend    Backend
	SampleRate int
	BufferTime time.Duration
	// Device selects an output device by name. Empty means the backend default.
	Device string
	Volume int
	Octave int
	Wave   Waveform
	Logger *zap.Logger
}

// Session owns the output device for an Engine. It rebuilds the engine and
// restarts the stream when the format, device or buffer time changes and
// watches the stream for stalls.
type Session struct {
	backend Backend
	logger  *zap.Logger
	props   *Props

	mu      sync.Mutex
	devices []string
	engine  *Engine
	stream  Stream
	active  bool
	cancel  context.CancelFunc
	done    chan struct{}

	// watching is set once the warm-up after a start has passed.
	watching atomic.Bool
	errMsg   atomic.Value
}

type SessionStatus struct {
	Running    bool    `json:"running"`
	Watching   bool    `json:"watching"`
	Backend    string  `json:"backend"`
	Device     string  `json:"device"`
	Format     string  `json:"format"`
	BufferTime string  `json:"bufferTime"`
	Volume     int     `json:"volume"`
	Error      string  `json:"error,omitempty"`
	Engine     *Status `json:"engine,omitempty"`
}

func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Backend == nil {
		return nil, errors.New("session needs a backend")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.BufferTime == 0 {
		cfg.BufferTime = DefaultBufferTime
	}
	if cfg.Volume == 0 {
		cfg.Volume = DefaultVolume
	}
	if cfg.Octave == 0 {
		cfg.Octave = ReferenceOctave
	}

	s := &Session{
		backend: cfg.Backend,
		logger:  cfg.Logger.Named("session"),
		props:   NewProps(),
	}
	s.errMsg.Store("")

	register := []struct {
		key  string
		set  setter
		init interface{}
	}{
		{PropVolume, setInt(0, 100), cfg.Volume},
		{PropOctave, setInt(-8, 8), cfg.Octave},
		{PropWave, setWaveform, cfg.Wave},
		{PropBufferTime, setInt(10, 10000), int(cfg.BufferTime / time.Millisecond)},
		{PropSampleRate, setInt(1000, 384000), cfg.SampleRate},
		{PropDevice, setString, ""},
	}
	for _, r := range register {
		if _, err := s.props.Register(r.key, r.set, r.init); err != nil {
			return nil, err
		}
	}

	s.scan()
	if cfg.Device != "" {
		if !s.hasDevice(cfg.Device) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, cfg.Device)
		}
		s.props.Set(PropDevice, cfg.Device)
	}
	return s, nil
}

func (s *Session) intProp(key string) int {
	v, _ := s.props.Get(key)
	return v.(int)
}

func (s *Session) format() Format {
	return Mono16(s.intProp(PropSampleRate))
}

func (s *Session) bufferTime() time.Duration {
	return time.Duration(s.intProp(PropBufferTime)) * time.Millisecond
}

func (s *Session) device() string {
	v, _ := s.props.Get(PropDevice)
	return v.(string)
}

func (s *Session) wave() Waveform {
	v, _ := s.props.Get(PropWave)
	return v.(Waveform)
}

// scan refreshes the device list for the current format. The selected device
// falls back to the backend default when it is no longer listed.
func (s *Session) scan() {
	devices, err := s.backend.Devices(s.format())
	if err != nil {
		s.logger.Warn("listing devices failed", zap.Error(err))
	}
	s.devices = devices
	if !s.hasDevice(s.device()) {
		def := ""
		if len(devices) > 0 {
			def = devices[0]
		}
		s.props.Set(PropDevice, def)
	}
}

func (s *Session) hasDevice(name string) bool {
	for _, d := range s.devices {
		if d == name {
			return true
		}
	}
	return false
}

// Start (re)starts output on the selected device with a fresh engine.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restart()
}

func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
}

// Close stops output and releases the backend.
func (s *Session) Close() error {
	s.Stop()
	return s.backend.Close()
}

func (s *Session) restart() error {
	s.stop()
	s.ClearError()

	f := s.format()
	bufferTime := s.bufferTime()
	engine, err := NewEngine(f, s.logger)
	if err != nil {
		s.setError(ErrMsgFormat)
		sessionStartsTotal.WithLabelValues("error").Inc()
		return err
	}
	engine.SetWaveType(s.wave())
	engine.SetOctave(s.intProp(PropOctave))
	s.engine = engine

	stream, err := s.backend.Open(StreamConfig{
		Device:     s.device(),
		Format:     f,
		BufferTime: bufferTime,
		OnUnderrun: s.onUnderrun,
	}, engine)
	if err != nil {
		s.logger.Error("opening stream failed", zap.String("device", s.device()), zap.Error(err))
		s.setError(ErrMsgFormat)
		sessionStartsTotal.WithLabelValues("error").Inc()
		return err
	}
	engine.Open()
	stream.SetVolume(linearVolume(s.intProp(PropVolume)))
	if err := stream.Start(); err != nil {
		engine.Close()
		stream.Close()
		s.setError(ErrMsgFormat)
		sessionStartsTotal.WithLabelValues("error").Inc()
		return err
	}
	s.stream = stream
	s.active = true
	sessionStartsTotal.WithLabelValues("ok").Inc()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.watch(ctx, engine, bufferTime, s.done)

	s.logger.Info("started",
		zap.String("device", s.device()),
		zap.Stringer("format", f),
		zap.Duration("bufferTime", bufferTime))
	return nil
}

func (s *Session) stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel, s.done = nil, nil
	}
	s.watching.Store(false)
	sessionRunning.Set(0)
	if s.stream != nil {
		if err := s.stream.Stop(); err != nil {
			s.logger.Warn("stopping stream failed", zap.Error(err))
		}
		if err := s.stream.Close(); err != nil {
			s.logger.Warn("closing stream failed", zap.Error(err))
		}
		s.stream = nil
	}
	if s.engine != nil {
		s.engine.Close()
	}
	if s.active {
		s.logger.Info("stopped")
	}
	s.active = false
}

// watch arms the stall detector after two buffer times and then checks every
// four buffer times that the backend pulled from the engine since the last
// check. A stall is reported once and ends the watch.
func (s *Session) watch(ctx context.Context, e *Engine, bufferTime time.Duration, done chan struct{}) {
	defer close(done)

	warmup := time.NewTimer(2 * bufferTime)
	defer warmup.Stop()
	select {
	case <-ctx.Done():
		return
	case <-warmup.C:
	}
	s.watching.Store(true)
	sessionRunning.Set(1)

	ticker := time.NewTicker(4 * bufferTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := e.LastPullSize()
			lastPullBytes.Set(float64(n))
			if n == 0 {
				s.logger.Warn("output stalled", zap.Duration("bufferTime", bufferTime))
				s.setError(ErrMsgStalled)
				stallsTotal.Inc()
				s.watching.Store(false)
				sessionRunning.Set(0)
				return
			}
			e.ResetLastPullSize()
		}
	}
}

func (s *Session) onUnderrun() {
	if s.watching.Load() {
		s.setError(ErrMsgUnderrun)
		underrunsTotal.Inc()
	}
}

func (s *Session) setError(msg string) { s.errMsg.Store(msg) }

// Err returns the current user visible error or an empty string.
func (s *Session) Err() string { return s.errMsg.Load().(string) }

func (s *Session) ClearError() { s.errMsg.Store("") }

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Set validates and applies a session property. Changing the device, buffer
// time or sample rate restarts a running session.
func (s *Session) Set(key string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.props.Get(key)
	if err != nil {
		return err
	}
	if key == PropDevice {
		if name, ok := v.(string); ok && !s.hasDevice(name) {
			return fmt.Errorf("%w: %s", ErrUnknownDevice, name)
		}
	}
	if err := s.props.Set(key, v); err != nil {
		return err
	}
	val, _ := s.props.Get(key)

	switch key {
	case PropVolume:
		if s.stream != nil {
			s.stream.SetVolume(linearVolume(val.(int)))
		}
	case PropOctave:
		if s.engine != nil {
			s.engine.SetOctave(val.(int))
		}
	case PropWave:
		if s.engine != nil {
			s.engine.SetWaveType(val.(Waveform))
		}
	case PropSampleRate:
		if val != old {
			s.scan()
			if s.active {
				return s.restart()
			}
		}
	case PropBufferTime, PropDevice:
		if val != old && s.active {
			return s.restart()
		}
	}
	return nil
}

func (s *Session) Get(key string) (interface{}, error) {
	return s.props.Get(key)
}

// Keys returns the property names accepted by Set.
func (s *Session) Keys() []string {
	return s.props.Keys()
}

func (s *Session) SetVolume(v int) error { return s.Set(PropVolume, v) }

func (s *Session) SetOctave(n int) error { return s.Set(PropOctave, n) }

func (s *Session) SetSampleRate(n int) error { return s.Set(PropSampleRate, n) }

func (s *Session) SetBufferTime(d time.Duration) error {
	return s.Set(PropBufferTime, int(d/time.Millisecond))
}

// SetWaveType selects a waveform by name. Unknown names are ignored.
func (s *Session) SetWaveType(name string) bool {
	return s.Set(PropWave, name) == nil
}

// SetDevice selects an output device by name. It returns false if the device
// is not listed for the current format.
func (s *Session) SetDevice(name string) bool {
	return s.Set(PropDevice, name) == nil
}

func (s *Session) Devices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.devices...)
}

// Rescan refreshes the device list.
func (s *Session) Rescan() []string {
	s.mu.Lock()
	s.scan()
	s.mu.Unlock()
	return s.Devices()
}

func (s *Session) Notes() []string {
	return DefaultNotes.Names()
}

// NoteOn starts the named note. It reports whether the note is known.
func (s *Session) NoteOn(name string) bool {
	if _, ok := DefaultNotes.Lookup(name); !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	notesTotal.WithLabelValues(s.wave().String()).Inc()
	if s.engine != nil {
		s.engine.NoteOn(name)
	}
	return true
}

func (s *Session) NoteOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		s.engine.NoteOff()
	}
}

func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := SessionStatus{
		Running:    s.active,
		Watching:   s.watching.Load(),
		Backend:    s.backend.Name(),
		Device:     s.device(),
		Format:     s.format().String(),
		BufferTime: s.bufferTime().String(),
		Volume:     s.intProp(PropVolume),
		Error:      s.Err(),
	}
	if s.engine != nil {
		es := s.engine.Status()
		st.Engine = &es
	}
	return st
}
