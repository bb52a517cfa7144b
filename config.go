package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mrdg/buzzer/audio"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Backend    string
	SampleRate int
	BufferTime time.Duration
	Device     string
	Volume     int
	Octave     int
	Wave       string
	LogLevel   string
	Addr       string
}

// loadConfig returns the defaults, overridden by BUZZER_* environment
// variables. Command line flags are applied on top of this.
func loadConfig() Config {
	return Config{
		Backend:    getEnv("BUZZER_BACKEND", "portaudio"),
		SampleRate: getEnvInt("BUZZER_SAMPLE_RATE", audio.DefaultSampleRate),
		BufferTime: getEnvDuration("BUZZER_BUFFER_TIME", audio.DefaultBufferTime),
		Device:     getEnv("BUZZER_DEVICE", ""),
		Volume:     getEnvInt("BUZZER_VOLUME", audio.DefaultVolume),
		Octave:     getEnvInt("BUZZER_OCTAVE", audio.ReferenceOctave),
		Wave:       getEnv("BUZZER_WAVE", audio.WaveSaw.String()),
		LogLevel:   getEnv("BUZZER_LOG_LEVEL", "warn"),
		Addr:       getEnv("BUZZER_ADDR", ":8080"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("300ms") or plain milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	return fallback
}

func (c Config) Validate() error {
	known := false
	for _, b := range audio.Backends {
		if c.Backend == b {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown backend %q, want one of %v", c.Backend, audio.Backends)
	}
	if err := audio.Mono16(c.SampleRate).Validate(); err != nil {
		return err
	}
	if c.BufferTime < 10*time.Millisecond || c.BufferTime > 10*time.Second {
		return fmt.Errorf("buffer time out of range 10ms - 10s: %v", c.BufferTime)
	}
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume out of range 0 - 100: %v", c.Volume)
	}
	if _, err := audio.ParseWaveform(c.Wave); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c Config) waveform() audio.Waveform {
	w, _ := audio.ParseWaveform(c.Wave)
	return w
}

// newLogger builds a console logger on stderr so log lines stay out of the
// REPL's output.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// openSession creates the configured backend and a session on it.
func openSession(c Config, logger *zap.Logger) (*audio.Session, error) {
	backend, err := audio.NewBackend(c.Backend, logger)
	if err != nil {
		return nil, err
	}
	s, err := audio.NewSession(audio.SessionConfig{
		Backend:    backend,
		SampleRate: c.SampleRate,
		BufferTime: c.BufferTime,
		Device:     c.Device,
		Wave:       c.waveform(),
		Logger:     logger,
	})
	if err != nil {
		backend.Close()
		return nil, err
	}
	// zero is a valid volume and octave, so they are not left to the defaults
	if err := s.SetVolume(c.Volume); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.SetOctave(c.Octave); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
