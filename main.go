package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mrdg/buzzer/audio"
	"github.com/mrdg/buzzer/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    = loadConfig()
	logger = zap.NewNop()
	output string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "buzzer",
	Short: "A single voice tone synthesizer",
	Long: `buzzer plays one tone at a time on an audio output device.

Examples:
  buzzer                       start the interactive prompt
  buzzer serve --addr :8080    control the buzzer over HTTP
  buzzer render -o tune.wav C4:200ms/50ms E4:200ms G4:400ms`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runREPL,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive prompt",
	Args:  cobra.NoArgs,
	RunE:  runREPL,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var renderCmd = &cobra.Command{
	Use:   "render NOTE:HOLD[/REST]...",
	Short: "Render notes to a WAV file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRender,
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List output devices supporting the configured format",
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List playable notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(audio.DefaultNotes.Names(), " "))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "audio backend ("+strings.Join(audio.Backends, ", ")+") [BUZZER_BACKEND]")
	flags.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "sample rate in Hz [BUZZER_SAMPLE_RATE]")
	flags.DurationVar(&cfg.BufferTime, "buffer-time", cfg.BufferTime, "output buffer time [BUZZER_BUFFER_TIME]")
	flags.StringVar(&cfg.Device, "device", cfg.Device, "output device name, empty for the default [BUZZER_DEVICE]")
	flags.IntVar(&cfg.Volume, "volume", cfg.Volume, "volume 0-100 [BUZZER_VOLUME]")
	flags.IntVar(&cfg.Octave, "octave", cfg.Octave, "octave [BUZZER_OCTAVE]")
	flags.StringVar(&cfg.Wave, "wave", cfg.Wave, "waveform (sine, saw, tan) [BUZZER_WAVE]")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level [BUZZER_LOG_LEVEL]")

	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address [BUZZER_ADDR]")
	renderCmd.Flags().StringVarP(&output, "output", "o", "", "output .wav file (required)")
	_ = renderCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(replCmd, serveCmd, renderCmd, devicesCmd, notesCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	l, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func runREPL(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	session, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()
	if err := session.Start(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), session.Err())
	}
	return repl(&env{session: session, out: cmd.OutOrStdout()})
}

func runServe(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	session, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()
	if err := session.Start(); err != nil {
		logger.Error("starting output failed", zap.String("error", session.Err()), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(session, logger).ListenAndServe(ctx, cfg.Addr)
}

func runRender(cmd *cobra.Command, args []string) error {
	cues := make([]audio.Cue, 0, len(args))
	for _, arg := range args {
		c, err := audio.ParseCue(arg)
		if err != nil {
			return err
		}
		cues = append(cues, c)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	opts := audio.RenderOptions{
		SampleRate: cfg.SampleRate,
		Wave:       cfg.waveform(),
		Octave:     cfg.Octave,
		Logger:     logger,
	}
	if err := audio.Render(f, opts, cues); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d notes to %s\n", len(cues), output)
	return nil
}

func runDevices(cmd *cobra.Command, args []string) error {
	backend, err := audio.NewBackend(cfg.Backend, logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	devices, err := backend.Devices(audio.Mono16(cfg.SampleRate))
	if err != nil {
		return err
	}
	renderList(cmd.OutOrStdout(), devices, cfg.Device)
	return nil
}
