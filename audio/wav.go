package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/youpy/go-wav"
	"go.uber.org/zap"
)

// Cue is one note of an offline render: the note sounds for Hold and is
// followed by Rest of release and silence.
type Cue struct {
	Note string
	Hold time.Duration
	Rest time.Duration
}

// ParseCue parses NOTE:HOLD[/REST], e.g. "A4:200ms/50ms".
func ParseCue(s string) (Cue, error) {
	note, timing, ok := strings.Cut(s, ":")
	if !ok {
		return Cue{}, fmt.Errorf("cue %q: expected NOTE:HOLD[/REST]", s)
	}
	if _, ok := DefaultNotes.Lookup(note); !ok {
		return Cue{}, fmt.Errorf("cue %q: unknown note %s", s, note)
	}
	hold, rest, _ := strings.Cut(timing, "/")
	c := Cue{Note: note}
	var err error
	if c.Hold, err = time.ParseDuration(hold); err != nil {
		return Cue{}, fmt.Errorf("cue %q: %w", s, err)
	}
	if rest != "" {
		if c.Rest, err = time.ParseDuration(rest); err != nil {
			return Cue{}, fmt.Errorf("cue %q: %w", s, err)
		}
	}
	if c.Hold <= 0 || c.Rest < 0 {
		return Cue{}, fmt.Errorf("cue %q: durations must be positive", s)
	}
	return c, nil
}

type RenderOptions struct {
	SampleRate int
	Wave       Waveform
	Octave     int
	Logger     *zap.Logger
}

const renderChunk = 1024

type chunkEvent struct {
	offset int
	note   string
}

// chunkEvents collects the sequencer events of one chunk.
type chunkEvents []chunkEvent

func (c *chunkEvents) PlayNote(offset int, note string) {
	*c = append(*c, chunkEvent{offset, note})
}

func (c *chunkEvents) StopNote(offset int) {
	*c = append(*c, chunkEvent{offset: offset})
}

// Render plays cues through a fresh engine and writes them to w as a 16-bit
// mono WAV file. A release tail is appended after the last cue.
func Render(w io.Writer, opts RenderOptions, cues []Cue) error {
	f := Mono16(opts.SampleRate)
	e, err := NewEngine(f, opts.Logger)
	if err != nil {
		return err
	}
	e.SetWaveType(opts.Wave)
	e.SetOctave(opts.Octave)

	seq := NewSequencer(f, cues)
	total := seq.Len() + e.RampSamples()

	out := wav.NewWriter(w, uint32(total), uint16(f.Channels), uint32(f.SampleRate), uint16(8*f.BytesPerSample))
	buf := make([]byte, renderChunk*f.BytesPerFrame())
	samples := make([]wav.Sample, renderChunk)
	write := func(n int) error {
		if n == 0 {
			return nil
		}
		e.Read(buf[:n*2])
		for i := 0; i < n; i++ {
			samples[i].Values[0] = int(int16(binary.LittleEndian.Uint16(buf[2*i:])))
		}
		return out.WriteSamples(samples[:n])
	}

	var events chunkEvents
	for done := 0; done < total; {
		n := min(total-done, renderChunk)
		events = events[:0]
		seq.Tick(n, &events)
		at := 0
		for _, ev := range events {
			if err := write(ev.offset - at); err != nil {
				return err
			}
			at = ev.offset
			if ev.note == "" {
				e.NoteOff()
			} else {
				e.NoteOn(ev.note)
			}
		}
		if err := write(n - at); err != nil {
			return err
		}
		done += n
	}
	return nil
}
