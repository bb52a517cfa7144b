package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrReadOnly is returned by Engine.Write.
var ErrReadOnly = errors.New("engine is output only")

const controlQueueSize = 64

// Engine is a single-voice tone generator. It implements io.Reader: every Read
// fills the whole buffer with mono PCM samples and never blocks, so it can be
// handed to an audio callback as its data source.
//
// Read must be called from one goroutine at a time. The control methods may
// be called from any goroutine; while the engine is open they are queued and
// applied at the start of the next Read.
type Engine struct {
	format Format
	notes  *NoteTable
	logger *zap.Logger

	mu     sync.Mutex // serializes control calls, Open and Close
	open   atomic.Bool
	events *eventBuffer

	// pending holds the latest control state once the queue overflowed. It is
	// applied after the queue is drained and, while set, takes all control
	// calls so their order is kept.
	pending atomic.Pointer[controlState]
	// last requested wave and octave, guarded by mu
	ctlWave   Waveform
	ctlOctave int

	// owned by the reading goroutine
	wave   Waveform
	octave int
	osc    osc
	env    envelope

	lastPull atomic.Int64
	status   publishedStatus
}

// Status is a snapshot of the engine published after every Read.
type Status struct {
	State  EnvelopeState `json:"state"`
	Level  float64       `json:"level"`
	Phase  float64       `json:"phase"`
	Wave   Waveform      `json:"wave"`
	Octave int           `json:"octave"`
}

type publishedStatus struct {
	state  atomic.Int32
	level  atomic.Uint64
	phase  atomic.Uint64
	wave   atomic.Int32
	octave atomic.Int32
}

// NewEngine returns an engine producing samples in format f.
func NewEngine(f Format, logger *zap.Logger) (*Engine, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		format: f,
		notes:  DefaultNotes,
		logger: logger,
		events: newEventBuffer(controlQueueSize),
		wave:   WaveSaw,
		octave: ReferenceOctave,
		env:    newEnvelope(f.rampSamples()),
	}
	e.ctlWave, e.ctlOctave = e.wave, e.octave
	e.publish()
	return e, nil
}

func (e *Engine) Format() Format { return e.format }

// RampSamples is the length of the attack and release ramps in samples.
func (e *Engine) RampSamples() int { return e.env.rampSamples }

// Open marks the start of the period in which Read may be called.
func (e *Engine) Open() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open.Store(true)
}

// Close ends the read period. Control calls made while the engine was open
// and not yet consumed by a Read are applied immediately.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open.Store(false)
	e.drain()
	e.publish()
}

func (e *Engine) IsOpen() bool { return e.open.Load() }

// NoteOn starts the named note, restarting the attack even if another note is
// sounding. It returns false, changing nothing, if the name is unknown.
func (e *Engine) NoteOn(name string) bool {
	freq, ok := e.notes.Lookup(name)
	if !ok {
		return false
	}
	e.send(event{kind: eventNoteOn, freq: freq})
	return true
}

// NoteOff starts the release ramp of the current note.
func (e *Engine) NoteOff() {
	e.send(event{kind: eventNoteOff})
}

// SetWaveType selects the waveform used from the next note on.
func (e *Engine) SetWaveType(w Waveform) {
	e.send(event{kind: eventWave, wave: w})
}

// SetOctave selects the octave used from the next note on.
func (e *Engine) SetOctave(octave int) {
	e.send(event{kind: eventOctave, octave: octave})
}

// Notes returns the playable note names ordered by pitch.
func (e *Engine) Notes() []string {
	return e.notes.Names()
}

// LastPullSize returns the byte count of the latest Read. It stays set until
// ResetLastPullSize is called.
func (e *Engine) LastPullSize() int {
	return int(e.lastPull.Load())
}

func (e *Engine) ResetLastPullSize() {
	e.lastPull.Store(0)
}

func (e *Engine) Status() Status {
	return Status{
		State:  EnvelopeState(e.status.state.Load()),
		Level:  math.Float64frombits(e.status.level.Load()),
		Phase:  math.Float64frombits(e.status.phase.Load()),
		Wave:   Waveform(e.status.wave.Load()),
		Octave: int(e.status.octave.Load()),
	}
}

// controlState is the control state requested by calls that did not fit in
// the queue. note is the last note event among them, with the wave and octave
// that were current when it was sent.
type controlState struct {
	note       *event
	noteWave   Waveform
	noteOctave int
	wave       Waveform
	octave     int
}

func (e *Engine) send(ev event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch ev.kind {
	case eventWave:
		e.ctlWave = ev.wave
	case eventOctave:
		e.ctlOctave = ev.octave
	}
	if !e.open.Load() {
		e.apply(ev)
		e.publish()
		return
	}
	for {
		prev := e.pending.Load()
		if prev == nil && e.events.push(ev) {
			return
		}
		// The queue is full or already overflowed: fold ev into the pending
		// state. The swap fails only if Read consumed prev meanwhile.
		next := controlState{wave: e.ctlWave, octave: e.ctlOctave}
		if prev != nil {
			next.note, next.noteWave, next.noteOctave = prev.note, prev.noteWave, prev.noteOctave
		}
		if ev.kind == eventNoteOn || ev.kind == eventNoteOff {
			note := ev
			next.note, next.noteWave, next.noteOctave = &note, e.ctlWave, e.ctlOctave
		}
		if e.pending.CompareAndSwap(prev, &next) {
			if prev == nil {
				controlEventsCoalesced.Inc()
				e.logger.Warn("engine control queue full, coalescing control calls")
			}
			return
		}
	}
}

// drain applies the queued events and then any pending state.
func (e *Engine) drain() {
	e.events.iter(e.apply)
	p := e.pending.Swap(nil)
	if p == nil {
		return
	}
	if p.note != nil {
		e.wave, e.octave = p.noteWave, p.noteOctave
		e.apply(*p.note)
	}
	e.wave, e.octave = p.wave, p.octave
}

func (e *Engine) apply(ev event) {
	switch ev.kind {
	case eventNoteOn:
		e.osc.wave = e.wave
		e.osc.start(ev.freq, e.octave, e.format.SampleRate)
		e.env.startAttack()
	case eventNoteOff:
		e.env.startRelease()
	case eventWave:
		e.wave = ev.wave
	case eventOctave:
		e.octave = ev.octave
	}
}

// Read fills p with samples. It always returns len(p), nil.
func (e *Engine) Read(p []byte) (int, error) {
	e.drain()

	width := e.format.BytesPerSample
	for off := 0; off < len(p); off += width {
		end := off + width
		if end > len(p) {
			clear(p[off:])
			break
		}
		level := e.env.value()
		var sample int16
		if e.env.state != StateSilent {
			sample = quantize(e.osc.value() * level)
			e.osc.advance()
		}
		putSample(p[off:end], sample)
	}
	e.lastPull.Store(int64(len(p)))
	e.publish()
	return len(p), nil
}

// Write rejects all data.
func (e *Engine) Write(p []byte) (int, error) {
	return 0, ErrReadOnly
}

func (e *Engine) publish() {
	e.status.state.Store(int32(e.env.state))
	e.status.level.Store(math.Float64bits(e.env.val))
	e.status.phase.Store(math.Float64bits(e.osc.phase))
	e.status.wave.Store(int32(e.wave))
	e.status.octave.Store(int32(e.octave))
}

// putSample packs s into one sample slot: 8-bit slots take the high byte,
// wider slots take s little endian followed by zero padding.
func putSample(slot []byte, s int16) {
	if len(slot) == 1 {
		slot[0] = byte(int8(s >> 8))
		return
	}
	binary.LittleEndian.PutUint16(slot, uint16(s))
	clear(slot[2:])
}
