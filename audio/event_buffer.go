package audio

import (
	"sync/atomic"
)

type eventKind int

const (
	eventNoteOn eventKind = iota
	eventNoteOff
	eventWave
	eventOctave
)

// event is a control change waiting to be applied on the audio side.
type event struct {
	kind   eventKind
	freq   float64
	wave   Waveform
	octave int
}

// eventBuffer is a lock-free spsc queue.
type eventBuffer struct {
	events      []event
	read, write atomic.Uint32
}

func newEventBuffer(size int) *eventBuffer {
	if size <= 0 || size&(size-1) != 0 {
		panic("event buffer size must be a power of 2")
	}
	return &eventBuffer{
		events: make([]event, size),
	}
}

// push appends ev and reports whether there was room for it.
func (b *eventBuffer) push(ev event) bool {
	write := b.write.Load()
	if write-b.read.Load() == uint32(len(b.events)) {
		return false
	}
	b.events[write%uint32(len(b.events))] = ev
	b.write.Store(write + 1)
	return true
}

// iter calls f for every pending event, oldest first, and consumes them.
func (b *eventBuffer) iter(f func(event)) {
	read := b.read.Load()
	write := b.write.Load()
	if read == write {
		return
	}
	for read != write {
		f(b.events[read%uint32(len(b.events))])
		read++
	}
	b.read.Store(read)
}

func (b *eventBuffer) len() int {
	return int(b.write.Load() - b.read.Load())
}
