package audio

import "time"

// Player receives the events of a Sequencer. offset is the sample position
// of the event relative to the start of the current tick.
type Player interface {
	PlayNote(offset int, note string)
	StopNote(offset int)
}

// Sequencer schedules the notes of a list of cues by sample position.
type Sequencer struct {
	events []cueEvent
	next   int
	pos    int
	length int
}

type cueEvent struct {
	pos  int    // position of the event measured in samples from the start
	note string // empty for note off
}

func NewSequencer(f Format, cues []Cue) *Sequencer {
	frames := func(d time.Duration) int {
		return f.BytesForDuration(d) / f.BytesPerFrame()
	}
	s := &Sequencer{}
	for _, c := range cues {
		s.events = append(s.events, cueEvent{pos: s.length, note: c.Note})
		s.length += frames(c.Hold)
		s.events = append(s.events, cueEvent{pos: s.length})
		s.length += frames(c.Rest)
	}
	return s
}

// Len returns the length of the tune in samples.
func (s *Sequencer) Len() int { return s.length }

// Tick passes the events of the next numSamples samples to p.
func (s *Sequencer) Tick(numSamples int, p Player) {
	end := s.pos + numSamples
	for ; s.next < len(s.events) && s.events[s.next].pos < end; s.next++ {
		ev := s.events[s.next]
		offset := ev.pos - s.pos
		if ev.note == "" {
			p.StopNote(offset)
		} else {
			p.PlayNote(offset, ev.note)
		}
	}
	s.pos = end
}
