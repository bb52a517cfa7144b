package audio

import "math"

// ReferenceOctave is the octave the note table frequencies belong to.
const ReferenceOctave = 3

type noteFreq struct {
	name string
	freq float64
}

// NoteTable maps note names to frequencies. It is read-only after construction.
type NoteTable struct {
	notes []noteFreq
	index map[string]float64
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// DefaultNotes is the chromatic octave from C4 to C5.
var DefaultNotes = newNoteTable(60, 72)

func newNoteTable(from, to int) *NoteTable {
	t := &NoteTable{index: make(map[string]float64)}
	for pitch := from; pitch <= to; pitch++ {
		n := noteFreq{name: noteName(pitch), freq: midiToFreq(pitch)}
		t.notes = append(t.notes, n)
		t.index[n.name] = n.freq
	}
	return t
}

func (t *NoteTable) Lookup(name string) (float64, bool) {
	f, ok := t.index[name]
	return f, ok
}

// Names returns the note names ordered by pitch.
func (t *NoteTable) Names() []string {
	names := make([]string, len(t.notes))
	for i, n := range t.notes {
		names[i] = n.name
	}
	return names
}

func noteName(pitch int) string {
	octave := pitch/12 - 1
	return noteNames[pitch%12] + string(rune('0'+octave))
}

func midiToFreq(note int) float64 {
	return math.Pow(2, float64(note-69)/12.0) * 440
}
