package audio

import (
	"reflect"
	"testing"
	"time"
)

type testEvent struct {
	offset int
	note   string
}

type testPlayer struct {
	events []testEvent
}

func (p *testPlayer) PlayNote(offset int, note string) {
	p.events = append(p.events, testEvent{offset: offset, note: note})
}

func (p *testPlayer) StopNote(offset int) {
	p.events = append(p.events, testEvent{offset: offset})
}

func (p *testPlayer) flush() {
	p.events = nil
}

func TestSequencer(t *testing.T) {
	const bufferSize = 1000
	player := &testPlayer{}

	seq := NewSequencer(Mono16(10000), []Cue{
		{Note: "A4", Hold: 50 * time.Millisecond, Rest: 100 * time.Millisecond},
		{Note: "C5", Hold: 120 * time.Millisecond},
	})
	if want, got := 2700, seq.Len(); want != got {
		t.Fatalf("want length %v, got %v", want, got)
	}

	seq.Tick(bufferSize, player)
	if want, got := []testEvent{
		{offset: 0, note: "A4"},
		{offset: 500},
	}, player.events; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong events:\nwant: %+v\ngot:  %+v", want, got)
	}

	player.flush()
	seq.Tick(bufferSize, player)
	if want, got := []testEvent{
		{offset: 500, note: "C5"},
	}, player.events; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong events:\nwant: %+v\ngot:  %+v", want, got)
	}

	player.flush()
	seq.Tick(bufferSize, player)
	if want, got := []testEvent{
		{offset: 700},
	}, player.events; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong events:\nwant: %+v\ngot:  %+v", want, got)
	}

	player.flush()
	seq.Tick(bufferSize, player)
	if want, got := 0, len(player.events); want != got {
		t.Errorf("wanted zero events, got: %v", player.events)
	}
}

func TestSequencerEventOnBoundary(t *testing.T) {
	player := &testPlayer{}
	seq := NewSequencer(Mono16(1000), []Cue{
		{Note: "C4", Hold: 10 * time.Millisecond},
	})
	seq.Tick(10, player)
	if want, got := []testEvent{{offset: 0, note: "C4"}}, player.events; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong events:\nwant: %+v\ngot:  %+v", want, got)
	}
	player.flush()
	seq.Tick(10, player)
	if want, got := []testEvent{{offset: 0}}, player.events; !reflect.DeepEqual(want, got) {
		t.Errorf("wrong events:\nwant: %+v\ngot:  %+v", want, got)
	}
}
