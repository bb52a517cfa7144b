package audio

import (
	"context"
	"runtime"
	"testing"
)

func TestEventBufferFull(t *testing.T) {
	buf := newEventBuffer(4)
	for n := 0; n < 4; n++ {
		if !buf.push(event{octave: n}) {
			t.Fatalf("push %d: buffer reported full", n)
		}
	}
	if buf.push(event{octave: 4}) {
		t.Errorf("expected push into a full buffer to fail")
	}
	if want, got := 4, buf.len(); want != got {
		t.Errorf("wrong length: want %v, got %v", want, got)
	}

	var events []event
	buf.iter(func(ev event) {
		events = append(events, ev)
	})
	if want, got := 4, len(events); want != got {
		t.Errorf("expected %v events, got %v", want, got)
	}
	if want, got := 0, buf.len(); want != got {
		t.Errorf("expected empty buffer after iter, got %v", got)
	}
	if !buf.push(event{octave: 5}) {
		t.Errorf("expected room after draining")
	}
}

func TestEventBufferSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for a size that is not a power of 2")
		}
	}()
	newEventBuffer(3)
}

func TestEventBuffer(t *testing.T) {
	buf := newEventBuffer(8)

	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	var events []event
	go func() {
		for {
			select {
			case <-ctx.Done():
				buf.iter(func(ev event) {
					events = append(events, ev)
				})
				done <- struct{}{}
				return
			default:
				buf.iter(func(ev event) {
					events = append(events, ev)
				})
				runtime.Gosched()
			}
		}
	}()

	const numEvents = 10_000
	for n := 0; n < numEvents; n++ {
		for !buf.push(event{octave: n}) {
			runtime.Gosched()
		}
	}

	cancel()
	<-done

	if len(events) != numEvents {
		t.Errorf("wrong number of events: want %v, got %v", numEvents, len(events))
	}

	prev := -1
	for _, ev := range events {
		if want, got := prev+1, ev.octave; want != got {
			t.Errorf("discontinuous event order: want: %v, got %v", want, ev.octave)
		}
		prev++
	}
}
