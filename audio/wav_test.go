package audio

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/youpy/go-wav"
	"go.uber.org/zap/zaptest"
)

func TestParseCue(t *testing.T) {
	c, err := ParseCue("A4:200ms/50ms")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := (Cue{Note: "A4", Hold: 200 * time.Millisecond, Rest: 50 * time.Millisecond}), c; want != got {
		t.Errorf("want %+v, got %+v", want, got)
	}
	c, err = ParseCue("C#4:1s")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := time.Duration(0), c.Rest; want != got {
		t.Errorf("want rest %v, got %v", want, got)
	}

	for _, bad := range []string{"A4", "H4:1s", "A4:x", "A4:1s/y", "A4:0s", "A4:1s/-1s"} {
		if _, err := ParseCue(bad); err == nil {
			t.Errorf("ParseCue(%q) should fail", bad)
		}
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	opts := RenderOptions{SampleRate: 48000, Wave: WaveSine, Octave: 3, Logger: zaptest.NewLogger(t)}
	cues := []Cue{
		{Note: "A4", Hold: 100 * time.Millisecond, Rest: 50 * time.Millisecond},
		{Note: "C5", Hold: 100 * time.Millisecond},
	}
	if err := Render(&buf, opts, cues); err != nil {
		t.Fatal(err)
	}

	r := wav.NewReader(bytes.NewReader(buf.Bytes()))
	format, err := r.Format()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := uint16(1), format.NumChannels; want != got {
		t.Errorf("want %v channels, got %v", want, got)
	}
	if want, got := uint32(48000), format.SampleRate; want != got {
		t.Errorf("want sample rate %v, got %v", want, got)
	}
	if want, got := uint16(16), format.BitsPerSample; want != got {
		t.Errorf("want %v bits, got %v", want, got)
	}

	var samples []int
	for {
		batch, err := r.ReadSamples()
		for _, s := range batch {
			samples = append(samples, r.IntValue(s, 0))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}

	if want, got := 4800+2400+4800+960, len(samples); want != got {
		t.Fatalf("want %v samples, got %v", want, got)
	}
	if want, got := 0, samples[0]; want != got {
		t.Errorf("first sample should be silent, got %v", got)
	}
	peak := 0
	for _, s := range samples[:4800] {
		if s > peak {
			peak = s
		}
	}
	if peak < 32700 {
		t.Errorf("want peak near full scale, got %v", peak)
	}
	// The rest after the first note ends in silence once the release is done.
	for i := 4800 + 960; i < 4800+2400; i++ {
		if samples[i] != 0 {
			t.Fatalf("sample %v should be silent, got %v", i, samples[i])
		}
	}
	if want, got := 0, samples[len(samples)-1]; want != got {
		t.Errorf("last sample should be silent, got %v", got)
	}
}

func TestRenderInvalidRate(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, RenderOptions{SampleRate: 10}, nil); err == nil {
		t.Error("sample rate 10 should fail")
	}
	if want, got := 0, buf.Len(); want != got {
		t.Errorf("want no output, got %v bytes", got)
	}
}
