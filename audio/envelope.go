package audio

// EnvelopeState is the phase of the amplitude envelope.
type EnvelopeState int

const (
	StateSilent EnvelopeState = iota
	StateAttack
	StateSustain
	StateRelease
)

func (s EnvelopeState) String() string {
	switch s {
	case StateAttack:
		return "attack"
	case StateSustain:
		return "sustain"
	case StateRelease:
		return "release"
	default:
		return "silent"
	}
}

func (s EnvelopeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// envelope is a linear attack/release ramp with a sustain level of 1.
type envelope struct {
	rampSamples int
	step        float64

	val       float64
	remaining int
	state     EnvelopeState
}

func newEnvelope(rampSamples int) envelope {
	return envelope{
		rampSamples: rampSamples,
		step:        1.0 / float64(rampSamples),
	}
}

// value advances the envelope by one sample and returns the new level.
func (e *envelope) value() float64 {
	switch e.state {
	case StateAttack:
		if e.remaining > 0 {
			e.val += e.step
			e.remaining--
		}
		if e.remaining <= 0 {
			e.val = 1.0
			e.state = StateSustain
		} else if e.val > 1 {
			e.val = 1.0
		}
	case StateRelease:
		if e.remaining > 0 {
			e.val -= e.step
			e.remaining--
		}
		if e.remaining <= 0 || e.val < 0 {
			e.val = 0
		}
		if e.remaining <= 0 {
			e.state = StateSilent
		}
	}
	return e.val
}

func (e *envelope) startAttack() {
	e.val = 0
	e.remaining = e.rampSamples
	e.state = StateAttack
}

// startRelease begins the release ramp. It does nothing unless a note is
// attacking or sustaining.
func (e *envelope) startRelease() {
	if e.state != StateAttack && e.state != StateSustain {
		return
	}
	e.remaining = e.rampSamples
	e.state = StateRelease
}
