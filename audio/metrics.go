package audio

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	sessionRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "buzzer_session_running",
		Help: "Whether the output session is running and past its warm-up",
	})
	lastPullBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "buzzer_last_pull_bytes",
		Help: "Bytes pulled from the engine by the latest audio callback, sampled by the stall detector",
	})
)

// Counters
var (
	sessionStartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buzzer_session_starts_total",
		Help: "Output session starts by outcome",
	}, []string{"outcome"})
	stallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buzzer_stalls_total",
		Help: "Audio output stalls detected",
	})
	underrunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buzzer_underruns_total",
		Help: "Output underruns reported by the backend",
	})
	notesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buzzer_notes_total",
		Help: "Note-on requests by waveform",
	}, []string{"wave"})
	controlEventsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buzzer_control_queue_overflows_total",
		Help: "Times the engine control queue was full and control calls were coalesced",
	})
)
