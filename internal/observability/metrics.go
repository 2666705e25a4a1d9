package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StreamOutput     = "output"
	StreamDiagnostic = "diagnostic"

	OutcomeGood  = "good"
	OutcomeFail  = "fail"
	OutcomeError = "error"

	StartupReady   = "ready"
	StartupTimeout = "timeout"
	StartupError   = "error"
)

var (
	registerOnce sync.Once

	calls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coqctl",
			Subsystem: "session",
			Name:      "calls_total",
			Help:      "Calls issued to the worker by outcome.",
		},
		[]string{"command", "outcome"},
	)
	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coqctl",
			Subsystem: "session",
			Name:      "call_duration_seconds",
			Help:      "Time from writing a call to reading its outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	startupAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coqctl",
			Subsystem: "session",
			Name:      "startup_attempts_total",
			Help:      "Worker startup attempts by result.",
		},
		[]string{"result"},
	)
	readChunks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coqctl",
			Subsystem: "transport",
			Name:      "read_chunks_total",
			Help:      "Chunks read from the worker by stream.",
		},
		[]string{"stream"},
	)
	readBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coqctl",
			Subsystem: "transport",
			Name:      "read_bytes_total",
			Help:      "Bytes read from the worker by stream.",
		},
		[]string{"stream"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(calls, callDuration, startupAttempts, readChunks, readBytes)
	})
}

func RecordCall(command, outcome string, duration time.Duration) {
	RegisterMetrics()
	calls.WithLabelValues(command, outcome).Inc()
	callDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func RecordStartupAttempt(result string) {
	RegisterMetrics()
	startupAttempts.WithLabelValues(result).Inc()
}

func RecordReadChunk(stream string, n int) {
	RegisterMetrics()
	readChunks.WithLabelValues(stream).Inc()
	readBytes.WithLabelValues(stream).Add(float64(n))
}
