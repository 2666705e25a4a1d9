package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	beforeCalls := testutil.ToFloat64(calls.WithLabelValues("Add", OutcomeGood))
	beforeBytes := testutil.ToFloat64(readBytes.WithLabelValues(StreamOutput))
	beforeStartup := testutil.ToFloat64(startupAttempts.WithLabelValues(StartupTimeout))

	RecordCall("Add", OutcomeGood, 12*time.Millisecond)
	RecordReadChunk(StreamOutput, 128)
	RecordStartupAttempt(StartupTimeout)

	if got := testutil.ToFloat64(calls.WithLabelValues("Add", OutcomeGood)); got != beforeCalls+1 {
		t.Fatalf("calls_total not incremented: before=%v after=%v", beforeCalls, got)
	}
	if got := testutil.ToFloat64(readBytes.WithLabelValues(StreamOutput)); got != beforeBytes+128 {
		t.Fatalf("read_bytes_total mismatch: before=%v after=%v", beforeBytes, got)
	}
	if got := testutil.ToFloat64(startupAttempts.WithLabelValues(StartupTimeout)); got != beforeStartup+1 {
		t.Fatalf("startup_attempts_total mismatch: before=%v after=%v", beforeStartup, got)
	}
}
