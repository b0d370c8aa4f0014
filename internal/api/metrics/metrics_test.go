package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOperation(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("login", "ok"))

	ObserveOperation("login", "ok", 20*time.Millisecond)
	ObserveOperation("login", "ok", 30*time.Millisecond)

	if got := testutil.ToFloat64(OperationsTotal.WithLabelValues("login", "ok")); got != before+2 {
		t.Fatalf("expected counter %v, got %v", before+2, got)
	}
	if n := testutil.CollectAndCount(OperationDuration, "accounts_operation_duration_seconds"); n == 0 {
		t.Fatalf("expected duration series to be collected")
	}
}
