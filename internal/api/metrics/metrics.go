// Package metrics defines the Prometheus metrics of the account API. HTTP
// level request metrics come from echoprometheus; the ones here describe
// account operations by outcome.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// OperationsTotal counts account operations.
// Labels:
//   - operation: register, login, forgot_password, verify_code, reset_password, edit, delete
//   - outcome: ok, created, deleted, invalid_input, conflict, not_found, unauthorized, internal
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of account operations, by outcome.",
	},
	[]string{"operation", "outcome"},
)

// OperationDuration measures account operations end to end, including
// password hashing and mail delivery.
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of account operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ObserveOperation records one finished operation.
func ObserveOperation(operation, outcome string, elapsed time.Duration) {
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
	OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
