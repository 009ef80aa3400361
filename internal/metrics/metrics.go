// Package metrics exposes Prometheus instrumentation for the checkout path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout tracks commit outcomes.
type Checkout struct {
	Accepted        prometheus.Counter
	Rejected        *prometheus.CounterVec
	ConflictRetries prometheus.Counter
	Duration        prometheus.Histogram
}

// NewCheckout registers checkout metrics on the given registerer.
func NewCheckout(reg prometheus.Registerer) *Checkout {
	factory := promauto.With(reg)
	return &Checkout{
		Accepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkout_accepted_total",
			Help: "Orders committed successfully.",
		}),
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_rejected_total",
			Help: "Orders rejected, by reason.",
		}, []string{"reason"}),
		ConflictRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkout_conflict_retries_total",
			Help: "Commit attempts retried after a stock conflict.",
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Wall time of the snapshot-validate-commit cycle.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
