package profilesync

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeCreated    = "created"
	outcomeIgnored    = "ignored"
	outcomeMalformed  = "malformed"
	outcomeStoreError = "store_error"
)

// Metrics counts webhook outcomes and times store writes.
type Metrics struct {
	events         *prometheus.CounterVec
	insertDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "profile_sync_events_total",
				Help: "Webhook invocations by outcome.",
			},
			[]string{"outcome"},
		),
		insertDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "profile_sync_insert_duration_seconds",
			Help:    "Latency of profile store inserts.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.events, m.insertDuration)
	for _, o := range []string{outcomeCreated, outcomeIgnored, outcomeMalformed, outcomeStoreError} {
		m.events.WithLabelValues(o)
	}
	return m
}
