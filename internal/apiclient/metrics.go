package apiclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records backend call outcomes.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serena",
			Subsystem: "apiclient",
			Name:      "requests_total",
			Help:      "Backend API calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "serena",
			Subsystem: "apiclient",
			Name:      "request_duration_seconds",
			Help:      "Backend API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(endpoint string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if ae, ok := err.(*Error); ok {
		outcome = string(ae.Kind)
	} else if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.duration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
