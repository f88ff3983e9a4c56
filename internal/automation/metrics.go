package automation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_crm_automation_requests_total",
			Help: "Outbound calls to the automation service by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_crm_automation_request_duration_seconds",
			Help:    "Latency of outbound calls to the automation service.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// MustRegisterMetrics exposes the automation collectors on reg.
func MustRegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(requestsTotal, requestDuration)
}

func observe(endpoint, outcome string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(endpoint, outcome).Inc()
	requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
