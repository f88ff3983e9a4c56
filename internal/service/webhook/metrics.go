package webhook

import "github.com/prometheus/client_golang/prometheus"

var outcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatbot_crm_webhook_requests_total",
		Help: "Inbound automation webhooks by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

func MustRegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(outcomes)
}
