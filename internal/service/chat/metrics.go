package chat

import "github.com/prometheus/client_golang/prometheus"

var relayOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatbot_crm_relay_replies_total",
		Help: "Widget replies by source (automation or fallback).",
	},
	[]string{"source"},
)

func MustRegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(relayOutcomes)
}

func outcomeLabel(fallback bool) string {
	if fallback {
		return "fallback"
	}
	return "automation"
}
