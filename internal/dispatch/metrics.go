package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "event_campaigns",
		Subsystem: "dispatch",
		Name:      "deliveries_total",
		Help:      "Delivery attempts by terminal status.",
	}, []string{"status"})

	campaignsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "event_campaigns",
		Subsystem: "dispatch",
		Name:      "campaigns_total",
		Help:      "Finished campaign sends by terminal status.",
	}, []string{"status"})
)

func observeDelivery(status string) {
	deliveriesTotal.WithLabelValues(status).Inc()
}

func observeCampaign(status string) {
	campaignsTotal.WithLabelValues(status).Inc()
}
