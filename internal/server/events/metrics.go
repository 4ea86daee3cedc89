package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointfeed",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events published, by topic.",
	}, []string{"topic"})

	deliveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointfeed",
		Subsystem: "events",
		Name:      "delivered_total",
		Help:      "Events handed to subscribers, by topic.",
	}, []string{"topic"})

	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointfeed",
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Events discarded before delivery, by topic and reason.",
	}, []string{"topic", "reason"})

	subscribersGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pointfeed",
		Subsystem: "events",
		Name:      "subscribers",
		Help:      "Live subscribers, by topic.",
	}, []string{"topic"})
)
