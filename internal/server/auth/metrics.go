package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var resolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pointfeed",
	Subsystem: "auth",
	Name:      "resolve_total",
	Help:      "Credential resolutions by outcome.",
}, []string{"outcome"})
