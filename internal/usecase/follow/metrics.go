package follow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var followOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogo_follow_outcomes_total",
	Help: "Number of committed follow graph changes by outcome",
}, []string{"outcome"})

var countersCache = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogo_follow_counters_cache_total",
	Help: "Follow counter cache lookups",
}, []string{"result"})
