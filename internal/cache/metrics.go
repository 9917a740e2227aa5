package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grades_response_cache_hits_total",
		Help: "Responses served from the response cache",
	}, []string{"endpoint"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grades_response_cache_misses_total",
		Help: "Responses that had to be computed",
	}, []string{"endpoint"})

	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "grades_response_cache_entries",
		Help: "Entries currently held by the response cache",
	})
)
