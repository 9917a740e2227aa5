package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grades_engine_query_duration_seconds",
		Help:    "Duration of in-memory grade queries",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"op"})

	queryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grades_engine_query_errors_total",
		Help: "Grade queries that failed with a QueryExecutionError",
	}, []string{"op"})

	recordsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "grades_engine_records_loaded",
		Help: "Number of grade records held in memory",
	})
)

func observe(op string, start time.Time) {
	queryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
