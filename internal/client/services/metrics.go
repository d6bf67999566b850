package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type syncMetrics struct {
	passes   *prometheus.CounterVec
	duration prometheus.Histogram
}

func newSyncMetrics(reg prometheus.Registerer) *syncMetrics {
	factory := promauto.With(reg)
	return &syncMetrics{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conops_sync_passes_total",
			Help: "Total number of sync passes by mode and result",
		}, []string{"mode", "result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "conops_sync_duration_seconds",
			Help:    "Duration of sync passes",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}
