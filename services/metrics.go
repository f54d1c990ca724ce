package services

import "github.com/prometheus/client_golang/prometheus"

var (
	analysesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_analyses_total",
			Help: "Total number of analysis requests by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	fallbackCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_enrichment_fallbacks_total",
			Help: "Number of enrichment stages that returned a fallback value.",
		},
		[]string{"stage"},
	)
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_stage_duration_seconds",
			Help:    "Duration of the individual pipeline stages.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"stage"},
	)
	exportsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_exports_total",
			Help: "Number of history exports by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(analysesCounter, fallbackCounter, stageDuration, exportsCounter)
}
