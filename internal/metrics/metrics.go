package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Simulation and detection metrics for monitoring.
var (
	SamplesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "satwatch_samples_generated_total",
			Help: "Total number of telemetry samples generated",
		},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "satwatch_tick_duration_seconds",
			Help:    "Duration of one full simulation tick (generation + detection)",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 100µs to ~400ms
		},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satwatch_alerts_total",
			Help: "Total number of alerts recorded",
		},
		[]string{"kind", "severity"},
	)

	AlertsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "satwatch_alerts_suppressed_total",
			Help: "Total number of duplicate alerts suppressed by the dedup window",
		},
	)

	ActiveAlerts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "satwatch_active_alerts",
			Help: "Current number of unacknowledged alerts",
		},
	)

	DetectorScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satwatch_detector_score",
			Help:    "Score distribution per detector",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"detector"},
	)

	ForestRetrains = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "satwatch_forest_retrains_total",
			Help: "Total number of partition-forest ensemble rebuilds",
		},
	)

	FaultsInjected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satwatch_faults_injected_total",
			Help: "Total number of operator fault injections",
		},
		[]string{"subsystem"},
	)
)
