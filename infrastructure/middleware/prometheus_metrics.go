// Package middleware provides cross-cutting concerns for the contest engine:
// Prometheus metrics and OpenTelemetry tracing of transitions.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-scoresheet/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It provides real-time monitoring of transition throughput, rejected
// transitions, flagged scores and the distribution of entered points.
type PrometheusMetrics struct {
	transitionLatency *prometheus.HistogramVec
	transitions       *prometheus.CounterVec
	scoresFlagged     prometheus.Counter
	notices           *prometheus.CounterVec
	entitiesCreated   *prometheus.CounterVec
	scorePoints       *prometheus.HistogramVec
	operationCounter  *prometheus.CounterVec
	systemGauges      *prometheus.GaugeVec
	valueHistogram    *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics with reg under namespace. Pass
// prometheus.DefaultRegisterer to expose them on the default handler.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		// Transition metrics.
		transitionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transition_duration_seconds",
				Help:      "Time taken by a transition unit of work, cascades included.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity", "transition", "outcome"},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of transitions attempted, by outcome.",
			},
			[]string{"entity", "transition", "outcome"},
		),

		// Scoring metrics.
		scoresFlagged: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scores_flagged_total",
				Help:      "Total number of scores flagged as outliers.",
			},
		),
		scorePoints: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "score_points",
				Help:      "Distribution of entered points by category.",
				Buckets:   prometheus.LinearBuckets(50, 5, 10),
			},
			[]string{"category"},
		),
		notices: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notices_total",
				Help:      "Total number of transition notices, by delivery status.",
			},
			[]string{"entity", "transition", "status"},
		),
		entitiesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entities_created_total",
				Help:      "Total number of entities created, by kind.",
			},
			[]string{"entity"},
		),

		// General metrics for anything without a dedicated series.
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of other engine operations.",
			},
			[]string{"operation"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "system_state",
				Help:      "Current state values reported by the engine.",
			},
			[]string{"metric"},
		),
		valueHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "values",
				Help:      "Distribution of other values reported by the engine.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"metric"},
		),
	}
}

// label returns labels[key], or "unknown" when it is missing or empty.
func label(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// transition latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	if operation != "transition" {
		pm.valueHistogram.WithLabelValues(operation).Observe(duration.Seconds())
		return
	}
	pm.transitionLatency.WithLabelValues(
		label(labels, "entity"),
		label(labels, "transition"),
		label(labels, "outcome"),
	).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "transitions_total":
		pm.transitions.WithLabelValues(
			label(labels, "entity"),
			label(labels, "transition"),
			label(labels, "outcome"),
		).Add(value)
	case "scores_flagged_total":
		pm.scoresFlagged.Add(value)
	case "notices_total":
		pm.notices.WithLabelValues(
			label(labels, "entity"),
			label(labels, "transition"),
			label(labels, "status"),
		).Add(value)
	case "entities_created_total":
		pm.entitiesCreated.WithLabelValues(label(labels, "entity")).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	if metric == "score_points" {
		pm.scorePoints.WithLabelValues(label(labels, "category")).Observe(value)
		return
	}
	pm.valueHistogram.WithLabelValues(metric).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
