// Package testutils provides test doubles shared by the engine, store and
// infrastructure tests.
package testutils

import (
	"maps"
	"sync"
	"time"

	"github.com/ahrav/go-scoresheet/internal/ports"
)

// MetricCall is one call made to a MockMetricsCollector.
type MetricCall struct {
	Kind   string
	Metric string
	Value  float64
	Labels map[string]string
}

// MockMetricsCollector records every metric it receives. It is safe for
// concurrent use.
type MockMetricsCollector struct {
	mu    sync.Mutex
	calls []MetricCall
}

// NewMockMetricsCollector creates an empty collector.
func NewMockMetricsCollector() *MockMetricsCollector {
	return &MockMetricsCollector{}
}

func (m *MockMetricsCollector) add(kind, metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MetricCall{Kind: kind, Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

// RecordLatency implements ports.MetricsCollector.
func (m *MockMetricsCollector) RecordLatency(operation string, d time.Duration, labels map[string]string) {
	m.add("latency", operation, d.Seconds(), labels)
}

// RecordCounter implements ports.MetricsCollector.
func (m *MockMetricsCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	m.add("counter", metric, value, labels)
}

// RecordGauge implements ports.MetricsCollector.
func (m *MockMetricsCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	m.add("gauge", metric, value, labels)
}

// RecordHistogram implements ports.MetricsCollector.
func (m *MockMetricsCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	m.add("histogram", metric, value, labels)
}

// Calls returns a copy of every recorded call.
func (m *MockMetricsCollector) Calls() []MetricCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MetricCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Sum adds up the values recorded for metric whose labels include every
// pair in match.
func (m *MockMetricsCollector) Sum(metric string, match map[string]string) float64 {
	var total float64
	for _, c := range m.Calls() {
		if c.Metric != metric || !contains(c.Labels, match) {
			continue
		}
		total += c.Value
	}
	return total
}

// Count reports how many calls were recorded for metric.
func (m *MockMetricsCollector) Count(metric string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Metric == metric {
			n++
		}
	}
	return n
}

// Last returns the most recent value recorded for metric.
func (m *MockMetricsCollector) Last(metric string) (float64, bool) {
	calls := m.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Metric == metric {
			return calls[i].Value, true
		}
	}
	return 0, false
}

func contains(labels, match map[string]string) bool {
	for k, v := range match {
		if labels[k] != v {
			return false
		}
	}
	return true
}

var _ ports.MetricsCollector = (*MockMetricsCollector)(nil)
