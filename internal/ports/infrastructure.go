// Package ports declares the interfaces through which the contest engine
// reaches persistence, observability and notification infrastructure.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-scoresheet/internal/domain"
)

// Store persists the contest object graph and runs every change as an atomic
// unit of work.
// Implementations must serialize writers so that two concurrent transitions
// on the same entity cannot both pass their guards.
type Store interface {
	// Update runs fn against a private copy of the current snapshot. When fn
	// returns nil the copy becomes the current snapshot; when it returns an
	// error the copy is discarded and the error is returned unchanged, so no
	// partial write is ever visible.
	Update(ctx context.Context, fn func(s *domain.Snapshot) error) error

	// View runs fn against a consistent snapshot. fn must not mutate it.
	View(ctx context.Context, fn func(s *domain.Snapshot) error) error

	// Close releases any resources held by the store.
	Close() error
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like transitions, flagged scores
	// and errors.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	// This is useful for tracking values like open performances.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like performance scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// Notifier delivers the optional notices attached to some transitions, such
// as a contestant being qualified or accepted. Delivery happens after the
// transition has committed and a failure never rolls it back.
type Notifier interface {
	Notify(ctx context.Context, notice domain.Notice) error
}

// TransitionEvent identifies a transition being observed.
type TransitionEvent struct {
	Entity     string
	ID         string
	Transition string
}

// TransitionObserver receives callbacks around every engine transition.
// It is the hook used for tracing.
type TransitionObserver interface {
	// PreTransition is called before the unit of work starts. The returned
	// context is used for the rest of the transition.
	PreTransition(ctx context.Context, event TransitionEvent) context.Context

	// PostTransition is called once the unit of work has committed or
	// failed. res is the zero value when err is non-nil.
	PostTransition(ctx context.Context, event TransitionEvent, res domain.TransitionResult, elapsed time.Duration, err error)
}

// ConfigLoader defines the interface for loading configuration.
// Implementations could read from files, environment variables,
// remote configuration services, or a combination of sources.
type ConfigLoader interface {
	// Load reads configuration from the underlying source.
	// It should populate the provided configuration struct.
	// The config parameter should be a pointer to a struct.
	//
	// Example:
	//
	//	var config EngineConfig
	//	err := loader.Load(ctx, &config)
	Load(ctx context.Context, config any) error
}
