package notify

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

// rateLimitedNotifier drops notices beyond a token bucket rate. Notices are
// sent after the transition commits, so waiting for a token would stall the
// caller for no benefit to the contest record.
type rateLimitedNotifier struct {
	next    ports.Notifier
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that allows limit notices per second
// with bursts of burst. Notices over the rate fail with ports.ErrRateLimited.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next ports.Notifier) ports.Notifier {
		return &rateLimitedNotifier{next: next, limiter: limiter}
	}
}

func (r *rateLimitedNotifier) Notify(ctx context.Context, notice domain.Notice) error {
	if !r.limiter.Allow() {
		return &ports.NotifyError{Entity: notice.Entity, ID: notice.ID, Err: ports.ErrRateLimited}
	}
	return r.next.Notify(ctx, notice)
}

// timeoutNotifier bounds the time a single delivery may take.
type timeoutNotifier struct {
	next    ports.Notifier
	timeout time.Duration
}

// TimeoutMiddleware creates middleware that cancels a delivery after timeout.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next ports.Notifier) ports.Notifier {
		return &timeoutNotifier{next: next, timeout: timeout}
	}
}

func (t *timeoutNotifier) Notify(ctx context.Context, notice domain.Notice) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Notify(ctx, notice)
}

// metricsNotifier counts deliveries by outcome.
type metricsNotifier struct {
	next      ports.Notifier
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that reports every delivery to
// collector as notices_total, labeled by entity, transition and status.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next ports.Notifier) ports.Notifier {
		return &metricsNotifier{next: next, collector: collector}
	}
}

func (m *metricsNotifier) Notify(ctx context.Context, notice domain.Notice) error {
	start := time.Now()
	err := m.next.Notify(ctx, notice)

	if m.collector == nil {
		return err
	}
	labels := map[string]string{
		"entity":     notice.Entity,
		"transition": notice.Transition,
		"status":     "delivered",
	}
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrRateLimited):
		labels["status"] = "rate_limited"
	case errors.Is(err, context.DeadlineExceeded):
		labels["status"] = "timeout"
	default:
		labels["status"] = "error"
	}
	m.collector.RecordCounter("notices_total", 1, labels)
	m.collector.RecordLatency("notify", time.Since(start), labels)
	return err
}
