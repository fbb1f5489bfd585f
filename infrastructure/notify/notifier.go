// Package notify delivers the notices attached to contest transitions, such
// as a contestant being qualified or a competitor being published.
//
// Notifiers compose through middleware:
//
//	n := notify.Chain(notify.NewSlogNotifier(logger),
//	    notify.RateLimitMiddleware(10, 10),
//	    notify.MetricsMiddleware(metrics),
//	)
package notify

import (
	"context"
	"log/slog"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

// Middleware wraps a Notifier to add cross-cutting behavior.
type Middleware func(ports.Notifier) ports.Notifier

// Chain wraps base with mws. The first middleware is the outermost, so it
// sees every notice before the others do.
func Chain(base ports.Notifier, mws ...Middleware) ports.Notifier {
	n := base
	for i := len(mws) - 1; i >= 0; i-- {
		n = mws[i](n)
	}
	return n
}

// SlogNotifier writes every notice to a structured logger.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a notifier that logs to logger, or to the default
// logger when nil.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

// Notify implements ports.Notifier.
func (n *SlogNotifier) Notify(ctx context.Context, notice domain.Notice) error {
	if err := ctx.Err(); err != nil {
		return &ports.NotifyError{Entity: notice.Entity, ID: notice.ID, Err: err}
	}
	n.logger.InfoContext(ctx, notice.Message,
		slog.String("entity", notice.Entity),
		slog.String("id", notice.ID),
		slog.String("transition", notice.Transition),
	)
	return nil
}

// Func adapts an ordinary function to ports.Notifier.
type Func func(ctx context.Context, notice domain.Notice) error

// Notify calls f.
func (f Func) Notify(ctx context.Context, notice domain.Notice) error { return f(ctx, notice) }

var (
	_ ports.Notifier = (*SlogNotifier)(nil)
	_ ports.Notifier = Func(nil)
)
