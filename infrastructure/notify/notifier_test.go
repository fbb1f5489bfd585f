package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
	"github.com/ahrav/go-scoresheet/internal/testutils"
)

var qualified = domain.Notice{
	Entity:     domain.EntityContestant,
	ID:         "ct-1",
	Transition: "qualify",
	Message:    "contestant qualified",
}

// TestSlogNotifier verifies that notices are written as structured records.
func TestSlogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewSlogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.Notify(context.Background(), qualified))

	out := buf.String()
	assert.Contains(t, out, `"msg":"contestant qualified"`)
	assert.Contains(t, out, `"entity":"contestant"`)
	assert.Contains(t, out, `"id":"ct-1"`)
	assert.Contains(t, out, `"transition":"qualify"`)
}

// TestSlogNotifier_CancelledContext verifies that a cancelled context fails
// delivery with a NotifyError.
func TestSlogNotifier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSlogNotifier(nil).Notify(ctx, qualified)

	var nerr *ports.NotifyError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "ct-1", nerr.ID)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestChain verifies that the first middleware is the outermost.
func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next ports.Notifier) ports.Notifier {
			return Func(func(ctx context.Context, n domain.Notice) error {
				order = append(order, name)
				return next.Notify(ctx, n)
			})
		}
	}
	base := &testutils.RecordingNotifier{}

	n := Chain(base, tag("outer"), tag("inner"))
	require.NoError(t, n.Notify(context.Background(), qualified))

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, []domain.Notice{qualified}, base.Notices())
}

// TestRateLimitMiddleware verifies that notices over the burst are dropped
// rather than delayed.
func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		limit     rate.Limit
		burst     int
		sends     int
		delivered int
	}{
		{name: "within burst", limit: 1, burst: 3, sends: 3, delivered: 3},
		{name: "over burst", limit: 0.001, burst: 2, sends: 5, delivered: 2},
		{name: "zero burst drops everything", limit: 1, burst: 0, sends: 2, delivered: 0},
		{name: "infinite rate", limit: rate.Inf, burst: 0, sends: 10, delivered: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &testutils.RecordingNotifier{}
			n := RateLimitMiddleware(tt.limit, tt.burst)(base)

			start := time.Now()
			dropped := 0
			for range tt.sends {
				err := n.Notify(context.Background(), qualified)
				if err != nil {
					require.ErrorIs(t, err, ports.ErrRateLimited)
					dropped++
				}
			}

			assert.Less(t, time.Since(start), time.Second, "rate limiting must not block")
			assert.Len(t, base.Notices(), tt.delivered)
			assert.Equal(t, tt.sends-tt.delivered, dropped)
		})
	}
}

// TestTimeoutMiddleware verifies that slow deliveries are cancelled.
func TestTimeoutMiddleware(t *testing.T) {
	slow := Func(func(ctx context.Context, _ domain.Notice) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	err := TimeoutMiddleware(10*time.Millisecond)(slow).Notify(context.Background(), qualified)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestMetricsMiddleware verifies that every delivery is counted by status.
func TestMetricsMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
	}{
		{name: "delivered", wantStatus: "delivered"},
		{name: "rate limited", err: &ports.NotifyError{Err: ports.ErrRateLimited}, wantStatus: "rate_limited"},
		{name: "timeout", err: context.DeadlineExceeded, wantStatus: "timeout"},
		{name: "other failure", err: errors.New("hook unavailable"), wantStatus: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := testutils.NewMockMetricsCollector()
			base := &testutils.RecordingNotifier{Err: tt.err}

			err := MetricsMiddleware(metrics)(base).Notify(context.Background(), qualified)

			assert.Equal(t, tt.err, err)
			assert.Equal(t, 1.0, metrics.Sum("notices_total", map[string]string{
				"entity":     domain.EntityContestant,
				"transition": "qualify",
				"status":     tt.wantStatus,
			}))
			assert.Equal(t, 1, metrics.Count("notify"))
		})
	}
}

// TestMetricsMiddleware_NilCollector verifies that a nil collector only
// forwards.
func TestMetricsMiddleware_NilCollector(t *testing.T) {
	base := &testutils.RecordingNotifier{}

	require.NoError(t, MetricsMiddleware(nil)(base).Notify(context.Background(), qualified))
	assert.Len(t, base.Notices(), 1)
}
