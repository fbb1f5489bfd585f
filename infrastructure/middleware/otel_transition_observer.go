package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

// tracerName is the instrumentation scope of transition spans.
const tracerName = "scoresheet"

var _ ports.TransitionObserver = (*OTelTransitionObserver)(nil)

// OTelTransitionObserver traces engine transitions with OpenTelemetry. Each
// transition gets one span; the cascades it fired are recorded as span
// events in the order they ran.
type OTelTransitionObserver struct {
	tracer  trace.Tracer
	metrics ports.MetricsCollector
}

// NewOTelTransitionObserver creates an observer that starts spans on the
// tracer provider tp. A nil tp uses the global provider. metrics may be nil.
func NewOTelTransitionObserver(tp trace.TracerProvider, metrics ports.MetricsCollector) *OTelTransitionObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTelTransitionObserver{tracer: tp.Tracer(tracerName), metrics: metrics}
}

// PreTransition implements ports.TransitionObserver. It starts a span and
// returns a context carrying it.
func (o *OTelTransitionObserver) PreTransition(ctx context.Context, event ports.TransitionEvent) context.Context {
	ctx, _ = o.tracer.Start(ctx, event.Entity+"."+event.Transition,
		trace.WithAttributes(eventAttributes(event)...))
	return ctx
}

// PostTransition implements ports.TransitionObserver. It ends the span
// started by PreTransition.
func (o *OTelTransitionObserver) PostTransition(
	ctx context.Context,
	event ports.TransitionEvent,
	res domain.TransitionResult,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(attribute.Int64("transition.elapsed_us", elapsed.Microseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("transition.outcome", domain.Outcome(err)))
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("transition.from", res.From),
		attribute.String("transition.to", res.To),
	)

	effects := 0
	for _, eff := range res.Effects {
		eff.Walk(func(r domain.TransitionResult) {
			effects++
			span.AddEvent("transition.effect", trace.WithAttributes(
				attribute.String("entity", r.Entity),
				attribute.String("id", r.ID),
				attribute.String("transition", r.Transition),
				attribute.String("from", r.From),
				attribute.String("to", r.To),
			))
		})
	}
	span.SetAttributes(attribute.Int("transition.effects", effects))

	if o.metrics != nil {
		o.metrics.RecordHistogram("transition_effects", float64(effects), map[string]string{
			"entity":     event.Entity,
			"transition": event.Transition,
		})
	}
	span.SetStatus(codes.Ok, res.Message)
}

func eventAttributes(event ports.TransitionEvent) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("transition.entity", event.Entity),
		attribute.String("transition.id", event.ID),
		attribute.String("transition.name", event.Transition),
	}
}
