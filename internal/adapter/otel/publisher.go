package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tharunK03/RealEstate/internal/domain"
)

// TracingPublisher wraps a domain.EventPublisher with a span per event and
// counts committed workflow events by type.
type TracingPublisher struct {
	next    domain.EventPublisher
	tracer  trace.Tracer
	counter metric.Int64Counter
}

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) (*TracingPublisher, error) {
	counter, err := otel.Meter(tracerName).Int64Counter("listing.events",
		metric.WithDescription("Listing workflow events published after a committed change"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &TracingPublisher{
		next:    next,
		tracer:  otel.Tracer(tracerName),
		counter: counter,
	}, nil
}

func (p *TracingPublisher) Publish(ctx context.Context, event domain.ListingEvent, listing domain.Listing) error {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("event.type", string(event)),
			attribute.String("listing.id", listing.ID),
			attribute.String("listing.status", string(listing.Status)),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, event, listing)
	recordError(span, err)
	if err == nil {
		p.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", string(event))))
	}
	return err
}
