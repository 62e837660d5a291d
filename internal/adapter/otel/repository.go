package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tharunK03/RealEstate/internal/domain"
)

const tracerName = "github.com/tharunK03/RealEstate/internal/adapter/otel"

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// TracingListingRepository wraps a domain.ListingRepository with OpenTelemetry
// tracing. Each method creates a span with listing attributes and records errors.
type TracingListingRepository struct {
	next   domain.ListingRepository
	tracer trace.Tracer
}

// Compile-time check: TracingListingRepository implements domain.ListingRepository.
var _ domain.ListingRepository = (*TracingListingRepository)(nil)

// NewTracingListingRepository creates a tracing decorator around the given repository.
func NewTracingListingRepository(next domain.ListingRepository) *TracingListingRepository {
	return &TracingListingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingListingRepository) Create(ctx context.Context, listing domain.Listing) error {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.Create",
		trace.WithAttributes(
			attribute.String("listing.id", listing.ID),
			attribute.String("listing.owner_id", listing.OwnerID),
			attribute.Int("listing.images", len(listing.Assets.Images)),
			attribute.Int("listing.documents", len(listing.Assets.Documents)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, listing)
	recordError(span, err)
	return err
}

func (r *TracingListingRepository) GetByID(ctx context.Context, id string) (domain.Listing, error) {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.GetByID",
		trace.WithAttributes(attribute.String("listing.id", id)),
	)
	defer span.End()

	listing, err := r.next.GetByID(ctx, id)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.String("listing.status", string(listing.Status)))
	}
	return listing, err
}

func (r *TracingListingRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Listing, error) {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.OwnerID != "" {
		span.SetAttributes(attribute.String("filter.owner_id", filter.OwnerID))
	}

	listings, err := r.next.List(ctx, filter)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(listings)))
	}
	return listings, err
}

func (r *TracingListingRepository) ApplyTransition(ctx context.Context, id string, from, to domain.Status) (domain.Listing, error) {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.ApplyTransition",
		trace.WithAttributes(
			attribute.String("listing.id", id),
			attribute.String("listing.status.from", string(from)),
			attribute.String("listing.status.to", string(to)),
		),
	)
	defer span.End()

	listing, err := r.next.ApplyTransition(ctx, id, from, to)
	recordError(span, err)
	return listing, err
}

func (r *TracingListingRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "ListingRepository.Delete",
		trace.WithAttributes(attribute.String("listing.id", id)),
	)
	defer span.End()

	err := r.next.Delete(ctx, id)
	recordError(span, err)
	return err
}

// TracingUserRepository wraps a domain.UserRepository with OpenTelemetry tracing.
type TracingUserRepository struct {
	next   domain.UserRepository
	tracer trace.Tracer
}

var _ domain.UserRepository = (*TracingUserRepository)(nil)

// NewTracingUserRepository creates a tracing decorator around the given repository.
func NewTracingUserRepository(next domain.UserRepository) *TracingUserRepository {
	return &TracingUserRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingUserRepository) Create(ctx context.Context, user domain.User) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Create",
		trace.WithAttributes(
			attribute.String("user.id", user.ID),
			attribute.String("user.role", string(user.Role)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, user)
	recordError(span, err)
	return err
}

func (r *TracingUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	user, err := r.next.GetByID(ctx, id)
	recordError(span, err)
	return user, err
}
