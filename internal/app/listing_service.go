package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tharunK03/RealEstate/internal/domain"
)

// ListingService orchestrates the listing approval pipeline. It is the only
// caller of the registry's guarded writes.
type ListingService struct {
	repo      domain.ListingRepository
	publisher domain.EventPublisher
	authority domain.TransitionAuthority
}

// NewListingService creates a service with the given adapters.
func NewListingService(repo domain.ListingRepository, publisher domain.EventPublisher, authority domain.TransitionAuthority) *ListingService {
	return &ListingService{
		repo:      repo,
		publisher: publisher,
		authority: authority,
	}
}

// SubmitInput is the seller-provided content of a new listing.
type SubmitInput struct {
	Attributes domain.Attributes
	Assets     domain.Assets
}

// Submit persists a new listing awaiting admin review.
func (s *ListingService) Submit(ctx context.Context, actor *domain.Actor, in SubmitInput) (domain.Listing, error) {
	if actor == nil {
		return domain.Listing{}, domain.ErrUnauthenticated
	}
	if actor.Role != domain.RoleSeller {
		return domain.Listing{}, &domain.ForbiddenError{Role: actor.Role, Action: "submit listings"}
	}
	if err := domain.Validate(in.Attributes, in.Assets); err != nil {
		return domain.Listing{}, err
	}

	id, err := generateID()
	if err != nil {
		return domain.Listing{}, fmt.Errorf("generating listing id: %w", err)
	}

	listing := domain.NewListing(id, actor.ID, in.Attributes, in.Assets)

	if err := s.repo.Create(ctx, listing); err != nil {
		return domain.Listing{}, fmt.Errorf("creating listing: %w", err)
	}

	s.publish(ctx, domain.EventSubmitted, listing)

	return listing, nil
}

// Get returns a listing the actor is allowed to see. Listed listings are
// public; anything earlier in the pipeline is visible to its owner and to
// staff. Other callers get domain.ErrListingNotFound.
func (s *ListingService) Get(ctx context.Context, actor *domain.Actor, id string) (domain.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}

	if listing.Status == domain.StatusListed {
		return listing, nil
	}
	if actor != nil && (actor.Role == domain.RoleAdmin || actor.Role == domain.RoleAgent || actor.ID == listing.OwnerID) {
		return listing, nil
	}
	return domain.Listing{}, domain.ErrListingNotFound
}

// ListByStatus returns a snapshot of the listings currently in status, if
// the actor may browse that queue.
func (s *ListingService) ListByStatus(ctx context.Context, actor *domain.Actor, status domain.Status) ([]domain.Listing, error) {
	var role domain.Role
	if actor != nil {
		role = actor.Role
	}

	if !domain.CanBrowse(role, status) {
		if actor == nil {
			return nil, domain.ErrUnauthenticated
		}
		return nil, &domain.ForbiddenError{Role: role, Action: fmt.Sprintf("browse %q listings", status)}
	}

	return s.repo.List(ctx, domain.ListFilter{Status: &status})
}

// ListPending returns listings awaiting the first admin review.
func (s *ListingService) ListPending(ctx context.Context, actor *domain.Actor) ([]domain.Listing, error) {
	return s.ListByStatus(ctx, actor, domain.StatusSubmittedForReview)
}

// ListForAgent returns listings awaiting agent verification.
func (s *ListingService) ListForAgent(ctx context.Context, actor *domain.Actor) ([]domain.Listing, error) {
	return s.ListByStatus(ctx, actor, domain.StatusAdminApproved)
}

// ListPublished returns listings visible to buyers.
func (s *ListingService) ListPublished(ctx context.Context) ([]domain.Listing, error) {
	return s.ListByStatus(ctx, nil, domain.StatusListed)
}

// ListAll returns listings in any status for staff overviews.
func (s *ListingService) ListAll(ctx context.Context, actor *domain.Actor, filter domain.ListFilter) ([]domain.Listing, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleAgent {
		return nil, &domain.ForbiddenError{Role: actor.Role, Action: "browse all listings"}
	}
	return s.repo.List(ctx, filter)
}

// ListMine returns the seller's own submissions in any status.
func (s *ListingService) ListMine(ctx context.Context, actor *domain.Actor) ([]domain.Listing, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if actor.Role != domain.RoleSeller {
		return nil, &domain.ForbiddenError{Role: actor.Role, Action: "own listings"}
	}
	return s.repo.List(ctx, domain.ListFilter{OwnerID: actor.ID})
}

// Transition applies a workflow action to a listing. The status read here is
// the precondition of the write, so a concurrent change surfaces as
// *domain.ConcurrentModificationError instead of being overwritten.
// A successful rejection deletes the listing and returns it as it was.
// Roles that may never perform the action are refused before the listing is
// read, so they cannot tell hidden listings from missing ones.
func (s *ListingService) Transition(ctx context.Context, actor *domain.Actor, id string, action domain.Action) (domain.Listing, error) {
	if actor == nil {
		return domain.Listing{}, domain.ErrUnauthenticated
	}
	if domain.KnownAction(action) && !domain.Permits(actor.Role, action) {
		return domain.Listing{}, &domain.ForbiddenError{Role: actor.Role, Action: string(action)}
	}

	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}

	next, err := s.authority.Decide(ctx, listing.Status, action, actor.Role)
	if err != nil {
		return domain.Listing{}, err
	}

	if next == domain.StatusRejected {
		if err := s.repo.Delete(ctx, id); err != nil {
			var stateErr *domain.InvalidStateError
			if errors.As(err, &stateErr) {
				return domain.Listing{}, &domain.ConcurrentModificationError{
					ID:       id,
					Expected: listing.Status,
					Actual:   stateErr.Current,
				}
			}
			return domain.Listing{}, err
		}
	} else {
		listing, err = s.repo.ApplyTransition(ctx, id, listing.Status, next)
		if err != nil {
			return domain.Listing{}, err
		}
	}

	s.publish(ctx, domain.EventFor(action), listing)

	return listing, nil
}

// publish emits an event for a change that is already committed. A failure
// is logged and does not undo or misreport the change.
func (s *ListingService) publish(ctx context.Context, event domain.ListingEvent, listing domain.Listing) {
	if err := s.publisher.Publish(ctx, event, listing); err != nil {
		slog.ErrorContext(ctx, "publishing listing event",
			"event", event,
			"listing_id", listing.ID,
			"status", listing.Status,
			"error", err,
		)
	}
}
