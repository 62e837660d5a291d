package domain

import "context"

// ListingRepository is the Listing Registry: the only component that persists
// a status change.
type ListingRepository interface {
	Create(ctx context.Context, listing Listing) error
	GetByID(ctx context.Context, id string) (Listing, error)
	List(ctx context.Context, filter ListFilter) ([]Listing, error)
	// ApplyTransition sets the status to "to" only if it still equals "from".
	ApplyTransition(ctx context.Context, id string, from, to Status) (Listing, error)
	// Delete removes a listing that is still awaiting its first review.
	Delete(ctx context.Context, id string) error
}

// ListFilter holds optional criteria for listing listings.
type ListFilter struct {
	Status  *Status
	OwnerID string
	Limit   int
	Offset  int
}

// UserRepository defines the persistence contract for the user directory.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
}

// TransitionAuthority decides whether an actor may move a listing along the pipeline.
type TransitionAuthority interface {
	Decide(ctx context.Context, current Status, action Action, role Role) (Status, error)
}

// ListingEvent names something that happened to a listing.
type ListingEvent string

const (
	EventSubmitted ListingEvent = "submitted"
	EventApproved  ListingEvent = "approved"
	EventRejected  ListingEvent = "rejected"
	EventVerified  ListingEvent = "verified"
	EventFinalized ListingEvent = "final_approved"
	EventPublished ListingEvent = "published"
)

// EventFor maps a workflow action to the event emitted once it is committed.
func EventFor(action Action) ListingEvent {
	switch action {
	case ActionApprove:
		return EventApproved
	case ActionReject:
		return EventRejected
	case ActionVerify:
		return EventVerified
	case ActionFinalApprove:
		return EventFinalized
	case ActionPublish:
		return EventPublished
	}
	return ListingEvent(action)
}

// EventPublisher defines the contract for emitting listing events.
type EventPublisher interface {
	Publish(ctx context.Context, event ListingEvent, listing Listing) error
}
