package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/tharunK03/RealEstate/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// ListingJobArgs is a snapshot of a listing at the moment a workflow event
// was committed. Workers read only the snapshot; a rejected listing no
// longer exists in the registry by the time its job runs.
type ListingJobArgs struct {
	Event     string `json:"event"`
	ListingID string `json:"listing_id"`
	OwnerID   string `json:"owner_id"`
	Status    string `json:"status"`
	Title     string `json:"title"`
	Location  string `json:"location"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (ListingJobArgs) Kind() string { return "listing.event" }

// InsertOpts tags each job with its event so queues can be inspected per type.
func (a ListingJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: 5,
		Tags:        []string{a.Event},
	}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a listing event as an async job.
func (p *Publisher) Publish(ctx context.Context, event domain.ListingEvent, listing domain.Listing) error {
	_, err := p.client.Insert(ctx, ListingJobArgs{
		Event:     string(event),
		ListingID: listing.ID,
		OwnerID:   listing.OwnerID,
		Status:    string(listing.Status),
		Title:     listing.Attributes.Title,
		Location:  listing.Attributes.Location,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing listing event job: %w", err)
	}
	return nil
}
