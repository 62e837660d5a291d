package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/tharunK03/RealEstate/internal/domain"
)

// EventWorker delivers listing events. Sellers are told about every step
// their listing takes; publication is also announced to buyers.
type EventWorker struct {
	river.WorkerDefaults[ListingJobArgs]
}

func (w *EventWorker) Work(ctx context.Context, job *river.Job[ListingJobArgs]) error {
	args := job.Args
	logger := slog.With(
		"event", args.Event,
		"listing_id", args.ListingID,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)

	logger.InfoContext(ctx, "notifying seller", "owner_id", args.OwnerID, "status", args.Status)

	if domain.ListingEvent(args.Event) == domain.EventPublished {
		logger.InfoContext(ctx, "announcing new listing", "title", args.Title, "location", args.Location)
	}
	return nil
}
