package river

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
)

// Setup runs River's own migrations against db and returns a client with the
// listing event worker registered. Jobs are only worked after client.Start;
// call client.Stop on shutdown.
func Setup(ctx context.Context, db *sql.DB, maxWorkers int) (*Client, error) {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	driver := riversqlite.New(db)

	// River's tables live beside the goose-managed schema but are versioned
	// by rivermigrate.
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &EventWorker{})

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Logger:  slog.Default(),
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
