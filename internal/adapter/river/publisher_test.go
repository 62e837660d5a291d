package river_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"

	riveradapter "github.com/tharunK03/RealEstate/internal/adapter/river"
	"github.com/tharunK03/RealEstate/internal/adapter/sqlite"
	"github.com/tharunK03/RealEstate/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(t.TempDir() + "/river_test.db")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// startClient migrates River into db, subscribes to completed jobs and
// starts the client. The client is stopped when the test ends.
func startClient(t *testing.T, db *sql.DB) (*riveradapter.Client, <-chan *goriver.Event) {
	t.Helper()
	ctx := context.Background()

	client, err := riveradapter.Setup(ctx, db, 2)
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}

	// Subscribe before starting so no completion is missed.
	completed, cancel := client.Subscribe(goriver.EventKindJobCompleted)
	t.Cleanup(cancel)

	if err := client.Start(ctx); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})

	return client, completed
}

func waitForJob(t *testing.T, completed <-chan *goriver.Event) *goriver.Event {
	t.Helper()
	select {
	case event := <-completed:
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
		return nil
	}
}

func testListing(id string) domain.Listing {
	return domain.NewListing(id, "seller-7",
		domain.Attributes{Title: "Cabin", Location: "Pine Ridge", PropertyType: "house", AreaSize: 90, Price: 150000},
		domain.Assets{Images: []string{"cabin.jpg"}, Documents: []string{"title.pdf"}},
	)
}

func TestPublisher_Publish_EnqueuesJob(t *testing.T) {
	client, completed := startClient(t, setupTestDB(t))
	pub := riveradapter.NewPublisher(client)

	if err := pub.Publish(context.Background(), domain.EventSubmitted, testListing("l-1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	event := waitForJob(t, completed)
	if event.Job.Kind != "listing.event" {
		t.Errorf("job kind = %q, want %q", event.Job.Kind, "listing.event")
	}
	if len(event.Job.Tags) != 1 || event.Job.Tags[0] != "submitted" {
		t.Errorf("job tags = %v, want [submitted]", event.Job.Tags)
	}
}

func TestPublisher_Publish_PreservesSnapshot(t *testing.T) {
	client, completed := startClient(t, setupTestDB(t))
	pub := riveradapter.NewPublisher(client)

	listing := testListing("l-42")
	listing.Status = domain.StatusListed
	if err := pub.Publish(context.Background(), domain.EventPublished, listing); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	event := waitForJob(t, completed)
	args := string(event.Job.EncodedArgs)
	for _, want := range []string{
		`"event":"published"`,
		`"listing_id":"l-42"`,
		`"owner_id":"seller-7"`,
		`"status":"listed"`,
		`"title":"Cabin"`,
	} {
		if !strings.Contains(args, want) {
			t.Errorf("encoded args missing %s, got: %s", want, args)
		}
	}
}

// A rejected listing is gone from the registry before its job runs; the
// worker must complete from the snapshot alone.
func TestPublisher_Publish_RejectedListing(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewListingRepository(db)
	client, completed := startClient(t, db)
	pub := riveradapter.NewPublisher(client)
	ctx := context.Background()

	listing := testListing("l-9")
	if err := repo.Create(ctx, listing); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Delete(ctx, listing.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := pub.Publish(ctx, domain.EventRejected, listing); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	event := waitForJob(t, completed)
	if !strings.Contains(string(event.Job.EncodedArgs), `"event":"rejected"`) {
		t.Errorf("unexpected args: %s", event.Job.EncodedArgs)
	}
}
