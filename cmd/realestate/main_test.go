package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tharunK03/RealEstate/internal/adapter/auth"
	"github.com/tharunK03/RealEstate/internal/adapter/fsm"
	handler "github.com/tharunK03/RealEstate/internal/adapter/http"
	"github.com/tharunK03/RealEstate/internal/adapter/sqlite"
	"github.com/tharunK03/RealEstate/internal/app"
	"github.com/tharunK03/RealEstate/internal/domain"
)

func TestEnvOrDefault_Fallback(t *testing.T) {
	v := envOrDefault("REALESTATE_TEST_NONEXISTENT_KEY", "fallback")
	if v != "fallback" {
		t.Errorf("got %q, want %q", v, "fallback")
	}
}

func TestEnvOrDefault_EnvSet(t *testing.T) {
	t.Setenv("REALESTATE_TEST_KEY", "custom")

	v := envOrDefault("REALESTATE_TEST_KEY", "fallback")
	if v != "custom" {
		t.Errorf("got %q, want %q", v, "custom")
	}
}

// testPublisher is a local EventPublisher for the smoke test.
// The smoke test verifies HTTP wiring, not River.
type testPublisher struct{}

func (p *testPublisher) Publish(_ context.Context, _ domain.ListingEvent, _ domain.Listing) error {
	return nil
}

// TestSmoke wires the full stack like run() and verifies it responds.
func TestSmoke(t *testing.T) {
	db, err := sqlite.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	listings := app.NewListingService(sqlite.NewListingRepository(db), &testPublisher{}, fsm.New())

	router := chi.NewMux()
	api := handler.NewAPI(router, "realestate", version, auth.NewVerifier([]byte("smoke"), userRepo))
	handler.Register(api, listings, app.NewUserService(userRepo))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/v1/public/listings", nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/v1/public/listings failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var found []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&found); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(found) != 0 {
		t.Errorf("got %d listings, want 0 (empty database)", len(found))
	}
}

// TestRun exercises run() end-to-end: OTel, River, HTTP server and graceful
// shutdown, against a temp database with telemetry export disabled.
func TestRun(t *testing.T) {
	t.Setenv("DATABASE_PATH", t.TempDir()+"/test-run.db")
	t.Setenv("PORT", "19876")
	t.Setenv("JWT_SECRET", "run-secret")
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("OTEL_ENVIRONMENT", "test")

	errCh := make(chan error, 1)
	go func() { errCh <- run() }()

	serverURL := "http://localhost:19876/api/v1/public/listings"
	ready := false
	for range 50 {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, serverURL, nil)
		resp, reqErr := http.DefaultClient.Do(req)
		if reqErr == nil {
			resp.Body.Close()
			ready = resp.StatusCode == http.StatusOK
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !ready {
		t.Fatal("server did not become ready within 5 seconds")
	}

	// Bearer tokens for unknown users are refused by the wired verifier.
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://localhost:19876/api/v1/listings/mine", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/v1/listings/mine failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("finding process: %v", err)
	}
	if err := proc.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("sending SIGINT: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run() returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not exit within 10 seconds")
	}
}

func TestRun_InvalidDB(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/nonexistent/path/db.sqlite")
	t.Setenv("PORT", "19877")
	t.Setenv("JWT_SECRET", "run-secret")
	t.Setenv("OTEL_EXPORTER", "none")

	if err := run(); err == nil {
		t.Fatal("expected error for invalid database path, got nil")
	}
}

func TestRun_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("OTEL_EXPORTER", "none")

	if err := run(); err == nil {
		t.Fatal("expected error without JWT_SECRET, got nil")
	}
}
