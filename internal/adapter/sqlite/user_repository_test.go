package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tharunK03/RealEstate/internal/adapter/sqlite"
	"github.com/tharunK03/RealEstate/internal/domain"
)

func TestUserCreate_And_GetByID(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := domain.NewUser("u-1", "alice", "alice@example.com", domain.RoleAgent)
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want %q", got.Username, "alice")
	}
	if got.Role != domain.RoleAgent {
		t.Errorf("Role = %q, want %q", got.Role, domain.RoleAgent)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, domain.NewUser("u-1", "alice", "alice@example.com", domain.RoleSeller)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := repo.Create(ctx, domain.NewUser("u-2", "alice2", "alice@example.com", domain.RoleBuyer))
	var emailErr *domain.EmailConflictError
	if !errors.As(err, &emailErr) {
		t.Fatalf("expected EmailConflictError, got %v", err)
	}
	if emailErr.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", emailErr.Email, "alice@example.com")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	repo := sqlite.NewUserRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
