package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/tharunK03/RealEstate/internal/domain"
)

// UserService manages the user directory that backs role checks.
type UserService struct {
	repo domain.UserRepository
}

// NewUserService creates a service over the given user repository.
func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates an account with the given role.
func (s *UserService) Register(ctx context.Context, username, email string, role domain.Role) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	var fields []string
	if username == "" {
		fields = append(fields, "username")
	}
	if email == "" {
		fields = append(fields, "email")
	}
	if !role.Valid() {
		fields = append(fields, "role")
	}
	if len(fields) > 0 {
		return domain.User{}, &domain.ValidationError{Fields: fields}
	}

	id, err := generateID()
	if err != nil {
		return domain.User{}, fmt.Errorf("generating user id: %w", err)
	}

	user := domain.NewUser(id, username, email, role)
	if err := s.repo.Create(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// GetByID returns a user by its unique identifier.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Get returns a user profile to the user themself or to an admin.
func (s *UserService) Get(ctx context.Context, actor *domain.Actor, id string) (domain.User, error) {
	if actor == nil {
		return domain.User{}, domain.ErrUnauthenticated
	}
	if actor.Role != domain.RoleAdmin && actor.ID != id {
		return domain.User{}, &domain.ForbiddenError{Role: actor.Role, Action: "view other users"}
	}
	return s.repo.GetByID(ctx, id)
}
