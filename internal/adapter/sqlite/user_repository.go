package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tharunK03/RealEstate/internal/domain"
)

// Compile-time check: UserRepository implements domain.UserRepository.
var _ domain.UserRepository = (*UserRepository)(nil)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns a repository over an opened and migrated database.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, string(u.Role), u.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.EmailConflictError{Email: u.Email}
		}
		return &domain.StorageError{Op: "inserting user", Err: err}
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	var role, createdAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, role, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &role, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, &domain.StorageError{Op: "scanning user", Err: err}
	}

	u.Role = domain.Role(role)
	u.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return u, nil
}
