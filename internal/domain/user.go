package domain

import "time"

// Role determines which workflow actions an actor may request.
type Role string

const (
	RoleSeller Role = "seller"
	RoleAgent  Role = "agent"
	RoleAdmin  Role = "admin"
	RoleBuyer  Role = "buyer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSeller, RoleAgent, RoleAdmin, RoleBuyer:
		return true
	}
	return false
}

// User is a registered account. Its role is authoritative for access checks.
type User struct {
	ID        string
	Username  string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// NewUser creates a user record stamped with the current time.
func NewUser(id, username, email string, role Role) User {
	return User{
		ID:        id,
		Username:  username,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}
