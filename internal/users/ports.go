package users

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for user persistence
type Repository interface {
	// CreateUser inserts a new user
	CreateUser(ctx context.Context, user *User) error

	// GetUserByID retrieves a user by ID, or nil when absent
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetUserByEmailAndRole retrieves a user by the (email, role) pair,
	// or nil when absent. Logins are role-scoped.
	GetUserByEmailAndRole(ctx context.Context, email string, role Role) (*User, error)
}
