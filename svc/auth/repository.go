package auth

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the durable user/role store the auth core depends on. The
// core never reaches past this interface; EF-style query building, schema
// and migrations live behind it.
type Repository interface {
	// FindUserByID returns ErrUserNotFound for an unknown id.
	FindUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindUserByLogin matches username or email, case-insensitively.
	// Returns ErrUserNotFound when nothing matches.
	FindUserByLogin(ctx context.Context, login string) (*User, error)

	// InsertUser stores a new user. Conflicts surface as ErrUsernameTaken
	// or ErrEmailTaken.
	InsertUser(ctx context.Context, user *User) error

	// RolePermissions returns the permission mask of every role the user
	// belongs to. An unknown user or one with no roles yields an empty
	// slice, not an error.
	RolePermissions(ctx context.Context, userID uuid.UUID) ([]Permission, error)
}
