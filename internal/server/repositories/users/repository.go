// Package users declares the persistence contract for account rows.
package users

import (
	"context"

	"github.com/isaidso/auth/internal/server/models"
)

// Repository defines storage operations for users. Lookups return
// common.ErrorNotFound for missing rows; writes that hit a unique constraint
// return common.ErrorConflict.
type Repository interface {
	// Create inserts a new user and returns it with the generated id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UsernameTaken reports whether any user already holds the username.
	UsernameTaken(ctx context.Context, username string) (bool, error)

	// UpdateLastLogin stamps last_login_at with the current time.
	UpdateLastLogin(ctx context.Context, id string) error

	// MarkEmailVerified sets email_verified_at if it is not already set.
	MarkEmailVerified(ctx context.Context, id string) error

	// SetPasswordByEmail replaces the password hash of the user with the
	// given email.
	SetPasswordByEmail(ctx context.Context, email, passwordHash string) error

	// LinkFederated attaches an external identity to an existing account and
	// switches its login method to federated.
	LinkFederated(ctx context.Context, id, federatedID string) error

	// UpdateProfile persists username, name, country, avatar reference and
	// the profile-completed flag from the model.
	UpdateProfile(ctx context.Context, user *models.User) error
}
