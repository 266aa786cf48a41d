// Package credentials declares the persistence contract for ephemeral
// single-use credentials (email verification, password reset).
package credentials

import (
	"context"

	"github.com/isaidso/auth/internal/server/models"
)

// Repository defines operations on ephemeral credentials.
type Repository interface {
	// Create inserts a credential row and returns it with the generated id.
	Create(ctx context.Context, cred *models.EphemeralCredential) (*models.EphemeralCredential, error)

	// DeleteBySubjectPurpose purges any live credential for the pair, keeping
	// the at-most-one invariant when a new one is issued.
	DeleteBySubjectPurpose(ctx context.Context, subject, purpose string) error

	// ConsumeByHash atomically deletes the row matching hash and purpose and
	// returns it, so that two concurrent consumers cannot both succeed.
	// Missing rows yield common.ErrorNotFound. Expiry is not checked here;
	// the caller inspects ExpiresAt on the returned row.
	ConsumeByHash(ctx context.Context, hash, purpose string) (*models.EphemeralCredential, error)
}
