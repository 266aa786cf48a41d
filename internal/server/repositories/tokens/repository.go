// Package tokens declares the persistence contract for issued bearer tokens.
// Rows hold only the SHA-256 digest of each secret.
package tokens

import (
	"context"

	"github.com/isaidso/auth/internal/server/models"
)

// Repository defines operations on the token store.
type Repository interface {
	// Create inserts a token row and returns it with the generated id.
	Create(ctx context.Context, token *models.Token) (*models.Token, error)

	// FindByHash looks up a token by its secret digest. Missing rows yield
	// common.ErrorNotFound.
	FindByHash(ctx context.Context, hash string) (*models.Token, error)

	// DeleteByID removes a token and reports how many rows were affected.
	// Deleting an absent token is not an error; callers that need one-shot
	// semantics check the affected count.
	DeleteByID(ctx context.Context, id string) (int64, error)

	// DeleteExpired purges rows past their expiry and reports the count.
	DeleteExpired(ctx context.Context) (int64, error)
}
