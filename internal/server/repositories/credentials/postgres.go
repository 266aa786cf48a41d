package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isaidso/auth/internal/common"
	"github.com/isaidso/auth/internal/dbx"
	"github.com/isaidso/auth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, cred *models.EphemeralCredential) (*models.EphemeralCredential, error) {
	query := `
		INSERT INTO ephemeral_credentials (subject, purpose, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		cred.Subject, cred.Purpose, cred.TokenHash, cred.ExpiresAt,
	).Scan(&cred.ID, &cred.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cred, nil
}

func (r *PostgresRepository) DeleteBySubjectPurpose(ctx context.Context, subject, purpose string) error {
	query := `DELETE FROM ephemeral_credentials WHERE subject = $1 AND purpose = $2`
	if _, err := r.db.ExecContext(ctx, query, subject, purpose); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ConsumeByHash uses DELETE ... RETURNING so the row is claimed and removed in
// one statement. A concurrent duplicate request sees no row and gets
// common.ErrorNotFound.
func (r *PostgresRepository) ConsumeByHash(ctx context.Context, hash, purpose string) (*models.EphemeralCredential, error) {
	query := `
		DELETE FROM ephemeral_credentials
		WHERE token_hash = $1 AND purpose = $2
		RETURNING id, subject, purpose, token_hash, expires_at, created_at
	`
	cred := &models.EphemeralCredential{}
	err := r.db.QueryRowContext(ctx, query, hash, purpose).Scan(
		&cred.ID, &cred.Subject, &cred.Purpose, &cred.TokenHash,
		&cred.ExpiresAt, &cred.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cred, nil
}
