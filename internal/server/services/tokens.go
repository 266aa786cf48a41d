// Package services contains server-side business logic. This file implements
// TokenService: capability-scoped opaque bearer tokens with issuance,
// validation, revocation, and one-shot refresh rotation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/isaidso/auth/internal/common"
	"github.com/isaidso/auth/internal/cryptox"
	"github.com/isaidso/auth/internal/dbx"
	"github.com/isaidso/auth/internal/server/config"
	"github.com/isaidso/auth/internal/server/models"
	"github.com/isaidso/auth/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a rotating refresh token.
// ExpiresIn is the access-token lifetime in seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// TokenService mints, validates, revokes, and rotates bearer tokens against
// the token store. Only secret digests are persisted; the plaintext is
// returned once at issuance.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{db: db, repomanager: m, config: cfg}
}

// Issue mints a token of the given kind for userID and persists its digest
// with expiry now+ttl. The returned plaintext is never recoverable later.
func (s *TokenService) Issue(ctx context.Context, db dbx.DBTX, userID, kind string, capabilities []string, ttl time.Duration) (string, error) {
	secret, err := cryptox.MakeRandString(s.config.SecretLength)
	if err != nil {
		return "", common.ErrorInternal
	}

	token := &models.Token{
		UserID:       userID,
		Kind:         kind,
		Capabilities: capabilities,
		TokenHash:    cryptox.HashSecret(secret),
		ExpiresAt:    time.Now().Add(ttl),
	}
	if _, err := s.repomanager.Tokens(db).Create(ctx, token); err != nil {
		return "", fmt.Errorf("error storing token: %w", err)
	}
	return secret, nil
}

// IssuePair mints the standard access+refresh pair for userID.
func (s *TokenService) IssuePair(ctx context.Context, db dbx.DBTX, userID string) (*TokenPair, error) {
	access, err := s.Issue(ctx, db, userID, common.TokenKindAccess,
		[]string{common.CapabilityAccessAPI}, s.config.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Issue(ctx, db, userID, common.TokenKindRefresh,
		[]string{common.CapabilityIssueAccessToken}, s.config.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.config.AccessTokenTTL.Seconds()),
	}, nil
}

// IssuePairForUser is IssuePair against the service's own pool, for callers
// outside any transaction.
func (s *TokenService) IssuePairForUser(ctx context.Context, userID string) (*TokenPair, error) {
	return s.IssuePair(ctx, s.db, userID)
}

// Validate resolves a presented plaintext secret to its stored token row.
// Unknown secrets yield common.ErrorNotFound. Expired rows are deleted lazily
// and yield common.ErrTokenExpired.
func (s *TokenService) Validate(ctx context.Context, plaintext string) (*models.Token, error) {
	repo := s.repomanager.Tokens(s.db)

	token, err := repo.FindByHash(ctx, cryptox.HashSecret(plaintext))
	if err != nil {
		return nil, err
	}
	if token.ExpiresAt.Before(time.Now()) {
		if _, err := repo.DeleteByID(ctx, token.ID); err != nil {
			return nil, err
		}
		return nil, common.ErrTokenExpired
	}
	return token, nil
}

// Revoke deletes a token row. Revoking an already-deleted token is a no-op.
func (s *TokenService) Revoke(ctx context.Context, tokenID string) error {
	if _, err := s.repomanager.Tokens(s.db).DeleteByID(ctx, tokenID); err != nil {
		return err
	}
	return nil
}

// Rotate consumes a presented refresh token and mints a fresh pair. The
// consumed token can never be presented again; two concurrent rotations of
// the same token cannot both succeed because deletion is checked inside the
// transaction.
func (s *TokenService) Rotate(ctx context.Context, refreshPlaintext string) (*TokenPair, string, error) {
	token, err := s.Validate(ctx, refreshPlaintext)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrTokenExpired) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", err
	}

	if !token.Can(common.CapabilityIssueAccessToken) {
		return nil, "", common.ErrInvalidTokenType
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		affected, err := s.repomanager.Tokens(tx).DeleteByID(ctx, token.ID)
		if err != nil {
			return fmt.Errorf("error revoking refresh token: %w", err)
		}
		if affected == 0 {
			// Another rotation already consumed this token.
			return common.ErrorUnauthorized
		}
		pair, err = s.IssuePair(ctx, tx, token.UserID)
		return err
	}); err != nil {
		return nil, "", err
	}

	return pair, token.UserID, nil
}

// Cleanup purges expired token rows. Expiry is otherwise evaluated lazily at
// validation time, so this is optional housekeeping.
func (s *TokenService) Cleanup(ctx context.Context) (int64, error) {
	return s.repomanager.Tokens(s.db).DeleteExpired(ctx)
}
