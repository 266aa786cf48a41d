// This file implements CredentialService: the generic single-use, expiring
// secret lifecycle shared by the email-verification and password-reset flows.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/isaidso/auth/internal/common"
	"github.com/isaidso/auth/internal/cryptox"
	"github.com/isaidso/auth/internal/dbx"
	"github.com/isaidso/auth/internal/server/config"
	"github.com/isaidso/auth/internal/server/mail"
	"github.com/isaidso/auth/internal/server/models"
	"github.com/isaidso/auth/internal/server/repositories/repomanager"
)

// CredentialService issues and consumes ephemeral credentials. Issuing purges
// any prior credential for the same (subject, purpose); consumption is an
// atomic check-and-delete-and-apply so a token can never be applied twice.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	notifier    mail.Notifier
	tokens      *TokenService
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, notifier mail.Notifier, tokens *TokenService) *CredentialService {
	return &CredentialService{db: db, repomanager: m, config: cfg, notifier: notifier, tokens: tokens}
}

// issue replaces any live credential for (subject, purpose) with a fresh one
// and returns the plaintext secret.
func (s *CredentialService) issue(ctx context.Context, subject, purpose string, ttl time.Duration) (string, error) {
	secret, err := cryptox.MakeRandString(s.config.SecretLength)
	if err != nil {
		return "", common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Credentials(tx)
		if err := repo.DeleteBySubjectPurpose(ctx, subject, purpose); err != nil {
			return err
		}
		_, err := repo.Create(ctx, &models.EphemeralCredential{
			Subject:   subject,
			Purpose:   purpose,
			TokenHash: cryptox.HashSecret(secret),
			ExpiresAt: nowFunc().Add(ttl),
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("error storing credential: %w", err)
	}
	return secret, nil
}

// IssueEmailVerification creates a 24-hour verification credential for the
// user and dispatches the verification email. Mail failure surfaces as
// common.ErrUpstreamFailure.
func (s *CredentialService) IssueEmailVerification(ctx context.Context, user *models.User) error {
	secret, err := s.issue(ctx, user.ID, common.PurposeVerifyEmail, s.config.VerifyEmailTTL)
	if err != nil {
		return err
	}

	link := s.config.FrontendBaseURL + "/verify-email/" + secret
	if err := s.notifier.SendVerificationEmail(ctx, user.Email, user.Name, link); err != nil {
		return fmt.Errorf("%w: %v", common.ErrUpstreamFailure, err)
	}
	return nil
}

// IssuePasswordReset creates a 60-minute reset credential keyed by the email
// address and dispatches the reset email. The caller has already checked that
// the address belongs to a registered user.
func (s *CredentialService) IssuePasswordReset(ctx context.Context, email string) error {
	secret, err := s.issue(ctx, email, common.PurposeResetPassword, s.config.ResetPasswordTTL)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		s.config.FrontendBaseURL, secret, url.QueryEscape(email))
	if err := s.notifier.SendPasswordResetEmail(ctx, email, link); err != nil {
		return fmt.Errorf("%w: %v", common.ErrUpstreamFailure, err)
	}
	return nil
}

// consume claims the credential row inside tx. The row is gone afterwards
// whether it was live or expired; expired rows yield
// common.ErrCredentialExpired.
func (s *CredentialService) consume(ctx context.Context, tx dbx.DBTX, secret, purpose string) (*models.EphemeralCredential, error) {
	cred, err := s.repomanager.Credentials(tx).ConsumeByHash(ctx, cryptox.HashSecret(secret), purpose)
	if err != nil {
		return nil, err
	}
	if cred.ExpiresAt.Before(nowFunc()) {
		return nil, common.ErrCredentialExpired
	}
	return cred, nil
}

// ConsumeEmailVerification redeems a verification token: marks the owning
// account verified, deletes the credential, and issues a fresh token pair
// (auto-login). The whole step is one transaction, so a double submit cannot
// apply the token twice.
func (s *CredentialService) ConsumeEmailVerification(ctx context.Context, secret string) (*models.User, *TokenPair, error) {
	var user *models.User
	var pair *TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cred, err := s.consume(ctx, tx, secret, common.PurposeVerifyEmail)
		if err != nil {
			return err
		}

		usersRepo := s.repomanager.Users(tx)
		if err := usersRepo.MarkEmailVerified(ctx, cred.Subject); err != nil {
			return err
		}
		user, err = usersRepo.GetByID(ctx, cred.Subject)
		if err != nil {
			return err
		}
		pair, err = s.tokens.IssuePair(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		s.dropIfExpired(ctx, err, secret, common.PurposeVerifyEmail)
		return nil, nil, err
	}
	return user, pair, nil
}

// ConsumePasswordReset redeems a reset token for the given email: replaces
// the password hash, deletes the credential, and issues a fresh token pair.
// A token whose stored subject does not match the presented email is treated
// as unknown.
func (s *CredentialService) ConsumePasswordReset(ctx context.Context, secret, email, newPassword string) (*models.User, *TokenPair, error) {
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	var user *models.User
	var pair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cred, err := s.consume(ctx, tx, secret, common.PurposeResetPassword)
		if err != nil {
			return err
		}
		if cred.Subject != email {
			return common.ErrorNotFound
		}

		usersRepo := s.repomanager.Users(tx)
		if err := usersRepo.SetPasswordByEmail(ctx, email, hash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrSubjectMissing
			}
			return err
		}
		user, err = usersRepo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		pair, err = s.tokens.IssuePair(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		s.dropIfExpired(ctx, err, secret, common.PurposeResetPassword)
		return nil, nil, err
	}
	return user, pair, nil
}

// dropIfExpired removes an expired credential row. The deletion inside the
// consuming transaction is rolled back together with it, so expiry detection
// deletes the row again outside the transaction.
func (s *CredentialService) dropIfExpired(ctx context.Context, err error, secret, purpose string) {
	if !errors.Is(err, common.ErrCredentialExpired) {
		return
	}
	_, _ = s.repomanager.Credentials(s.db).ConsumeByHash(ctx, cryptox.HashSecret(secret), purpose)
}
