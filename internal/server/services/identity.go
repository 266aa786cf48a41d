// This file implements IdentityService: credential validation, account
// resolution for password and federated logins, and profile updates.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/isaidso/auth/internal/common"
	"github.com/isaidso/auth/internal/cryptox"
	"github.com/isaidso/auth/internal/imagex"
	"github.com/isaidso/auth/internal/server/blob"
	"github.com/isaidso/auth/internal/server/config"
	"github.com/isaidso/auth/internal/server/models"
	"github.com/isaidso/auth/internal/server/repositories/repomanager"
)

const (
	usernameBaseMaxLen = 15
	usernameMaxLen     = 20
)

// IdentityService finds or creates users from password or federated-identity
// input and owns account-linking and profile mutation logic.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
	blobs       blob.Store
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, blobs blob.Store) *IdentityService {
	return &IdentityService{db: db, repomanager: m, config: cfg, blobs: blobs}
}

// Register creates a password account. The caller is responsible for issuing
// the verification credential; the new account starts unverified and cannot
// log in until the email is confirmed.
func (s *IdentityService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		LoginMethod:  common.LoginMethodPassword,
	}
	return s.repomanager.Users(s.db).Create(ctx, user)
}

// ResolveByPassword validates an email/password pair and returns the account.
//
// Error order: unknown email yields common.ErrEmailNotRegistered (this
// product deliberately discloses registration status), an unverified address
// yields common.ErrEmailNotVerified before any password comparison, a
// password-less federated account yields common.ErrWrongLoginMethod, and a
// hash mismatch yields common.ErrBadCredentials. On success last_login_at is
// stamped.
func (s *IdentityService) ResolveByPassword(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrEmailNotRegistered
		}
		return nil, err
	}

	if !user.Verified() {
		return nil, common.ErrEmailNotVerified
	}

	if user.PasswordHash == "" {
		if user.LoginMethod == common.LoginMethodFederated {
			return nil, common.ErrWrongLoginMethod
		}
		return nil, common.ErrBadCredentials
	}
	if !cryptox.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrBadCredentials
	}

	if err := repo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// ResolveOrLinkFederated upserts an account from a federated identity:
// a new account is created verified, an existing unlinked account is linked,
// and an already-linked account has its verification ensured. The call is
// idempotent.
func (s *IdentityService) ResolveOrLinkFederated(ctx context.Context, externalID, email, displayName, avatarURL string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return s.createFederated(ctx, externalID, email, displayName, avatarURL)
	}

	if !user.FederatedID.Valid {
		if err := repo.LinkFederated(ctx, user.ID, externalID); err != nil {
			return nil, err
		}
	} else if !user.Verified() {
		if err := repo.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	if err := repo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, user.ID)
}

func (s *IdentityService) createFederated(ctx context.Context, externalID, email, displayName, avatarURL string) (*models.User, error) {
	username, err := s.GenerateUniqueUsername(ctx, displayName)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:           email,
		Name:            displayName,
		Username:        sql.NullString{String: username, Valid: true},
		AvatarRef:       sql.NullString{String: avatarURL, Valid: avatarURL != ""},
		EmailVerifiedAt: sql.NullTime{Time: nowFunc(), Valid: true},
		LoginMethod:     common.LoginMethodFederated,
		FederatedID:     sql.NullString{String: externalID, Valid: true},
	}
	return s.repomanager.Users(s.db).Create(ctx, user)
}

// GenerateUniqueUsername slugifies a display name (falling back to "user"),
// truncates the base to 15 characters, and appends an increasing integer
// suffix starting at 1 until no collision remains. Total length never
// exceeds 20.
func (s *IdentityService) GenerateUniqueUsername(ctx context.Context, displayName string) (string, error) {
	repo := s.repomanager.Users(s.db)

	base := slugify(displayName)
	if base == "" {
		base = "user"
	}
	if len(base) > usernameBaseMaxLen {
		base = base[:usernameBaseMaxLen]
	}

	candidate := base
	for counter := 1; ; counter++ {
		taken, err := repo.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, counter)
		if len(candidate) > usernameMaxLen {
			candidate = candidate[:usernameMaxLen]
		}
	}
}

// slugify lowercases the input and collapses any run of non-alphanumeric
// characters into a single hyphen.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// UpdateProfileParams carries the mutable profile fields. Nil pointers leave
// the current value untouched; Avatar may be a base64 data URI (uploaded to
// the blob store) or an already-stored reference (kept as is).
type UpdateProfileParams struct {
	Username string
	Name     *string
	Country  *string
	Avatar   *string
}

// UpdateProfile applies the params to the user and marks the profile
// completed. A username collision yields common.ErrorConflict.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Avatar != nil && *params.Avatar != "" {
		ref, err := s.storeAvatar(ctx, *params.Avatar)
		if err != nil {
			return nil, err
		}
		user.AvatarRef = sql.NullString{String: ref, Valid: true}
	}

	user.Username = sql.NullString{String: params.Username, Valid: true}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Country != nil {
		user.Country = sql.NullString{String: *params.Country, Valid: *params.Country != ""}
	}
	user.IsProfileCompleted = true

	if err := repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// storeAvatar uploads data-URI input to the blob store and returns the
// reference; any other string is treated as an existing reference.
func (s *IdentityService) storeAvatar(ctx context.Context, input string) (string, error) {
	img, err := imagex.DecodeDataURI(input)
	if err != nil {
		if errors.Is(err, imagex.ErrNotDataURI) {
			return input, nil
		}
		return "", fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	ref, err := s.blobs.Put(ctx, "avatars", img.Extension, img.Data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUpstreamFailure, err)
	}
	return ref, nil
}

// GetUser loads an account by id.
func (s *IdentityService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// GetUserByEmail loads an account by email address.
func (s *IdentityService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, email)
}
