package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/isaidso/auth/internal/common"
	"github.com/isaidso/auth/internal/dbx"
	"github.com/isaidso/auth/internal/server/config"
	"github.com/isaidso/auth/internal/server/models"
	credsrepo "github.com/isaidso/auth/internal/server/repositories/credentials"
	devicesrepo "github.com/isaidso/auth/internal/server/repositories/devices"
	tokensrepo "github.com/isaidso/auth/internal/server/repositories/tokens"
	usersrepo "github.com/isaidso/auth/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		FrontendBaseURL:  "http://frontend.test",
		AccessTokenTTL:   3 * time.Minute,
		RefreshTokenTTL:  20 * time.Minute,
		VerifyEmailTTL:   24 * time.Hour,
		ResetPasswordTTL: time.Hour,
		SecretLength:     64,
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- in-memory repositories ---

type fakeUsersRepo struct {
	seq     int
	byID    map[string]*models.User
	taken   map[string]bool
	lastErr error // forced error for every call when set
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}, taken: map[string]bool{}}
}

func (f *fakeUsersRepo) add(u *models.User) *models.User {
	if u.ID == "" {
		f.seq++
		u.ID = fmt.Sprintf("u%d", f.seq)
	}
	f.byID[u.ID] = u
	if u.Username.Valid {
		f.taken[u.Username.String] = true
	}
	return u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	return f.add(u), nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	if f.lastErr != nil {
		return false, f.lastErr
	}
	return f.taken[username], nil
}

func (f *fakeUsersRepo) UpdateLastLogin(ctx context.Context, id string) error {
	if f.lastErr != nil {
		return f.lastErr
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.LastLoginAt = sql.NullTime{Time: time.Now(), Valid: true}
	return nil
}

func (f *fakeUsersRepo) MarkEmailVerified(ctx context.Context, id string) error {
	if f.lastErr != nil {
		return f.lastErr
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	if !u.EmailVerifiedAt.Valid {
		u.EmailVerifiedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	return nil
}

func (f *fakeUsersRepo) SetPasswordByEmail(ctx context.Context, email, passwordHash string) error {
	if f.lastErr != nil {
		return f.lastErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeUsersRepo) LinkFederated(ctx context.Context, id, federatedID string) error {
	if f.lastErr != nil {
		return f.lastErr
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.FederatedID = sql.NullString{String: federatedID, Valid: true}
	u.LoginMethod = common.LoginMethodFederated
	if !u.EmailVerifiedAt.Valid {
		u.EmailVerifiedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	return nil
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	if f.lastErr != nil {
		return f.lastErr
	}
	if u.Username.Valid && f.taken[u.Username.String] {
		if cur, ok := f.byID[u.ID]; !ok || !cur.Username.Valid || cur.Username.String != u.Username.String {
			return common.ErrorConflict
		}
	}
	f.byID[u.ID] = u
	return nil
}

type fakeTokensRepo struct {
	seq    int
	byID   map[string]*models.Token
	setErr error
}

func newFakeTokensRepo() *fakeTokensRepo {
	return &fakeTokensRepo{byID: map[string]*models.Token{}}
}

func (f *fakeTokensRepo) Create(ctx context.Context, token *models.Token) (*models.Token, error) {
	if f.setErr != nil {
		return nil, f.setErr
	}
	f.seq++
	token.ID = fmt.Sprintf("t%d", f.seq)
	f.byID[token.ID] = token
	return token, nil
}

func (f *fakeTokensRepo) FindByHash(ctx context.Context, hash string) (*models.Token, error) {
	if f.setErr != nil {
		return nil, f.setErr
	}
	for _, token := range f.byID {
		if token.TokenHash == hash {
			return token, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTokensRepo) DeleteByID(ctx context.Context, id string) (int64, error) {
	if f.setErr != nil {
		return 0, f.setErr
	}
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	delete(f.byID, id)
	return 1, nil
}

func (f *fakeTokensRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64
	for id, token := range f.byID {
		if token.ExpiresAt.Before(time.Now()) {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

type fakeCredsRepo struct {
	seq    int
	byID   map[string]*models.EphemeralCredential
	setErr error
}

func newFakeCredsRepo() *fakeCredsRepo {
	return &fakeCredsRepo{byID: map[string]*models.EphemeralCredential{}}
}

func (f *fakeCredsRepo) Create(ctx context.Context, cred *models.EphemeralCredential) (*models.EphemeralCredential, error) {
	if f.setErr != nil {
		return nil, f.setErr
	}
	f.seq++
	cred.ID = fmt.Sprintf("c%d", f.seq)
	f.byID[cred.ID] = cred
	return cred, nil
}

func (f *fakeCredsRepo) DeleteBySubjectPurpose(ctx context.Context, subject, purpose string) error {
	if f.setErr != nil {
		return f.setErr
	}
	for id, cred := range f.byID {
		if cred.Subject == subject && cred.Purpose == purpose {
			delete(f.byID, id)
		}
	}
	return nil
}

func (f *fakeCredsRepo) ConsumeByHash(ctx context.Context, hash, purpose string) (*models.EphemeralCredential, error) {
	if f.setErr != nil {
		return nil, f.setErr
	}
	for id, cred := range f.byID {
		if cred.TokenHash == hash && cred.Purpose == purpose {
			delete(f.byID, id)
			return cred, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeDevicesRepo struct {
	upserts []string
	setErr  error
}

func (f *fakeDevicesRepo) Upsert(ctx context.Context, userID, ipAddress, deviceClass string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.upserts = append(f.upserts, userID+"|"+ipAddress+"|"+deviceClass)
	return nil
}

// fakeRepoManager hands out the same fakes regardless of the db handle, so
// code running inside dbx.WithTx shares state with code on the pool.
type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTokensRepo
	c *fakeCredsRepo
	d *fakeDevicesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		t: newFakeTokensRepo(),
		c: newFakeCredsRepo(),
		d: &fakeDevicesRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Tokens(db dbx.DBTX) tokensrepo.Repository     { return m.t }
func (m *fakeRepoManager) Credentials(db dbx.DBTX) credsrepo.Repository { return m.c }
func (m *fakeRepoManager) Devices(db dbx.DBTX) devicesrepo.Repository   { return m.d }

// --- collaborator fakes ---

type fakeNotifier struct {
	verifyLinks []string
	resetLinks  []string
	sendErr     error
}

func (f *fakeNotifier) SendVerificationEmail(ctx context.Context, to, name, link string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.verifyLinks = append(f.verifyLinks, link)
	return nil
}

func (f *fakeNotifier) SendPasswordResetEmail(ctx context.Context, to, link string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.resetLinks = append(f.resetLinks, link)
	return nil
}

type fakeBlobStore struct {
	puts   int
	putErr error
}

func (f *fakeBlobStore) Put(ctx context.Context, folder, extension string, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts++
	return fmt.Sprintf("%s/blob-%d.%s", folder, f.puts, extension), nil
}
