package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/isaidso/auth/internal/common"
	"github.com/isaidso/auth/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	mock.ExpectQuery(`INSERT INTO ephemeral_credentials`).
		WithArgs("u1", common.PurposeVerifyEmail, "digest", expires).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("c-1", time.Now()))

	cred := &models.EphemeralCredential{
		Subject:   "u1",
		Purpose:   common.PurposeVerifyEmail,
		TokenHash: "digest",
		ExpiresAt: expires,
	}
	got, err := repo.Create(context.Background(), cred)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "c-1" {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO ephemeral_credentials`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.EphemeralCredential{Subject: "u1"})
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("want ErrorConflict, got %v", err)
	}
}

func TestConsumeByHash_ReturnsDeletedRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	mock.ExpectQuery(`(?s)DELETE FROM ephemeral_credentials\s+WHERE token_hash = \$1 AND purpose = \$2\s+RETURNING`).
		WithArgs("digest", common.PurposeResetPassword).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "subject", "purpose", "token_hash", "expires_at", "created_at",
		}).AddRow("c-1", "r@b.c", common.PurposeResetPassword, "digest", expires, time.Now()))

	got, err := repo.ConsumeByHash(context.Background(), "digest", common.PurposeResetPassword)
	if err != nil {
		t.Fatalf("ConsumeByHash error: %v", err)
	}
	if got.Subject != "r@b.c" {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestConsumeByHash_AlreadyConsumed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`DELETE FROM ephemeral_credentials`).
		WithArgs("digest", common.PurposeResetPassword).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ConsumeByHash(context.Background(), "digest", common.PurposeResetPassword)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDeleteBySubjectPurpose(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM ephemeral_credentials WHERE subject = \$1 AND purpose = \$2`).
		WithArgs("u1", common.PurposeVerifyEmail).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteBySubjectPurpose(context.Background(), "u1", common.PurposeVerifyEmail); err != nil {
		t.Fatalf("DeleteBySubjectPurpose error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
