// Package repomanager vends repository implementations bound to a database
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/isaidso/auth/internal/dbx"
	"github.com/isaidso/auth/internal/server/repositories/credentials"
	"github.com/isaidso/auth/internal/server/repositories/devices"
	"github.com/isaidso/auth/internal/server/repositories/tokens"
	"github.com/isaidso/auth/internal/server/repositories/users"
)

// RepositoryManager constructs repositories over either the pool or a
// transaction handle, so services can compose repositories inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Devices(db dbx.DBTX) devices.Repository
}
