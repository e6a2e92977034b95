package repomanager

import (
	"context"
	"database/sql"

	"github.com/htmlvault/htmlvault/internal/dbx"
	"github.com/htmlvault/htmlvault/internal/server/repositories/files"
	"github.com/htmlvault/htmlvault/internal/server/repositories/refreshtokens"
	"github.com/htmlvault/htmlvault/internal/server/repositories/shares"
	"github.com/htmlvault/htmlvault/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run several repositories inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Files(db dbx.DBTX) files.Repository
	Shares(db dbx.DBTX) shares.Repository
}
