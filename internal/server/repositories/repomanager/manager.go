package repomanager

import (
	"context"
	"database/sql"

	"github.com/vkuzmin/dockeeper/internal/dbx"
	"github.com/vkuzmin/dockeeper/internal/server/repositories/documents"
	"github.com/vkuzmin/dockeeper/internal/server/repositories/refreshtokens"
	"github.com/vkuzmin/dockeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can use
// the same repository code inside or outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Documents(db dbx.DBTX) documents.Repository
}
