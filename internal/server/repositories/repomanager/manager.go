package repomanager

import (
	"context"
	"database/sql"

	"github.com/ficomdev/ficomtest/internal/dbx"
	"github.com/ficomdev/ficomtest/internal/server/repositories/refreshtokens"
	"github.com/ficomdev/ficomtest/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
