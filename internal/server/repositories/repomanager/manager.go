// Package repomanager provides a factory for the server's repositories so
// services can bind them to either a plain connection or an open
// transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/moodmapper/moodmapper/internal/dbx"
	"github.com/moodmapper/moodmapper/internal/server/repositories/documents"
	"github.com/moodmapper/moodmapper/internal/server/repositories/refreshtokens"
	"github.com/moodmapper/moodmapper/internal/server/repositories/users"
)

// RepositoryManager constructs repositories bound to the given DBTX.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Documents(db dbx.DBTX) documents.Repository
}
