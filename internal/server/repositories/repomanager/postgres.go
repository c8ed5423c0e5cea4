package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/moodmapper/moodmapper/internal/dbx"
	"github.com/moodmapper/moodmapper/internal/server/migrations"
	"github.com/moodmapper/moodmapper/internal/server/repositories/documents"
	"github.com/moodmapper/moodmapper/internal/server/repositories/refreshtokens"
	"github.com/moodmapper/moodmapper/internal/server/repositories/users"
)

// PostgresRepositoryManager builds the PostgreSQL repositories.
type PostgresRepositoryManager struct {
}

// NewPostgresRepositoryManager constructs the manager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
