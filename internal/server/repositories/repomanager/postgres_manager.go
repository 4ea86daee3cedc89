package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pointfeed/internal/dbx"
	"github.com/dmitrijs2005/pointfeed/internal/server/migrations"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/follows"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/posts"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var gooseUpContext = goose.UpContext

type PostgresRepositoryManager struct {
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Follows(db dbx.DBTX) follows.Repository {
	return follows.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Posts(db dbx.DBTX) posts.Repository {
	return posts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tokens(db dbx.DBTX) tokens.Repository {
	return tokens.NewPostgresRepository(db)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {

	m := &PostgresRepositoryManager{}

	return m, nil
}
