// Package repomanager vends repositories bound to a dbx.DBTX so callers can
// compose several of them inside one transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pointfeed/internal/dbx"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/follows"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/posts"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Follows(db dbx.DBTX) follows.Repository
	Posts(db dbx.DBTX) posts.Repository
	Tokens(db dbx.DBTX) tokens.Repository
}
