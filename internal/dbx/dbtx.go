// Package dbx holds the small database/sql seam the repositories are written
// against.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is implemented by *sql.DB and *sql.Tx, so a repository bound to one
// works unchanged inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn in a transaction. Signup uses it to store the user and the
// first issued credential together.
//
// The transaction is rolled back when fn returns an error or panics; a panic
// is re-raised after the rollback. fn's error is returned as is.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		committed = true
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
