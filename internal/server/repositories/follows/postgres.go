// Package follows provides the PostgreSQL-backed follow-graph repository.
package follows

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	foreignKeyViolation       = "23503"
	invalidTextRepresentation = "22P02"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Follow records the edge followerID -> followeeID. Following twice is a
// no-op; an unknown followee yields common.ErrorNotFound.
func (r *PostgresRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, followerID, followeeID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == foreignKeyViolation || pgErr.Code == invalidTextRepresentation) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Unfollow removes the edge if present.
func (r *PostgresRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	if _, err := r.db.ExecContext(ctx, query, followerID, followeeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FollowingOf returns the ids followerID follows. The result is a snapshot
// at call time; an unknown follower yields an empty slice.
func (r *PostgresRepository) FollowingOf(ctx context.Context, followerID string) ([]string, error) {
	query := `SELECT followee_id FROM follows WHERE follower_id::text = $1`

	rows, err := r.db.QueryContext(ctx, query, followerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ids, nil
}
