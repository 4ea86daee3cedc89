package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/dbx"
	"github.com/dmitrijs2005/pointfeed/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.IssuedToken) error {
	query := `
		INSERT INTO tokens (token, user_id, issued_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO NOTHING
	`
	var userID any
	if token.UserID != "" {
		userID = token.UserID
	}
	if _, err := r.db.ExecContext(ctx, query,
		token.Token, userID, token.IssuedAt, token.ExpiresAt, token.Revoked); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO tokens (token, expires_at, revoked)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (token) DO UPDATE SET revoked = TRUE
	`
	if _, err := r.db.ExecContext(ctx, query, token, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	query := `SELECT revoked FROM tokens WHERE token = $1`
	var revoked bool
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return revoked, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
