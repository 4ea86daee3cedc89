// Package posts provides the PostgreSQL-backed post repository.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/dbx"
	"github.com/dmitrijs2005/pointfeed/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const postColumns = `id, user_id, body, COALESCE(media_url, ''), deleted, created_at, updated_at`

// Create inserts post and fills in the server-assigned id and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (user_id, body, media_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	var media any
	if post.MediaURL != "" {
		media = post.MediaURL
	}
	if err := r.db.QueryRowContext(ctx, query, post.AuthorID, post.Body, media).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

// Get returns a live post. Deleted or unknown ids yield common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id::text = $1 AND NOT deleted`
	p, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Update replaces the body of a live post. An empty mediaURL keeps the
// current attachment.
func (r *PostgresRepository) Update(ctx context.Context, id, body, mediaURL string) (*models.Post, error) {
	query := `
		UPDATE posts SET body = $2, media_url = COALESCE($3, media_url), updated_at = now()
		WHERE id::text = $1 AND NOT deleted
		RETURNING ` + postColumns
	var media any
	if mediaURL != "" {
		media = mediaURL
	}
	p, err := scanPost(r.db.QueryRowContext(ctx, query, id, body, media))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE posts SET deleted = TRUE, updated_at = now() WHERE id::text = $1 AND NOT deleted`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// ListByAuthor returns authorID's live posts, newest first.
func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE user_id::text = $1 AND NOT deleted
		ORDER BY created_at DESC`
	return r.list(ctx, query, authorID)
}

// FeedFor returns the newest live posts written by anyone followerID follows.
func (r *PostgresRepository) FeedFor(ctx context.Context, followerID string, limit int) ([]*models.Post, error) {
	query := `SELECT p.id, p.user_id, p.body, COALESCE(p.media_url, ''), p.deleted, p.created_at, p.updated_at
		FROM posts p
		JOIN follows f ON f.followee_id = p.user_id
		WHERE f.follower_id::text = $1 AND NOT p.deleted
		ORDER BY p.created_at DESC
		LIMIT $2`
	return r.list(ctx, query, followerID, limit)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*models.Post, error) {
	var p models.Post
	if err := s.Scan(&p.ID, &p.AuthorID, &p.Body, &p.MediaURL, &p.Deleted, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
