package posts

import (
	"context"

	"github.com/dmitrijs2005/pointfeed/internal/server/models"
)

// Repository stores posts. Deleted posts stay in the table and are hidden
// from every listing.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, id, body, mediaURL string) (*models.Post, error)
	SoftDelete(ctx context.Context, id string) error
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	FeedFor(ctx context.Context, followerID string, limit int) ([]*models.Post, error)
}
