package follows

import "context"

// Repository stores the directed follow graph.
type Repository interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	FollowingOf(ctx context.Context, followerID string) ([]string, error)
}
