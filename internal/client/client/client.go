package client

import (
	"context"

	"github.com/dmitrijs2005/pointfeed/internal/rpc"
)

type Client interface {
	Close() error
	LoggedIn() bool
	Ping(ctx context.Context) error

	Signup(ctx context.Context, name, email, phone string, password []byte) (*rpc.User, error)
	Login(ctx context.Context, email, phone string, password []byte) (*rpc.User, error)
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email, phone string) (string, error)
	ResetPassword(ctx context.Context, resetToken string, password []byte) (*rpc.User, error)

	CreatePost(ctx context.Context, body string, upload *rpc.MediaUpload) (*rpc.Post, error)
	UpdatePost(ctx context.Context, postID, body string, upload *rpc.MediaUpload) (*rpc.Post, error)
	DeletePost(ctx context.Context, postID string) (*rpc.Post, error)
	Follow(ctx context.Context, userID string) (*rpc.User, error)
	Unfollow(ctx context.Context, userID string) (*rpc.User, error)
	Posts(ctx context.Context, userID string) ([]*rpc.Post, error)
	Feed(ctx context.Context) ([]*rpc.Post, error)

	// Watch calls fn for every new post by a followed author until ctx is
	// done or the stream breaks.
	Watch(ctx context.Context, fn func(*rpc.Post)) error
}
