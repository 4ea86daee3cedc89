package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/logging"
	"github.com/dmitrijs2005/pointfeed/internal/server/auth"
	"github.com/dmitrijs2005/pointfeed/internal/server/events"
	"github.com/dmitrijs2005/pointfeed/internal/server/feed"
	"github.com/dmitrijs2005/pointfeed/internal/server/media"
	"github.com/dmitrijs2005/pointfeed/internal/server/models"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/repomanager"
)

// FeedLimit caps how many posts Feed returns.
const FeedLimit = 100

type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploader    media.Uploader
	bus         *events.Bus
	log         logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, uploader media.Uploader, bus *events.Bus, log logging.Logger) *PostService {
	return &PostService{
		db:          db,
		repomanager: m,
		uploader:    uploader,
		bus:         bus,
		log:         log.With("module", "posts"),
	}
}

// CreatePost stores a post, uploading its attachment first, and then
// announces it on the post_added topic.
func (s *PostService) CreatePost(ctx context.Context, p *auth.Principal, body string, upload *media.Upload) (*models.Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: post body is required", common.ErrorValidation)
	}

	mediaURL, err := s.upload(ctx, upload)
	if err != nil {
		return nil, err
	}

	post, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{
		AuthorID: p.UserID,
		Body:     body,
		MediaURL: mediaURL,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	n := s.bus.Publish(events.Event{
		Topic:       common.TopicPostAdded,
		AuthorID:    post.AuthorID,
		Payload:     post,
		PublishedAt: post.CreatedAt,
	})
	s.log.Debug(ctx, "post published", "post_id", post.ID, "author_id", post.AuthorID, "recipients", n)

	return post, nil
}

// UpdatePost replaces the body, and the attachment when one is given.
func (s *PostService) UpdatePost(ctx context.Context, p *auth.Principal, postID, body string, upload *media.Upload) (*models.Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: post body is required", common.ErrorValidation)
	}
	if _, err := s.owned(ctx, p, postID); err != nil {
		return nil, err
	}

	mediaURL, err := s.upload(ctx, upload)
	if err != nil {
		return nil, err
	}

	post, err := s.repomanager.Posts(s.db).Update(ctx, postID, body, mediaURL)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating post: %w", err)
	}
	return post, nil
}

// DeletePost hides a post. The row is kept.
func (s *PostService) DeletePost(ctx context.Context, p *auth.Principal, postID string) (*models.Post, error) {
	post, err := s.owned(ctx, p, postID)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Posts(s.db).SoftDelete(ctx, postID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error deleting post: %w", err)
	}
	post.Deleted = true
	return post, nil
}

// Posts lists a user's live posts. It needs no credential.
func (s *PostService) Posts(ctx context.Context, userID string) ([]*models.Post, error) {
	ok, err := s.repomanager.Users(s.db).Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorNoSuchUser
	}
	return s.repomanager.Posts(s.db).ListByAuthor(ctx, userID)
}

// Feed lists the newest live posts of everyone the caller follows.
func (s *PostService) Feed(ctx context.Context, p *auth.Principal) ([]*models.Post, error) {
	return s.repomanager.Posts(s.db).FeedFor(ctx, p.UserID, FeedLimit)
}

// Subscribe opens a live stream of new posts by users the caller follows.
// The follow set is read once, here.
func (s *PostService) Subscribe(ctx context.Context, p *auth.Principal) (*events.Subscription, error) {
	cc, err := feed.NewConnectionContext(ctx, s.repomanager.Follows(s.db), p.UserID)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "subscription opened", "user_id", p.UserID, "following", len(cc.Following))
	return s.bus.Subscribe(ctx, common.TopicPostAdded, cc.Filter()), nil
}

func (s *PostService) owned(ctx context.Context, p *auth.Principal, postID string) (*models.Post, error) {
	post, err := s.repomanager.Posts(s.db).Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != p.UserID {
		return nil, common.ErrorForbidden
	}
	return post, nil
}

func (s *PostService) upload(ctx context.Context, upload *media.Upload) (string, error) {
	if upload == nil {
		return "", nil
	}
	url, err := s.uploader.Upload(ctx, upload)
	if err != nil {
		if errors.Is(err, common.ErrorMediaTooLarge) || errors.Is(err, common.ErrorUnknownMediaType) {
			return "", err
		}
		s.log.Error(ctx, "media upload failed", "error", err)
		return "", fmt.Errorf("error uploading media: %w", err)
	}
	return url, nil
}
