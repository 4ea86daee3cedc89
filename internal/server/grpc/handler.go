package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/rpc"
	"github.com/dmitrijs2005/pointfeed/internal/server/auth"
	"github.com/dmitrijs2005/pointfeed/internal/server/media"
	"github.com/dmitrijs2005/pointfeed/internal/server/models"
	"github.com/dmitrijs2005/pointfeed/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Signup(ctx context.Context, req *rpc.SignupRequest) (*rpc.AuthResponse, error) {

	s.logger.Info(ctx, "Signup request")

	result, err := s.users.Signup(ctx, req.Name, req.Email, req.PhoneNumber, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return toAuthResponse(result), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.AuthResponse, error) {

	result, err := s.users.Login(ctx, req.Email, req.PhoneNumber, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return toAuthResponse(result), nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *rpc.LogoutRequest) (*rpc.StatusResponse, error) {

	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.users.Logout(ctx, p); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.StatusResponse{Status: "Success"}, nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *rpc.RequestPasswordResetRequest) (*rpc.MessageResponse, error) {

	msg, err := s.users.RequestPasswordReset(ctx, req.Email, req.PhoneNumber)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.MessageResponse{Message: msg}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *rpc.ResetPasswordRequest) (*rpc.UserResponse, error) {

	user, err := s.users.ResetPassword(ctx, req.ResetToken, req.NewPassword)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.UserResponse{User: rpc.NewUser(user)}, nil
}

func (s *GRPCServer) CreatePost(ctx context.Context, req *rpc.CreatePostRequest) (*rpc.PostResponse, error) {

	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.CreatePost(ctx, p, req.Body, toUpload(req.Upload))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.PostResponse{Post: rpc.NewPost(post)}, nil
}

func (s *GRPCServer) UpdatePost(ctx context.Context, req *rpc.UpdatePostRequest) (*rpc.PostResponse, error) {

	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.UpdatePost(ctx, p, req.PostID, req.Body, toUpload(req.Upload))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.PostResponse{Post: rpc.NewPost(post)}, nil
}

func (s *GRPCServer) DeletePost(ctx context.Context, req *rpc.DeletePostRequest) (*rpc.PostResponse, error) {

	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.DeletePost(ctx, p, req.PostID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.PostResponse{Post: rpc.NewPost(post)}, nil
}

func (s *GRPCServer) FollowUser(ctx context.Context, req *rpc.FollowRequest) (*rpc.UserResponse, error) {

	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Follow(ctx, p, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.UserResponse{User: rpc.NewUser(user)}, nil
}

func (s *GRPCServer) UnfollowUser(ctx context.Context, req *rpc.FollowRequest) (*rpc.UserResponse, error) {

	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Unfollow(ctx, p, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.UserResponse{User: rpc.NewUser(user)}, nil
}

func (s *GRPCServer) Posts(ctx context.Context, req *rpc.PostsRequest) (*rpc.PostsResponse, error) {

	posts, err := s.posts.Posts(ctx, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.PostsResponse{Posts: rpc.NewPosts(posts)}, nil
}

func (s *GRPCServer) Feed(ctx context.Context, _ *rpc.FeedRequest) (*rpc.PostsResponse, error) {

	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.Feed(ctx, p)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.PostsResponse{Posts: rpc.NewPosts(posts)}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *rpc.PingRequest) (*rpc.StatusResponse, error) {

	return &rpc.StatusResponse{Status: "OK"}, nil

}

// PostAdded streams new posts by authors the caller follows until the
// client goes away or the server shuts down.
func (s *GRPCServer) PostAdded(_ *rpc.PostAddedRequest, stream rpc.FeedService_PostAddedServer) error {
	ctx := stream.Context()

	p, err := principal(ctx)
	if err != nil {
		return err
	}

	sub, err := s.posts.Subscribe(ctx, p)
	if err != nil {
		return s.toStatus(ctx, err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopping:
			return nil
		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			post, ok := ev.Payload.(*models.Post)
			if !ok {
				continue
			}
			if err := stream.Send(rpc.NewPost(post)); err != nil {
				return err
			}
		}
	}
}

func principal(ctx context.Context) (*auth.Principal, error) {
	p, ok := auth.PrincipalFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}
	return p, nil
}

// toStatus maps service errors onto gRPC status codes. Unexpected errors are
// logged and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, common.ErrorRateLimited):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorContactRequired),
		errors.Is(err, common.ErrorInvalidLoginPassword),
		errors.Is(err, common.ErrorCannotFollow),
		errors.Is(err, common.ErrorCannotUnfollow),
		errors.Is(err, common.ErrorNoSuchUser),
		errors.Is(err, common.ErrorMediaTooLarge),
		errors.Is(err, common.ErrorUnknownMediaType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func toAuthResponse(a *services.AuthPayload) *rpc.AuthResponse {
	return &rpc.AuthResponse{
		Token:     a.Token,
		ExpiresAt: a.ExpiresAt.UnixMilli(),
		User:      rpc.NewUser(a.User),
	}
}

func toUpload(u *rpc.MediaUpload) *media.Upload {
	if u == nil {
		return nil
	}
	return &media.Upload{
		Filename: u.Filename,
		FileType: media.FileType(strings.ToUpper(u.FileType)),
		Content:  u.Content,
	}
}
