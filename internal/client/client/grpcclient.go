package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      rpc.FeedServiceClient

	mu    sync.RWMutex
	token string
}

func withToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) unaryInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if _, ok := ctx.Deadline(); !ok && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return invoker(withToken(ctx, s.currentToken()), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(withToken(ctx, s.currentToken()), desc, cc, method, opts...)
}

// NewFeedClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults.
func NewFeedClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.unaryInterceptor),
		grpc.WithStreamInterceptor(c.streamInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = rpc.NewFeedServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *GRPCClient) LoggedIn() bool {
	return s.currentToken() != ""
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Signup(ctx context.Context, name, email, phone string, password []byte) (*rpc.User, error) {

	resp, err := s.client.Signup(ctx, &rpc.SignupRequest{Name: name, Email: email, PhoneNumber: phone, Password: string(password)})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.setToken(resp.Token)
	return resp.User, nil
}

func (s *GRPCClient) Login(ctx context.Context, email, phone string, password []byte) (*rpc.User, error) {

	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Email: email, PhoneNumber: phone, Password: string(password)})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.setToken(resp.Token)
	return resp.User, nil
}

// Logout revokes the current credential on the server and forgets it. The
// local credential is dropped even if the server call fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}

	_, err := s.client.Logout(ctx, &rpc.LogoutRequest{})
	s.setToken("")

	return s.mapError(err)
}

func (s *GRPCClient) RequestPasswordReset(ctx context.Context, email, phone string) (string, error) {

	resp, err := s.client.RequestPasswordReset(ctx, &rpc.RequestPasswordResetRequest{Email: email, PhoneNumber: phone})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Message, nil
}

func (s *GRPCClient) ResetPassword(ctx context.Context, resetToken string, password []byte) (*rpc.User, error) {

	resp, err := s.client.ResetPassword(ctx, &rpc.ResetPasswordRequest{ResetToken: resetToken, NewPassword: string(password)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) CreatePost(ctx context.Context, body string, upload *rpc.MediaUpload) (*rpc.Post, error) {

	resp, err := s.client.CreatePost(ctx, &rpc.CreatePostRequest{Body: body, Upload: upload})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Post, nil
}

func (s *GRPCClient) UpdatePost(ctx context.Context, postID, body string, upload *rpc.MediaUpload) (*rpc.Post, error) {

	resp, err := s.client.UpdatePost(ctx, &rpc.UpdatePostRequest{PostID: postID, Body: body, Upload: upload})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Post, nil
}

func (s *GRPCClient) DeletePost(ctx context.Context, postID string) (*rpc.Post, error) {

	resp, err := s.client.DeletePost(ctx, &rpc.DeletePostRequest{PostID: postID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Post, nil
}

func (s *GRPCClient) Follow(ctx context.Context, userID string) (*rpc.User, error) {

	resp, err := s.client.FollowUser(ctx, &rpc.FollowRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) Unfollow(ctx context.Context, userID string) (*rpc.User, error) {

	resp, err := s.client.UnfollowUser(ctx, &rpc.FollowRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) Posts(ctx context.Context, userID string) ([]*rpc.Post, error) {

	resp, err := s.client.Posts(ctx, &rpc.PostsRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Posts, nil
}

func (s *GRPCClient) Feed(ctx context.Context) ([]*rpc.Post, error) {

	resp, err := s.client.Feed(ctx, &rpc.FeedRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Posts, nil
}

func (s *GRPCClient) Watch(ctx context.Context, fn func(*rpc.Post)) error {

	stream, err := s.client.PostAdded(ctx, &rpc.PostAddedRequest{})
	if err != nil {
		return s.mapError(err)
	}

	for {
		post, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return s.mapError(err)
		}
		fn(post)
	}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		// the credential is no longer accepted; forget it
		s.setToken("")
		return ErrUnauthorized
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument, codes.NotFound, codes.AlreadyExists, codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
