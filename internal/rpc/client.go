package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// FeedServiceClient is the typed client for FeedService. Every call uses the
// JSON codec.
type FeedServiceClient interface {
	Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*MessageResponse, error)
	ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*UserResponse, error)
	CreatePost(ctx context.Context, in *CreatePostRequest, opts ...grpc.CallOption) (*PostResponse, error)
	UpdatePost(ctx context.Context, in *UpdatePostRequest, opts ...grpc.CallOption) (*PostResponse, error)
	DeletePost(ctx context.Context, in *DeletePostRequest, opts ...grpc.CallOption) (*PostResponse, error)
	FollowUser(ctx context.Context, in *FollowRequest, opts ...grpc.CallOption) (*UserResponse, error)
	UnfollowUser(ctx context.Context, in *FollowRequest, opts ...grpc.CallOption) (*UserResponse, error)
	Posts(ctx context.Context, in *PostsRequest, opts ...grpc.CallOption) (*PostsResponse, error)
	Feed(ctx context.Context, in *FeedRequest, opts ...grpc.CallOption) (*PostsResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	PostAdded(ctx context.Context, in *PostAddedRequest, opts ...grpc.CallOption) (FeedService_PostAddedClient, error)
}

// FeedService_PostAddedClient is the client side of the PostAdded stream.
type FeedService_PostAddedClient interface {
	Recv() (*Post, error)
	grpc.ClientStream
}

type feedServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFeedServiceClient(cc grpc.ClientConnInterface) FeedServiceClient {
	return &feedServiceClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *feedServiceClient) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, "Signup", in, opts)
}

func (c *feedServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, "Login", in, opts)
}

func (c *feedServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, "Logout", in, opts)
}

func (c *feedServiceClient) RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, "RequestPasswordReset", in, opts)
}

func (c *feedServiceClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, "ResetPassword", in, opts)
}

func (c *feedServiceClient) CreatePost(ctx context.Context, in *CreatePostRequest, opts ...grpc.CallOption) (*PostResponse, error) {
	return invoke[PostResponse](ctx, c.cc, "CreatePost", in, opts)
}

func (c *feedServiceClient) UpdatePost(ctx context.Context, in *UpdatePostRequest, opts ...grpc.CallOption) (*PostResponse, error) {
	return invoke[PostResponse](ctx, c.cc, "UpdatePost", in, opts)
}

func (c *feedServiceClient) DeletePost(ctx context.Context, in *DeletePostRequest, opts ...grpc.CallOption) (*PostResponse, error) {
	return invoke[PostResponse](ctx, c.cc, "DeletePost", in, opts)
}

func (c *feedServiceClient) FollowUser(ctx context.Context, in *FollowRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, "FollowUser", in, opts)
}

func (c *feedServiceClient) UnfollowUser(ctx context.Context, in *FollowRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, "UnfollowUser", in, opts)
}

func (c *feedServiceClient) Posts(ctx context.Context, in *PostsRequest, opts ...grpc.CallOption) (*PostsResponse, error) {
	return invoke[PostsResponse](ctx, c.cc, "Posts", in, opts)
}

func (c *feedServiceClient) Feed(ctx context.Context, in *FeedRequest, opts ...grpc.CallOption) (*PostsResponse, error) {
	return invoke[PostsResponse](ctx, c.cc, "Feed", in, opts)
}

func (c *feedServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, "Ping", in, opts)
}

func (c *feedServiceClient) PostAdded(ctx context.Context, in *PostAddedRequest, opts ...grpc.CallOption) (FeedService_PostAddedClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], FullMethod("PostAdded"), withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &postAddedClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type postAddedClient struct {
	grpc.ClientStream
}

func (x *postAddedClient) Recv() (*Post, error) {
	m := new(Post)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
