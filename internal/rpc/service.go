package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "pointfeed.v1.FeedService"

// FullMethod returns "/pointfeed.v1.FeedService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods lists the methods callable without a credential.
var PublicMethods = map[string]bool{
	FullMethod("Signup"):               true,
	FullMethod("Login"):                true,
	FullMethod("RequestPasswordReset"): true,
	FullMethod("ResetPassword"):        true,
	FullMethod("Posts"):                true,
	FullMethod("Ping"):                 true,
}

// FeedServiceServer is implemented by the server.
type FeedServiceServer interface {
	Signup(context.Context, *SignupRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Logout(context.Context, *LogoutRequest) (*StatusResponse, error)
	RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*MessageResponse, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*UserResponse, error)
	CreatePost(context.Context, *CreatePostRequest) (*PostResponse, error)
	UpdatePost(context.Context, *UpdatePostRequest) (*PostResponse, error)
	DeletePost(context.Context, *DeletePostRequest) (*PostResponse, error)
	FollowUser(context.Context, *FollowRequest) (*UserResponse, error)
	UnfollowUser(context.Context, *FollowRequest) (*UserResponse, error)
	Posts(context.Context, *PostsRequest) (*PostsResponse, error)
	Feed(context.Context, *FeedRequest) (*PostsResponse, error)
	Ping(context.Context, *PingRequest) (*StatusResponse, error)
	PostAdded(*PostAddedRequest, FeedService_PostAddedServer) error
}

// FeedService_PostAddedServer is the server side of the PostAdded stream.
type FeedService_PostAddedServer interface {
	Send(*Post) error
	grpc.ServerStream
}

type postAddedServer struct {
	grpc.ServerStream
}

func (x *postAddedServer) Send(m *Post) error {
	return x.ServerStream.SendMsg(m)
}

func unary[Req, Resp any](name string, call func(FeedServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FeedServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FeedServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func postAddedHandler(srv any, stream grpc.ServerStream) error {
	m := new(PostAddedRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(FeedServiceServer).PostAdded(m, &postAddedServer{stream})
}

// ServiceDesc describes FeedService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FeedServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Signup", FeedServiceServer.Signup),
		unary("Login", FeedServiceServer.Login),
		unary("Logout", FeedServiceServer.Logout),
		unary("RequestPasswordReset", FeedServiceServer.RequestPasswordReset),
		unary("ResetPassword", FeedServiceServer.ResetPassword),
		unary("CreatePost", FeedServiceServer.CreatePost),
		unary("UpdatePost", FeedServiceServer.UpdatePost),
		unary("DeletePost", FeedServiceServer.DeletePost),
		unary("FollowUser", FeedServiceServer.FollowUser),
		unary("UnfollowUser", FeedServiceServer.UnfollowUser),
		unary("Posts", FeedServiceServer.Posts),
		unary("Feed", FeedServiceServer.Feed),
		unary("Ping", FeedServiceServer.Ping),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "PostAdded",
			Handler:       postAddedHandler,
			ServerStreams: true,
		},
	},
	Metadata: "pointfeed/v1/feed",
}

// RegisterFeedServiceServer registers srv on s.
func RegisterFeedServiceServer(s grpc.ServiceRegistrar, srv FeedServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
