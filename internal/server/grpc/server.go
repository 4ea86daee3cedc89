// Package grpc serves pointfeed.v1.FeedService over gRPC.
package grpc

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/logging"
	"github.com/dmitrijs2005/pointfeed/internal/rpc"
	"github.com/dmitrijs2005/pointfeed/internal/server/auth"
	"github.com/dmitrijs2005/pointfeed/internal/server/events"
	"github.com/dmitrijs2005/pointfeed/internal/server/media"
	"github.com/dmitrijs2005/pointfeed/internal/server/models"
	"github.com/dmitrijs2005/pointfeed/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type userService interface {
	Signup(ctx context.Context, name, email, phone, password string) (*services.AuthPayload, error)
	Login(ctx context.Context, email, phone, password string) (*services.AuthPayload, error)
	Logout(ctx context.Context, p *auth.Principal) error
	RequestPasswordReset(ctx context.Context, email, phone string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) (*models.User, error)
	Follow(ctx context.Context, p *auth.Principal, userID string) (*models.User, error)
	Unfollow(ctx context.Context, p *auth.Principal, userID string) (*models.User, error)
}

type postService interface {
	CreatePost(ctx context.Context, p *auth.Principal, body string, upload *media.Upload) (*models.Post, error)
	UpdatePost(ctx context.Context, p *auth.Principal, postID, body string, upload *media.Upload) (*models.Post, error)
	DeletePost(ctx context.Context, p *auth.Principal, postID string) (*models.Post, error)
	Posts(ctx context.Context, userID string) ([]*models.Post, error)
	Feed(ctx context.Context, p *auth.Principal) ([]*models.Post, error)
	Subscribe(ctx context.Context, p *auth.Principal) (*events.Subscription, error)
}

type principalResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

// shutdownTimeout bounds how long GracefulStop may wait for in-flight RPCs
// before the remaining ones are cut off.
const shutdownTimeout = 5 * time.Second

type GRPCServer struct {
	address string
	users   userService
	posts   postService
	guard   principalResolver
	logger  logging.Logger

	// stopping is closed when Serve begins shutting down; open PostAdded
	// streams end on it so GracefulStop is not held up by them.
	stopping chan struct{}
	stopOnce sync.Once
}

func NewGRPCServer(a string, l logging.Logger, us userService, ps postService, g principalResolver) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		posts:    ps,
		guard:    g,
		stopping: make(chan struct{}),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled. Open PostAdded
// streams are ended first, then the server stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authUnaryInterceptor),
		grpc.ChainStreamInterceptor(s.authStreamInterceptor),
	)

	rpc.RegisterFeedServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		s.stopOnce.Do(func() { close(s.stopping) })

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(shutdownTimeout):
			s.logger.Warn(ctx, "graceful stop timed out, closing remaining RPCs")
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
