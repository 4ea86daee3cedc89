package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/dmitrijs2005/pointfeed/internal/rpc"
	"github.com/dmitrijs2005/pointfeed/internal/server/auth"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "handled", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}

var healthPrefix = "/" + healthpb.Health_ServiceDesc.ServiceName + "/"

// isPublic reports whether method is served without a credential: the
// public feed methods and the health service used by orchestrator probes.
func isPublic(method string) bool {
	return rpc.PublicMethods[method] || strings.HasPrefix(method, healthPrefix)
}

func (s *GRPCServer) authUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if isPublic(info.FullMethod) {
		return handler(ctx, req)
	}

	ctx, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	return handler(ctx, req)
}

func (s *GRPCServer) authStreamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if isPublic(info.FullMethod) {
		return handler(srv, ss)
	}

	ctx, err := s.authenticate(ss.Context())
	if err != nil {
		return err
	}

	return handler(srv, &principalStream{ServerStream: ss, ctx: ctx})
}

// authenticate resolves the bearer credential in the incoming metadata and
// attaches the principal to ctx.
func (s *GRPCServer) authenticate(ctx context.Context) (context.Context, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			header = values[0]
		}
	}

	p, err := s.guard.Resolve(ctx, auth.TokenFromHeader(header))
	if err != nil {
		return nil, s.toStatus(ctx, auth.PublicError(err))
	}

	return auth.WithPrincipal(ctx, p), nil
}

type principalStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *principalStream) Context() context.Context {
	return s.ctx
}
