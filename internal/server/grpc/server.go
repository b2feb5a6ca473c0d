// Package grpc exposes the auth and profile services over gRPC and gates
// protected methods behind access-token verification.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// maxMessageSize leaves room for inline avatar and cover images.
const maxMessageSize = 16 << 20

type accessVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (string, error)
}

type GRPCServer struct {
	address    string
	auth       *services.AuthService
	profiles   *services.ProfileService
	verifier   accessVerifier
	stagingDir string
	logger     logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as *services.AuthService, ps *services.ProfileService, stagingDir string) (*GRPCServer, error) {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		auth:       as,
		profiles:   ps,
		verifier:   as,
		stagingDir: stagingDir,
	}, nil
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.ChainUnaryInterceptor(s.statusInterceptor, s.accessTokenInterceptor),
	)

	srv.RegisterService(&authServiceDesc, s)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	return srv, hs
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
// It returns once the stop goroutine has exited, also when srv.Serve fails.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, hs := s.newServer()

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			hs.Shutdown()
			srv.GracefulStop()
		case <-done:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	err := srv.Serve(lis)
	close(done)
	<-stopped

	return err
}
