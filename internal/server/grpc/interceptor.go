package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityIDKey ctxKey = "identityID"

// IdentityIDFromContext returns the identity an authenticated call runs as.
func IdentityIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityIDKey).(string)
	return id, ok && id != ""
}

// accessToken reads the token from the access_token metadata key, falling
// back to "authorization: Bearer <token>".
func accessToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 && values[0] != "" {
		return values[0]
	}
	for _, v := range md.Get(common.AuthorizationHeaderName) {
		if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
			return strings.TrimSpace(v[7:])
		}
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if !strings.HasPrefix(info.FullMethod, "/"+serviceName+"/") || publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	token := accessToken(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	identityID, err := s.verifier.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, toStatus(err)
	}

	return handler(context.WithValue(ctx, identityIDKey, identityID), req)
}

// statusInterceptor turns service errors into gRPC statuses and logs
// failures that are not the caller's fault.
func (s *GRPCServer) statusInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	if err == nil {
		return resp, nil
	}

	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, "request failed", "method", info.FullMethod, "error", err)
	}
	return nil, st
}
