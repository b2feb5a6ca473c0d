package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "vidtube.auth.v1.AuthService"

// AuthServiceServer is the server-side surface of the auth service.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*ProfileResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshRequest) (*TokenResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*Empty, error)
	CurrentUser(context.Context, *Empty) (*ProfileResponse, error)
	UpdateAccountDetails(context.Context, *UpdateAccountRequest) (*ProfileResponse, error)
	UpdateAvatar(context.Context, *UpdateImageRequest) (*ProfileResponse, error)
	UpdateCover(context.Context, *UpdateImageRequest) (*ProfileResponse, error)
}

// FullMethod returns the fully qualified gRPC method name.
func FullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

// unary builds the method descriptor for one request/response call.
func unary[Req, Resp any](method string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(AuthServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", AuthServiceServer.Register),
		unary("Login", AuthServiceServer.Login),
		unary("RefreshToken", AuthServiceServer.RefreshToken),
		unary("Logout", AuthServiceServer.Logout),
		unary("ChangePassword", AuthServiceServer.ChangePassword),
		unary("CurrentUser", AuthServiceServer.CurrentUser),
		unary("UpdateAccountDetails", AuthServiceServer.UpdateAccountDetails),
		unary("UpdateAvatar", AuthServiceServer.UpdateAvatar),
		unary("UpdateCover", AuthServiceServer.UpdateCover),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vidtube/auth/v1",
}

// publicMethods are reachable without an access token.
var publicMethods = map[string]bool{
	FullMethod("Register"):     true,
	FullMethod("Login"):        true,
	FullMethod("RefreshToken"): true,
}
