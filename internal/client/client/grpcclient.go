package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vidtube/internal/common"
	api "github.com/dmitrijs2005/vidtube/internal/server/grpc"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var publicMethods = map[string]bool{
	api.FullMethod("Register"):     true,
	api.FullMethod("Login"):        true,
	api.FullMethod("RefreshToken"): true,
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewGRPCClient prepares a lazy connection to endpointURL. Extra dial
// options are appended after the defaults.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *GRPCClient) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, c.refreshToken = access, refresh
}

// dropTokens forgets the held pair if its refresh token is still refresh.
func (c *GRPCClient) dropTokens(refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refreshToken == refresh {
		c.accessToken, c.refreshToken = "", ""
	}
}

// LoggedIn reports whether a token pair is held.
func (c *GRPCClient) LoggedIn() bool {
	access, _ := c.tokens()
	return access != ""
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if publicMethods[method] || !strings.HasPrefix(method, api.FullMethod("")) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, refresh := c.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated || refresh == "" {
		return err
	}

	if rerr := c.Refresh(ctx); rerr != nil {
		return err
	}

	access, _ = c.tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func (c *GRPCClient) call(ctx context.Context, method string, req, reply any) error {
	return mapError(c.conn.Invoke(ctx, api.FullMethod(method), req, reply))
}

// Ping asks the standard health service for the overall server status.
func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{},
		grpc.CallContentSubtype("proto"))
	if err != nil {
		return mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	req := &api.RegisterRequest{
		Username: in.Username,
		FullName: in.FullName,
		Email:    in.Email,
		Password: in.Password,
	}

	var err error
	if req.Avatar, err = readFile(in.AvatarPath); err != nil {
		return nil, err
	}
	if req.Cover, err = readFile(in.CoverPath); err != nil {
		return nil, err
	}

	var resp api.ProfileResponse
	if err := c.call(ctx, "Register", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login accepts either a username or an email as login.
func (c *GRPCClient) Login(ctx context.Context, login string, password string) (*models.Profile, error) {
	req := &api.LoginRequest{Password: password}
	if strings.Contains(login, "@") {
		req.Email = login
	} else {
		req.Username = login
	}

	var resp api.LoginResponse
	if err := c.call(ctx, "Login", req, &resp); err != nil {
		return nil, err
	}

	c.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.User, nil
}

// Refresh exchanges the held refresh token for a new pair. A pair the
// server rejects is dropped, so the client reports itself logged out.
func (c *GRPCClient) Refresh(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh == "" {
		return ErrNotLoggedIn
	}

	var resp api.TokenResponse
	if err := c.call(ctx, "RefreshToken", &api.RefreshRequest{RefreshToken: refresh}, &resp); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.dropTokens(refresh)
		}
		return err
	}

	c.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout ends the server session and forgets the local tokens. The tokens
// are dropped even when the server call fails.
func (c *GRPCClient) Logout(ctx context.Context) error {
	if !c.LoggedIn() {
		return ErrNotLoggedIn
	}
	defer c.setTokens("", "")

	return c.call(ctx, "Logout", &api.Empty{}, &api.Empty{})
}

func (c *GRPCClient) CurrentUser(ctx context.Context) (*models.Profile, error) {
	var resp api.ProfileResponse
	if err := c.call(ctx, "CurrentUser", &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *GRPCClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := &api.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.call(ctx, "ChangePassword", req, &api.Empty{})
}

func (c *GRPCClient) UpdateAccountDetails(ctx context.Context, fullName, email string) (*models.Profile, error) {
	var resp api.ProfileResponse
	if err := c.call(ctx, "UpdateAccountDetails", &api.UpdateAccountRequest{FullName: fullName, Email: email}, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *GRPCClient) UpdateAvatar(ctx context.Context, path string) (*models.Profile, error) {
	return c.updateImage(ctx, "UpdateAvatar", path)
}

func (c *GRPCClient) UpdateCover(ctx context.Context, path string) (*models.Profile, error) {
	return c.updateImage(ctx, "UpdateCover", path)
}

func (c *GRPCClient) updateImage(ctx context.Context, method, path string) (*models.Profile, error) {
	file, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var resp api.ProfileResponse
	if err := c.call(ctx, method, &api.UpdateImageRequest{File: file}, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// readFile loads a local image for upload. An empty path yields nil.
func readFile(path string) (*api.File, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	return &api.File{Name: filepath.Base(path), Data: data}, nil
}

// mapError turns gRPC statuses into the package's sentinel errors while
// keeping the server's message readable.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrConflict, st.Message())
	case codes.InvalidArgument, codes.NotFound:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
