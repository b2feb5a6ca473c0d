package grpc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*ProfileResponse, error) {
	s.logger.Info(ctx, "Registration request", "username", req.Username)

	avatarPath, err := s.stage(req.Avatar)
	if err != nil {
		return nil, err
	}
	coverPath, err := s.stage(req.Cover)
	if err != nil {
		_ = filex.RemoveStaged(avatarPath)
		return nil, err
	}

	profile, err := s.profiles.RegisterWithMedia(ctx, services.RegisterInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	}, avatarPath, coverPath)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{User: profile}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	res, err := s.auth.Login(ctx, req.login(), req.Password)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		User:         res.Profile,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *RefreshRequest) (*TokenResponse, error) {
	pair, err := s.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *Empty) (*Empty, error) {
	id, err := identityID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Logout(ctx, id); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *ChangePasswordRequest) (*Empty, error) {
	id, err := identityID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.ChangePassword(ctx, id, req.OldPassword, req.NewPassword); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *GRPCServer) CurrentUser(ctx context.Context, _ *Empty) (*ProfileResponse, error) {
	id, err := identityID(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.CurrentUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{User: profile}, nil
}

func (s *GRPCServer) UpdateAccountDetails(ctx context.Context, req *UpdateAccountRequest) (*ProfileResponse, error) {
	id, err := identityID(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.UpdateAccountDetails(ctx, id, req.FullName, req.Email)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{User: profile}, nil
}

func (s *GRPCServer) UpdateAvatar(ctx context.Context, req *UpdateImageRequest) (*ProfileResponse, error) {
	return s.updateImage(ctx, req, s.profiles.UpdateAvatar)
}

func (s *GRPCServer) UpdateCover(ctx context.Context, req *UpdateImageRequest) (*ProfileResponse, error) {
	return s.updateImage(ctx, req, s.profiles.UpdateCover)
}

func (s *GRPCServer) updateImage(
	ctx context.Context,
	req *UpdateImageRequest,
	update func(ctx context.Context, identityID, localPath string) (*models.Profile, error),
) (*ProfileResponse, error) {
	id, err := identityID(ctx)
	if err != nil {
		return nil, err
	}
	path, err := s.stage(req.File)
	if err != nil {
		return nil, err
	}
	profile, err := update(ctx, id, path)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{User: profile}, nil
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

func identityID(ctx context.Context) (string, error) {
	id, ok := IdentityIDFromContext(ctx)
	if !ok {
		return "", common.NewError(common.ErrUnauthorized, "unauthorized request")
	}
	return id, nil
}

// stage writes an inline file into the staging directory and returns its
// path. A nil file stages nothing.
func (s *GRPCServer) stage(f *File) (string, error) {
	if f == nil {
		return "", nil
	}
	if len(f.Data) == 0 {
		return "", common.NewError(common.ErrValidation, "file %q is empty", filepath.Base(f.Name))
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(f.Name)))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	tmp, err := os.CreateTemp(s.stagingDir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	defer tmp.Close()

	if _, err := tmp.Write(f.Data); err != nil {
		_ = filex.RemoveStaged(tmp.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return tmp.Name(), nil
}
