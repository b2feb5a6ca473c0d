package client

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// Client is the surface the CLI drives.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, in RegisterInput) (*models.Profile, error)
	Login(ctx context.Context, login string, password string) (*models.Profile, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.Profile, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	UpdateAccountDetails(ctx context.Context, fullName, email string) (*models.Profile, error)
	UpdateAvatar(ctx context.Context, path string) (*models.Profile, error)
	UpdateCover(ctx context.Context, path string) (*models.Profile, error)
	LoggedIn() bool
}

// RegisterInput names local image files by path; they are read and sent
// inline with the request. CoverPath may be empty.
type RegisterInput struct {
	Username   string
	FullName   string
	Email      string
	Password   string
	AvatarPath string
	CoverPath  string
}
