// Package users provides IdentityStore implementations: PostgreSQL,
// MongoDB and an in-memory store for development and tests.
package users

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// Repository is the identity store consumed by the auth core.
//
// Implementations enforce uniqueness of username and email and report
// violations as common.ErrConflict; unknown ids as common.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	// FindByLogin matches login against username or email.
	FindByLogin(ctx context.Context, login string) (*models.Identity, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateFields(ctx context.Context, id string, patch models.IdentityPatch) error
	// SwapRefreshToken replaces the stored refresh token with next only if
	// it still equals expected, else returns common.ErrStaleSession.
	SwapRefreshToken(ctx context.Context, id, expected, next string) error
}
