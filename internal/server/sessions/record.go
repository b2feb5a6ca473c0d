package sessions

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
)

// RecordStore keeps the session on the identity record itself.
type RecordStore struct {
	users users.Repository
}

func NewRecordStore(repo users.Repository) *RecordStore {
	return &RecordStore{users: repo}
}

func (s *RecordStore) Set(ctx context.Context, identityID, token string) error {
	return s.users.UpdateFields(ctx, identityID, models.IdentityPatch{RefreshToken: &token})
}

func (s *RecordStore) Get(ctx context.Context, identityID string) (string, bool, error) {
	identity, err := s.users.FindByID(ctx, identityID)
	if err != nil {
		return "", false, err
	}
	return identity.RefreshToken, identity.RefreshToken != "", nil
}

func (s *RecordStore) Rotate(ctx context.Context, identityID, expected, next string) error {
	return s.users.SwapRefreshToken(ctx, identityID, expected, next)
}

func (s *RecordStore) Clear(ctx context.Context, identityID string) error {
	return s.users.UpdateFields(ctx, identityID, models.IdentityPatch{ClearRefreshToken: true})
}
