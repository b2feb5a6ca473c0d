package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps identities in process memory. Returned values are
// copies; callers never alias stored records.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*models.Identity
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]*models.Identity),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) Create(_ context.Context, identity *models.Identity) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Username == identity.Username {
			return nil, common.NewError(common.ErrConflict, "username %q already taken", identity.Username)
		}
		if strings.EqualFold(existing.Email, identity.Email) {
			return nil, common.NewError(common.ErrConflict, "email %q already taken", identity.Email)
		}
	}

	stored := *identity
	stored.ID = uuid.NewString()
	stored.RefreshToken = ""
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.items[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *item
	return &out, nil
}

func (r *MemoryRepository) FindByLogin(_ context.Context, login string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Username == login || item.Email == login {
			out := *item
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Username == username || strings.EqualFold(item.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) UpdateFields(_ context.Context, id string, patch models.IdentityPatch) error {
	if patch.Empty() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return common.ErrNotFound
	}
	if patch.Email != nil {
		for otherID, other := range r.items {
			if otherID != id && strings.EqualFold(other.Email, *patch.Email) {
				return common.NewError(common.ErrConflict, "email %q already taken", *patch.Email)
			}
		}
	}

	patch.Apply(item)
	item.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) SwapRefreshToken(_ context.Context, id, expected, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.RefreshToken == "" || item.RefreshToken != expected {
		return common.ErrStaleSession
	}
	item.RefreshToken = next
	item.UpdatedAt = r.now()
	return nil
}
