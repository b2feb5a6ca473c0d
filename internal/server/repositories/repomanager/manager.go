// Package repomanager opens the configured identity storage backend and
// hands out the users repository bound to it.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
)

// RepositoryManager owns a storage connection for the lifetime of the server.
type RepositoryManager interface {
	// Migrate brings the backend schema (tables or indexes) up to date.
	Migrate(ctx context.Context) error
	Users() users.Repository
	Close(ctx context.Context) error
}

// New opens the backend named by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		return NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.StorageMongo:
		return NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.StorageMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, common.NewError(common.ErrConfiguration, "unknown storage backend %q", cfg.StorageBackend)
	}
}

// MemoryRepositoryManager serves a process-local store.
type MemoryRepositoryManager struct {
	repo *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{repo: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Migrate(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users() users.Repository { return m.repo }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }

func wrapOpen(backend string, err error) error {
	return common.NewError(common.ErrInternal, "open %s storage", backend).WithCause(err)
}
