package repomanager

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

type MongoRepositoryManager struct {
	client *mongo.Client
	repo   *users.MongoRepository
}

func NewMongoRepositoryManager(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, wrapOpen("mongo", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, wrapOpen("mongo", err)
	}

	return &MongoRepositoryManager{
		client: client,
		repo:   users.NewMongoRepository(client.Database(database)),
	}, nil
}

func (m *MongoRepositoryManager) Migrate(ctx context.Context) error {
	return m.repo.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Users() users.Repository { return m.repo }

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
