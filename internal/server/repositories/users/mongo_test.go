package users

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func strPtr(s string) *string { return &s }

func TestUpdateDocument(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		patch models.IdentityPatch
		want  bson.M
	}{
		{
			name:  "profile fields",
			patch: models.IdentityPatch{FullName: strPtr("Bob"), Cover: strPtr("c.png")},
			want: bson.M{"$set": bson.M{
				"updated_at": now, "full_name": "Bob", "cover_image": "c.png",
			}},
		},
		{
			name:  "set refresh token",
			patch: models.IdentityPatch{RefreshToken: strPtr("rt")},
			want:  bson.M{"$set": bson.M{"updated_at": now, "refresh_token": "rt"}},
		},
		{
			name:  "clear wins over set",
			patch: models.IdentityPatch{RefreshToken: strPtr("rt"), ClearRefreshToken: true},
			want: bson.M{
				"$set":   bson.M{"updated_at": now},
				"$unset": bson.M{"refresh_token": ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := updateDocument(tt.patch, now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("updateDocument mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoginFilter(t *testing.T) {
	want := bson.M{"$or": bson.A{bson.M{"username": "alice"}, bson.M{"email": "a@x.io"}}}
	if diff := cmp.Diff(want, loginFilter("alice", "a@x.io")); diff != "" {
		t.Fatalf("loginFilter mismatch (-want +got):\n%s", diff)
	}
}

// newMongoRepo connects to the server named by VIDTUBE_TEST_MONGO_URI and
// returns a repository over a throwaway database.
func newMongoRepo(t *testing.T) *MongoRepository {
	t.Helper()
	uri := os.Getenv("VIDTUBE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("VIDTUBE_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("vidtube_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo := NewMongoRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	return repo
}

func TestMongoRepository_Lifecycle(t *testing.T) {
	repo := newMongoRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Identity{Username: "alice", Email: "a@x.io", FullName: "Alice", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.Create(ctx, &models.Identity{Username: "bob", Email: "a@x.io"}); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate email, got %v", err)
	}

	byLogin, err := repo.FindByLogin(ctx, "a@x.io")
	if err != nil || byLogin.ID != created.ID {
		t.Fatalf("FindByLogin: %+v %v", byLogin, err)
	}

	if err := repo.UpdateFields(ctx, created.ID, models.IdentityPatch{RefreshToken: strPtr("rt-1")}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if err := repo.SwapRefreshToken(ctx, created.ID, "rt-0", "rt-2"); !errors.Is(err, common.ErrStaleSession) {
		t.Fatalf("expected ErrStaleSession, got %v", err)
	}
	if err := repo.SwapRefreshToken(ctx, created.ID, "rt-1", "rt-2"); err != nil {
		t.Fatalf("SwapRefreshToken: %v", err)
	}

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil || got.RefreshToken != "rt-2" {
		t.Fatalf("FindByID: %+v %v", got, err)
	}

	if _, err := repo.FindByID(ctx, "zzz"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
