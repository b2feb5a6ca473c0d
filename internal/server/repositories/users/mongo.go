package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const usersCollection = "users"

type identityDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Username     string        `bson:"username"`
	Email        string        `bson:"email"`
	FullName     string        `bson:"full_name"`
	PasswordHash string        `bson:"password_hash"`
	Avatar       string        `bson:"avatar"`
	Cover        string        `bson:"cover_image"`
	RefreshToken string        `bson:"refresh_token,omitempty"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

func (d *identityDocument) toModel() *models.Identity {
	return &models.Identity{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		PasswordHash: d.PasswordHash,
		Avatar:       d.Avatar,
		Cover:        d.Cover,
		RefreshToken: d.RefreshToken,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		coll: db.Collection(usersCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique indexes uniqueness checks rely on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	now := r.now()
	doc := identityDocument{
		ID:           bson.NewObjectID(),
		Username:     identity.Username,
		Email:        identity.Email,
		FullName:     identity.FullName,
		PasswordHash: identity.PasswordHash,
		Avatar:       identity.Avatar,
		Cover:        identity.Cover,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, mapMongoError(err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) FindByLogin(ctx context.Context, login string) (*models.Identity, error) {
	return r.findOne(ctx, loginFilter(login, login))
}

func (r *MongoRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, loginFilter(username, email), options.Count().SetLimit(1))
	if err != nil {
		return false, mapMongoError(err)
	}
	return n > 0, nil
}

func (r *MongoRepository) UpdateFields(ctx context.Context, id string, patch models.IdentityPatch) error {
	if patch.Empty() {
		return nil
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, updateDocument(patch, r.now()))
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) SwapRefreshToken(ctx context.Context, id, expected, next string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrStaleSession
	}

	filter := bson.M{"_id": oid, "refresh_token": expected}
	update := bson.M{"$set": bson.M{"refresh_token": next, "updated_at": r.now()}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrStaleSession
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Identity, error) {
	var doc identityDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, mapMongoError(err)
	}
	return doc.toModel(), nil
}

func loginFilter(username, email string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
}

// updateDocument converts a patch into a $set/$unset update.
func updateDocument(patch models.IdentityPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if patch.FullName != nil {
		set["full_name"] = *patch.FullName
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Avatar != nil {
		set["avatar"] = *patch.Avatar
	}
	if patch.Cover != nil {
		set["cover_image"] = *patch.Cover
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}

	update := bson.M{"$set": set}
	switch {
	case patch.ClearRefreshToken:
		update["$unset"] = bson.M{"refresh_token": ""}
	case patch.RefreshToken != nil:
		set["refresh_token"] = *patch.RefreshToken
	}
	return update
}

func mapMongoError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", common.ErrConflict, err)
	}
	return fmt.Errorf("mongo error: %w", err)
}
