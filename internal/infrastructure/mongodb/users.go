package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-notify-nosql/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	fieldID            = "_id"
	fieldUsername      = "username"
	fieldUserID        = "user_id"
	fieldDeviceTokens  = "device_tokens"
	fieldNotifications = "notifications"
	fieldVersion       = "version"
	fieldUpdatedAt     = "updated_at"
	fieldCreatedAt     = "created_at"
)

// userCollection is the subset of *mongo.Collection the user repository uses.
type userCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// UserRepo provides typed MongoDB operations for the users collection.
type UserRepo struct {
	coll userCollection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(CollectionUsers)}
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{fieldID: userID})
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{fieldUsername: username})
}

// SetDeviceTokens overwrites device_tokens when the stored version still equals
// version. A stale version or a missing user yields domain.ErrConflict.
func (r *UserRepo) SetDeviceTokens(ctx context.Context, userID string, tokens []string, version int64) error {
	if tokens == nil {
		tokens = []string{}
	}
	res, err := r.coll.UpdateOne(ctx, versionFilter(userID, version), bson.M{
		"$set": bson.M{fieldDeviceTokens: tokens, fieldUpdatedAt: time.Now().UTC()},
		"$inc": bson.M{fieldVersion: 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("device tokens of %s changed concurrently: %w", userID, domain.ErrConflict)
	}
	return nil
}

// PrependNotification puts notificationID at the head of the user's feed in a
// single server-side pipeline update.
func (r *UserRepo) PrependNotification(ctx context.Context, userID, notificationID string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{fieldID: userID}, prependPipeline(notificationID, time.Now().UTC()))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s not found: %w", userID, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// versionFilter matches the user at the expected version. Documents written
// before versioning have no version field and count as version 0.
func versionFilter(userID string, version int64) bson.M {
	if version == 0 {
		return bson.M{
			fieldID: userID,
			"$or": bson.A{
				bson.M{fieldVersion: int64(0)},
				bson.M{fieldVersion: bson.M{"$exists": false}},
			},
		}
	}
	return bson.M{fieldID: userID, fieldVersion: version}
}

// prependPipeline tolerates a missing or null notifications field.
func prependPipeline(notificationID string, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: fieldNotifications, Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.A{notificationID},
				bson.D{{Key: "$ifNull", Value: bson.A{"$" + fieldNotifications, bson.A{}}}},
			}}}},
			{Key: fieldUpdatedAt, Value: now},
		}}},
	}
}
