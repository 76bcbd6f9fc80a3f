package mongodb

import (
	"context"
	"fmt"

	"github.com/go-notify-nosql/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationRepo provides typed MongoDB operations for the notifications collection.
type NotificationRepo struct {
	coll *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) *NotificationRepo {
	return &NotificationRepo{coll: db.Collection(CollectionNotifications)}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("notification %s exists: %w", n.NotificationID, domain.ErrConflict)
		}
		return err
	}
	return nil
}
