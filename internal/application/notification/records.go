package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-notify-nosql/internal/domain"
	"github.com/go-notify-nosql/internal/pkg/id"
)

type notificationWriter interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type feedWriter interface {
	// PrependNotification atomically puts notificationID at the front of the user's feed.
	PrependNotification(ctx context.Context, userID, notificationID string) error
}

// RecordStore creates notification records. Every call creates a new record.
type RecordStore struct {
	store notificationWriter
	now   func() time.Time
}

func NewRecordStore(store notificationWriter) *RecordStore {
	return &RecordStore{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Create persists a record and returns its id.
func (s *RecordStore) Create(ctx context.Context, recipientUserID, actorID string, t domain.NotificationType, description string) (string, error) {
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         recipientUserID,
		ActorID:        actorID,
		Description:    description,
		Type:           t,
		CreatedAt:      s.now(),
	}
	if err := s.store.Put(ctx, n); err != nil {
		return "", fmt.Errorf("create %s notification: %w", t, err)
	}
	return n.NotificationID, nil
}

// FeedUpdater prepends record ids to recipients' feeds.
type FeedUpdater struct {
	store feedWriter
}

func NewFeedUpdater(store feedWriter) *FeedUpdater {
	return &FeedUpdater{store: store}
}

func (f *FeedUpdater) AppendToFeed(ctx context.Context, recipient *domain.User, recordID string) error {
	if err := f.store.PrependNotification(ctx, recipient.UserID, recordID); err != nil {
		return fmt.Errorf("append %s to feed of %s: %w", recordID, recipient.UserID, err)
	}
	return nil
}
