package http

import (
	"context"

	"github.com/go-notify-nosql/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// SetDeviceTokens replaces the token list if the stored version still equals
	// version, otherwise it returns domain.ErrConflict.
	SetDeviceTokens(ctx context.Context, userID string, tokens []string, version int64) error
	// PrependNotification atomically puts notificationID at the head of the feed.
	PrependNotification(ctx context.Context, userID, notificationID string) error
}

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	Put(ctx context.Context, n *domain.Notification) error
}

// PushGateway delivers one message to one device token.
type PushGateway interface {
	Send(ctx context.Context, token string, msg domain.PushMessage) error
}

// ImageResolver turns a stored profile reference into a fetchable URL.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}
