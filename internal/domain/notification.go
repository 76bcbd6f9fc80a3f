package domain

import "time"

// NotificationType is the closed set of social events that produce a notification.
type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationRepost  NotificationType = "repost"
	NotificationTag     NotificationType = "tag"
	NotificationPost    NotificationType = "post"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationFollow, NotificationLike, NotificationComment,
		NotificationRepost, NotificationTag, NotificationPost:
		return true
	}
	return false
}

// IsBroadcast reports whether recipients are derived from the actor's followers.
func (t NotificationType) IsBroadcast() bool { return t == NotificationPost }

// Notification is an immutable feed record. UserID is empty for broadcast
// records, which are shared by every follower's feed.
type Notification struct {
	NotificationID string           `json:"id" dynamodbav:"notification_id" bson:"_id"`
	UserID         string           `json:"user_id,omitempty" dynamodbav:"user_id,omitempty" bson:"user_id,omitempty"`
	ActorID        string           `json:"actor_id,omitempty" dynamodbav:"actor_id" bson:"actor_id"`
	Description    string           `json:"description" dynamodbav:"description" bson:"description"`
	Type           NotificationType `json:"type" dynamodbav:"type" bson:"type"`
	CreatedAt      time.Time        `json:"created" dynamodbav:"created_at" bson:"created_at"`
}
