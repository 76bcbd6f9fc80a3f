package notification

import "github.com/go-notify-nosql/internal/domain"

const (
	titleNewFollower     = "New Follower"
	titleNewNotification = "New Notification"
)

var bodySuffix = map[domain.NotificationType]string{
	domain.NotificationFollow:  " started following you.",
	domain.NotificationLike:    " liked your post.",
	domain.NotificationComment: " commented on your post.",
	domain.NotificationRepost:  " reposted your post.",
	domain.NotificationTag:     " tagged you in their post.",
	domain.NotificationPost:    " added a new post.",
}

// messageFor renders the push payload for an event of type t triggered by actor.
// The body doubles as the notification record's description.
func messageFor(t domain.NotificationType, actor string) domain.PushMessage {
	title := titleNewNotification
	if t == domain.NotificationFollow {
		title = titleNewFollower
	}
	return domain.PushMessage{Title: title, Body: actor + bodySuffix[t]}
}
