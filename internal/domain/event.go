package domain

// Event is one inbound social event. The set of implementations is closed:
// DirectEvent and PostEvent.
type Event interface {
	Kind() NotificationType
	event()
}

// DirectEvent targets a single user (follow, like, comment, repost, tag).
type DirectEvent struct {
	Type          NotificationType `validate:"required,oneof=follow like comment repost tag"`
	ActorUsername string           `validate:"required"`
	ActorID       string
	TargetUserID  string `validate:"required"`
}

func (e DirectEvent) Kind() NotificationType { return e.Type }
func (DirectEvent) event()                   {}

// PostEvent broadcasts a new post by the actor to the actor's followers.
type PostEvent struct {
	ActorUsername string `validate:"required"`
	ActorID       string
}

func (PostEvent) Kind() NotificationType { return NotificationPost }
func (PostEvent) event()                 {}
