package domain

import "time"

// User is the identity document the engine reads recipients from and writes
// token prunes and feed prepends back to.
type User struct {
	UserID        string    `json:"id" dynamodbav:"user_id" bson:"_id"`
	Username      string    `json:"username" dynamodbav:"username" bson:"username"`
	Profile       string    `json:"profile" dynamodbav:"profile" bson:"profile"` // image URL or object key
	DeviceTokens  []string  `json:"device_tokens" dynamodbav:"device_tokens,omitempty" bson:"device_tokens"`
	Followers     []string  `json:"followers" dynamodbav:"followers,omitempty" bson:"followers"`
	Following     []string  `json:"following" dynamodbav:"following,omitempty" bson:"following"`
	Notifications []string  `json:"notifications" dynamodbav:"notifications,omitempty" bson:"notifications"` // newest first
	Version       int64     `json:"-" dynamodbav:"version" bson:"version"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at" bson:"updated_at"`
}
