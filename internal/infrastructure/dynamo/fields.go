package dynamo

// DynamoDB attribute names used in update and condition expressions.
const (
	fieldUserID        = "user_id"
	fieldUsername      = "username"
	fieldDeviceTokens  = "device_tokens"
	fieldNotifications = "notifications"
	fieldVersion       = "version"
	fieldUpdatedAt     = "updated_at"

	fieldNotificationID = "notification_id"
	fieldCreatedAt      = "created_at"
)

// Secondary index names created by Bootstrap.
const (
	indexUsername        = "username-index"
	indexUserIDCreatedAt = "user_id-created_at-index"
)
