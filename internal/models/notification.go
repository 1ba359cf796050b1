package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recognized notification types. Producers elsewhere in the system decide
// which one applies to a given domain event.
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeFollow  = "follow"
	NotificationTypeMention = "mention"
)

// NotificationTypes lists the recognized notification type values
var NotificationTypes = []string{
	NotificationTypeLike,
	NotificationTypeComment,
	NotificationTypeFollow,
	NotificationTypeMention,
}

// IsValidNotificationType reports whether t is a recognized notification type
func IsValidNotificationType(t string) bool {
	for _, v := range NotificationTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Notification represents a user notification stored in MongoDB
type Notification struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID  uint               `json:"user_id" bson:"user_id"` // recipient; every query is scoped by it
	Type    string             `json:"type" bson:"type"`
	Title   string             `json:"title" bson:"title"`
	Message string             `json:"message" bson:"message"`
	ActorID uint               `json:"actor_id" bson:"actor_id"`
	// TargetType/TargetID reference the object the notification concerns
	// (post, comment, user). Producers are expected to set both or neither,
	// but that convention is not enforced here.
	TargetType string    `json:"target_type,omitempty" bson:"target_type,omitempty"`
	TargetID   string    `json:"target_id,omitempty" bson:"target_id,omitempty"`
	IsRead     bool      `json:"is_read" bson:"is_read"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// NotificationResponse is a notification enriched with actor display data
type NotificationResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	TargetType  string    `json:"target_type,omitempty"`
	TargetID    string    `json:"target_id,omitempty"`
	ActorID     uint      `json:"actor_id"`
	ActorName   string    `json:"actor_name"`
	ActorAvatar string    `json:"actor_avatar,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationListResponse is the paginated list payload
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unread_count"`
	Page          int                    `json:"page"`
	Pages         int                    `json:"pages"`
}

// GroupedNotificationsResponse buckets notifications by age for the inbox UI
type GroupedNotificationsResponse struct {
	Today       []NotificationResponse `json:"today"`
	Yesterday   []NotificationResponse `json:"yesterday"`
	ThisWeek    []NotificationResponse `json:"thisWeek"`
	Older       []NotificationResponse `json:"older"`
	UnreadCount int64                  `json:"unreadCount"`
}
