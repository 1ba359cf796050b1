// Package notifier is the internal entry point for creating notifications.
// It is called synchronously by the producers that react to domain events
// (likes, comments, follows, mentions) and is not routed over HTTP.
package notifier

import (
	"context"
	"fmt"

	"github.com/connectlyapp/backend/internal/models"
	"github.com/connectlyapp/backend/internal/repositories"
)

// Event describes a domain event to notify a user about. TargetType and
// TargetID are passed through as given; producers set both or neither by
// convention.
type Event struct {
	UserID     uint
	Type       string
	Title      string
	Message    string
	ActorID    uint
	TargetType string
	TargetID   string
}

// Service creates notifications on behalf of producers
type Service struct {
	notificationRepository repositories.NotificationRepository
}

// New creates a new notifier Service
func New(notifRepo repositories.NotificationRepository) *Service {
	return &Service{notificationRepository: notifRepo}
}

// Notify records one notification for the event's recipient. Duplicate
// notifications for the same event are permitted; dedup is the producer's
// concern if it has one.
func (s *Service) Notify(ctx context.Context, event Event) error {
	if !models.IsValidNotificationType(event.Type) {
		return fmt.Errorf("unrecognized notification type %q", event.Type)
	}

	notification := &models.Notification{
		UserID:     event.UserID,
		Type:       event.Type,
		Title:      event.Title,
		Message:    event.Message,
		ActorID:    event.ActorID,
		TargetType: event.TargetType,
		TargetID:   event.TargetID,
	}
	return s.notificationRepository.CreateNotification(ctx, notification)
}
