package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/connectlyapp/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotificationNotFound is returned when no notification matches both the
// given ID and the requesting user. Nonexistent and foreign-owned records are
// deliberately indistinguishable.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationFilter narrows list/count queries. Zero value means no narrowing.
type NotificationFilter struct {
	IsRead *bool
	Type   string
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByUserID(ctx context.Context, userID uint, filter NotificationFilter, skip, limit int64) ([]models.Notification, error)
	Count(ctx context.Context, userID uint, filter NotificationFilter) (int64, error)
	GetUnreadCount(ctx context.Context, userID uint) (int64, error)
	GetGrouped(ctx context.Context, userID uint) (today, yesterday, thisWeek, older []models.Notification, err error)
	MarkAsRead(ctx context.Context, userID uint, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID uint) (int64, error)
	DeleteNotification(ctx context.Context, userID uint, notificationID string) error
	DeleteAll(ctx context.Context, userID uint) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

func (f NotificationFilter) toBSON(userID uint) bson.M {
	query := bson.M{"user_id": userID}
	if f.IsRead != nil {
		query["is_read"] = *f.IsRead
	}
	if f.Type != "" {
		query["type"] = f.Type
	}
	return query
}

// ownedByID builds the id + ownership filter used by every single-document operation
func ownedByID(userID uint, notificationID string) (bson.M, error) {
	objID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return nil, fmt.Errorf("invalid notification ID format: %w", err)
	}
	return bson.M{"_id": objID, "user_id": userID}, nil
}

// CreateNotification inserts a new unread notification
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.IsRead = false
	notification.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// GetByUserID retrieves one page of a user's notifications, newest first
func (r *MongoNotificationRepository) GetByUserID(ctx context.Context, userID uint, filter NotificationFilter, skip, limit int64) ([]models.Notification, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter.toBSON(userID), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// Count counts the user's notifications matching the filter
func (r *MongoNotificationRepository) Count(ctx context.Context, userID uint, filter NotificationFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, filter.toBSON(userID))
}

// GetUnreadCount counts all of the user's unread notifications
func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}

func (r *MongoNotificationRepository) findInRange(ctx context.Context, userID uint, createdAt bson.M, limit int64) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID, "created_at": createdAt}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// GetGrouped retrieves the user's notifications bucketed by time period
func (r *MongoNotificationRepository) GetGrouped(ctx context.Context, userID uint) (today, yesterday, thisWeek, older []models.Notification, err error) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	if today, err = r.findInRange(ctx, userID, bson.M{"$gte": todayStart}, 0); err != nil {
		return nil, nil, nil, nil, err
	}
	if yesterday, err = r.findInRange(ctx, userID, bson.M{"$gte": yesterdayStart, "$lt": todayStart}, 0); err != nil {
		return nil, nil, nil, nil, err
	}
	if thisWeek, err = r.findInRange(ctx, userID, bson.M{"$gte": weekStart, "$lt": yesterdayStart}, 0); err != nil {
		return nil, nil, nil, nil, err
	}
	// Anything older than a week is capped to keep the payload bounded
	if older, err = r.findInRange(ctx, userID, bson.M{"$lt": weekStart}, 50); err != nil {
		return nil, nil, nil, nil, err
	}
	return today, yesterday, thisWeek, older, nil
}

// MarkAsRead marks one of the user's notifications as read. Marking an
// already-read notification succeeds with no change; is_read never goes back
// to false.
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, userID uint, notificationID string) error {
	query, err := ownedByID(userID, notificationID)
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, query, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead marks all of the user's unread notifications as read and
// returns the number actually changed
func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteNotification deletes one of the user's notifications
func (r *MongoNotificationRepository) DeleteNotification(ctx context.Context, userID uint, notificationID string) error {
	query, err := ownedByID(userID, notificationID)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, query)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteAll deletes all of the user's notifications and returns the number deleted
func (r *MongoNotificationRepository) DeleteAll(ctx context.Context, userID uint) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
