package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/connectlyapp/backend/internal/models"
	"github.com/connectlyapp/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mock repositories

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByUserID(ctx context.Context, userID uint, filter repositories.NotificationFilter, skip, limit int64) ([]models.Notification, error) {
	args := m.Called(ctx, userID, filter, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Count(ctx context.Context, userID uint, filter repositories.NotificationFilter) (int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) GetGrouped(ctx context.Context, userID uint) ([]models.Notification, []models.Notification, []models.Notification, []models.Notification, error) {
	args := m.Called(ctx, userID)
	get := func(i int) []models.Notification {
		if args.Get(i) == nil {
			return nil
		}
		return args.Get(i).([]models.Notification)
	}
	return get(0), get(1), get(2), get(3), args.Error(4)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, userID uint, notificationID string) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) DeleteNotification(ctx context.Context, userID uint, notificationID string) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteAll(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	args := m.Called(firebaseUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func setupNotificationRouter(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, userID uint) *echo.Echo {
	e := echo.New()
	api := e.Group("/api/v1")
	api.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != 0 {
				c.Set("userID", userID)
			}
			return next(c)
		}
	})
	NewNotificationHandler(notifRepo, userRepo).RegisterNotificationRoutes(api)
	return e
}

func performRequest(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func notificationAt(userID, actorID uint, createdAt time.Time, isRead bool) models.Notification {
	return models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      models.NotificationTypeLike,
		Title:     "New like",
		Message:   "Someone liked your post",
		ActorID:   actorID,
		IsRead:    isRead,
		CreatedAt: createdAt,
	}
}

func TestGetNotifications_PaginatedScenario(t *testing.T) {
	const userID, actorID = uint(7), uint(3)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_ = notificationAt(userID, actorID, base, true)
	n2 := notificationAt(userID, actorID, base.Add(time.Minute), false)
	n3 := notificationAt(userID, actorID, base.Add(2*time.Minute), false)

	notifRepo := new(MockNotificationRepository)
	userRepo := new(MockUserRepository)
	notifRepo.On("Count", mock.Anything, userID, repositories.NotificationFilter{}).Return(int64(3), nil)
	notifRepo.On("GetUnreadCount", mock.Anything, userID).Return(int64(2), nil)
	// newest first, first page of two
	notifRepo.On("GetByUserID", mock.Anything, userID, repositories.NotificationFilter{}, int64(0), int64(2)).
		Return([]models.Notification{n3, n2}, nil)
	userRepo.On("GetUserByID", actorID).Return(&models.User{ID: actorID, Name: "Alice", AvatarURL: "https://cdn.example.com/a.png"}, nil)

	e := setupNotificationRouter(notifRepo, userRepo, userID)
	rec := performRequest(e, http.MethodGet, "/api/v1/notifications?page=1&limit=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.NotificationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, int64(2), resp.UnreadCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.Pages)
	require.Len(t, resp.Notifications, 2)
	assert.Equal(t, n3.ID.Hex(), resp.Notifications[0].ID)
	assert.Equal(t, n2.ID.Hex(), resp.Notifications[1].ID)
	assert.Equal(t, "Alice", resp.Notifications[0].ActorName)
	assert.Equal(t, "https://cdn.example.com/a.png", resp.Notifications[0].ActorAvatar)

	// actor looked up once despite two items sharing the actor
	userRepo.AssertNumberOfCalls(t, "GetUserByID", 1)
}

func TestGetNotifications_UnreadCountIgnoresFilters(t *testing.T) {
	const userID = uint(7)
	isRead := true
	filter := repositories.NotificationFilter{IsRead: &isRead, Type: models.NotificationTypeComment}

	notifRepo := new(MockNotificationRepository)
	userRepo := new(MockUserRepository)
	notifRepo.On("Count", mock.Anything, userID, filter).Return(int64(1), nil)
	notifRepo.On("GetUnreadCount", mock.Anything, userID).Return(int64(5), nil)
	notifRepo.On("GetByUserID", mock.Anything, userID, filter, int64(0), int64(20)).
		Return([]models.Notification{}, nil)

	e := setupNotificationRouter(notifRepo, userRepo, userID)
	rec := performRequest(e, http.MethodGet, "/api/v1/notifications?is_read=true&type=comment")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.NotificationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// the badge count stays the user's full unread total, not the filtered subset
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, int64(5), resp.UnreadCount)
}

func TestGetNotifications_PagePastEnd(t *testing.T) {
	const userID = uint(7)

	notifRepo := new(MockNotificationRepository)
	userRepo := new(MockUserRepository)
	notifRepo.On("Count", mock.Anything, userID, repositories.NotificationFilter{}).Return(int64(3), nil)
	notifRepo.On("GetUnreadCount", mock.Anything, userID).Return(int64(2), nil)
	notifRepo.On("GetByUserID", mock.Anything, userID, repositories.NotificationFilter{}, int64(8), int64(2)).
		Return([]models.Notification{}, nil)

	e := setupNotificationRouter(notifRepo, userRepo, userID)
	rec := performRequest(e, http.MethodGet, "/api/v1/notifications?page=5&limit=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.NotificationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Empty(t, resp.Notifications)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, int64(2), resp.UnreadCount)
	assert.Equal(t, 5, resp.Page)
	assert.Equal(t, 2, resp.Pages)
}

func TestGetNotifications_LimitClamped(t *testing.T) {
	const userID = uint(7)

	notifRepo := new(MockNotificationRepository)
	userRepo := new(MockUserRepository)
	notifRepo.On("Count", mock.Anything, userID, repositories.NotificationFilter{}).Return(int64(0), nil)
	notifRepo.On("GetUnreadCount", mock.Anything, userID).Return(int64(0), nil)
	// limit=500 falls back to the default of 20
	notifRepo.On("GetByUserID", mock.Anything, userID, repositories.NotificationFilter{}, int64(0), int64(20)).
		Return([]models.Notification{}, nil)

	e := setupNotificationRouter(notifRepo, userRepo, userID)
	rec := performRequest(e, http.MethodGet, "/api/v1/notifications?limit=500")

	require.Equal(t, http.StatusOK, rec.Code)
	notifRepo.AssertExpectations(t)
}

func TestGetNotifications_InvalidIsRead(t *testing.T) {
	e := setupNotificationRouter(new(MockNotificationRepository), new(MockUserRepository), 7)
	rec := performRequest(e, http.MethodGet, "/api/v1/notifications?is_read=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetNotifications_Unauthenticated(t *testing.T) {
	e := setupNotificationRouter(new(MockNotificationRepository), new(MockUserRepository), 0)
	rec := performRequest(e, http.MethodGet, "/api/v1/notifications")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetNotifications_MissingActorFallsBack(t *testing.T) {
	const userID, actorID = uint(7), uint(99)
	n := notificationAt(userID, actorID, time.Now(), false)

	notifRepo := new(MockNotificationRepository)
	userRepo := new(MockUserRepository)
	notifRepo.On("Count", mock.Anything, userID, repositories.NotificationFilter{}).Return(int64(1), nil)
	notifRepo.On("GetUnreadCount", mock.Anything, userID).Return(int64(1), nil)
	notifRepo.On("GetByUserID", mock.Anything, userID, repositories.NotificationFilter{}, int64(0), int64(20)).
		Return([]models.Notification{n}, nil)
	userRepo.On("GetUserByID", actorID).Return(nil, assert.AnError)

	e := setupNotificationRouter(notifRepo, userRepo, userID)
	rec := performRequest(e, http.MethodGet, "/api/v1/notifications")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.NotificationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "Unknown User", resp.Notifications[0].ActorName)
	assert.Empty(t, resp.Notifications[0].ActorAvatar)
	assert.NotContains(t, rec.Body.String(), "actor_avatar")
}

func TestMarkAsRead_Success(t *testing.T) {
	const userID = uint(7)
	id := primitive.NewObjectID().Hex()

	notifRepo := new(MockNotificationRepository)
	// repeated marking stays a success with no observable change
	notifRepo.On("MarkAsRead", mock.Anything, userID, id).Return(nil).Twice()

	e := setupNotificationRouter(notifRepo, new(MockUserRepository), userID)

	for i := 0; i < 2; i++ {
		rec := performRequest(e, http.MethodPut, "/api/v1/notifications/"+id+"/read")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Notification marked as read")
	}
	notifRepo.AssertExpectations(t)
}

func TestMarkAsRead_NotFound(t *testing.T) {
	const userID = uint(7)
	id := primitive.NewObjectID().Hex()

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("MarkAsRead", mock.Anything, userID, id).Return(repositories.ErrNotificationNotFound)

	e := setupNotificationRouter(notifRepo, new(MockUserRepository), userID)
	rec := performRequest(e, http.MethodPut, "/api/v1/notifications/"+id+"/read")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkAllAsRead(t *testing.T) {
	const userID = uint(7)

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("MarkAllAsRead", mock.Anything, userID).Return(int64(2), nil)

	e := setupNotificationRouter(notifRepo, new(MockUserRepository), userID)
	rec := performRequest(e, http.MethodPut, "/api/v1/notifications/read-all")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2 notifications marked as read")
}

func TestMarkAllAsRead_NothingUnread(t *testing.T) {
	const userID = uint(7)

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("MarkAllAsRead", mock.Anything, userID).Return(int64(0), nil)

	e := setupNotificationRouter(notifRepo, new(MockUserRepository), userID)
	rec := performRequest(e, http.MethodPut, "/api/v1/notifications/read-all")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "0 notifications marked as read")
}

func TestDeleteNotification_Success(t *testing.T) {
	const userID = uint(7)
	id := primitive.NewObjectID().Hex()

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("DeleteNotification", mock.Anything, userID, id).Return(nil)

	e := setupNotificationRouter(notifRepo, new(MockUserRepository), userID)
	rec := performRequest(e, http.MethodDelete, "/api/v1/notifications/"+id)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeleteNotification_NotFound(t *testing.T) {
	const userID = uint(7)
	id := primitive.NewObjectID().Hex()

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("DeleteNotification", mock.Anything, userID, id).Return(repositories.ErrNotificationNotFound)

	e := setupNotificationRouter(notifRepo, new(MockUserRepository), userID)
	rec := performRequest(e, http.MethodDelete, "/api/v1/notifications/"+id)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAllNotifications(t *testing.T) {
	const userID = uint(7)

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("DeleteAll", mock.Anything, userID).Return(int64(3), nil)

	e := setupNotificationRouter(notifRepo, new(MockUserRepository), userID)
	rec := performRequest(e, http.MethodDelete, "/api/v1/notifications")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "3 notifications deleted")
}

func TestGetUnreadCount(t *testing.T) {
	const userID = uint(7)

	notifRepo := new(MockNotificationRepository)
	notifRepo.On("GetUnreadCount", mock.Anything, userID).Return(int64(4), nil)

	e := setupNotificationRouter(notifRepo, new(MockUserRepository), userID)
	rec := performRequest(e, http.MethodGet, "/api/v1/notifications/unread-count")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":4}`, rec.Body.String())
}

func TestGetGroupedNotifications(t *testing.T) {
	const userID, actorID = uint(7), uint(3)
	now := time.Now()
	today := notificationAt(userID, actorID, now, false)
	older := notificationAt(userID, actorID, now.AddDate(0, 0, -30), true)

	notifRepo := new(MockNotificationRepository)
	userRepo := new(MockUserRepository)
	notifRepo.On("GetGrouped", mock.Anything, userID).
		Return([]models.Notification{today}, nil, nil, []models.Notification{older}, nil)
	notifRepo.On("GetUnreadCount", mock.Anything, userID).Return(int64(1), nil)
	userRepo.On("GetUserByID", actorID).Return(&models.User{ID: actorID, Name: "Alice"}, nil)

	e := setupNotificationRouter(notifRepo, userRepo, userID)
	rec := performRequest(e, http.MethodGet, "/api/v1/notifications/grouped")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.GroupedNotificationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Today, 1)
	assert.Equal(t, today.ID.Hex(), resp.Today[0].ID)
	require.Len(t, resp.Older, 1)
	assert.Equal(t, older.ID.Hex(), resp.Older[0].ID)
	assert.Empty(t, resp.Yesterday)
	assert.Empty(t, resp.ThisWeek)
	assert.Equal(t, int64(1), resp.UnreadCount)
}
