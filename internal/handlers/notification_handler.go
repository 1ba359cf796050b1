package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/connectlyapp/backend/internal/models"
	"github.com/connectlyapp/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
	g.DELETE("/notifications", h.DeleteAllNotifications)
}

func (h *NotificationHandler) enrichNotifications(notifications []models.Notification) []models.NotificationResponse {
	enriched := make([]models.NotificationResponse, len(notifications))
	actorCache := make(map[uint]models.UserCompact)

	for i, n := range notifications {
		item := models.NotificationResponse{
			ID:         n.ID.Hex(),
			Type:       n.Type,
			Title:      n.Title,
			Message:    n.Message,
			TargetType: n.TargetType,
			TargetID:   n.TargetID,
			ActorID:    n.ActorID,
			ActorName:  "Unknown User", // fallback when the actor record is gone
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt,
		}

		actor, ok := actorCache[n.ActorID]
		if !ok {
			if user, err := h.userRepository.GetUserByID(n.ActorID); err == nil {
				actor = user.ToCompact()
				actorCache[n.ActorID] = actor
				ok = true
			}
		}
		if ok {
			item.ActorName = actor.Name
			item.ActorAvatar = actor.AvatarURL
		}
		enriched[i] = item
	}
	return enriched
}

// GetNotifications returns the user's notifications, paginated and optionally
// filtered by read state and type. unread_count always reflects the user's
// full unread total so the inbox badge is independent of the active filters.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var filter repositories.NotificationFilter
	if v := c.QueryParam("is_read"); v != "" {
		isRead, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid is_read value")
		}
		filter.IsRead = &isRead
	}
	filter.Type = c.QueryParam("type")

	ctx := c.Request().Context()

	total, err := h.notificationRepository.Count(ctx, currentUserID, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	unreadCount, err := h.notificationRepository.GetUnreadCount(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	skip := int64((page - 1) * limit)
	pages := int(math.Ceil(float64(total) / float64(limit)))

	// A page past the end is not an error; it just carries no items
	notifications, err := h.notificationRepository.GetByUserID(ctx, currentUserID, filter, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, models.NotificationListResponse{
		Notifications: h.enrichNotifications(notifications),
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		Pages:         pages,
	})
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	today, yesterday, thisWeek, older, err := h.notificationRepository.GetGrouped(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	unreadCount, _ := h.notificationRepository.GetUnreadCount(ctx, currentUserID)

	return c.JSON(http.StatusOK, models.GroupedNotificationsResponse{
		Today:       h.enrichNotifications(today),
		Yesterday:   h.enrichNotifications(yesterday),
		ThisWeek:    h.enrichNotifications(thisWeek),
		Older:       h.enrichNotifications(older),
		UnreadCount: unreadCount,
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	err := h.notificationRepository.MarkAsRead(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

// MarkAllAsRead marks all of the user's unread notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("%d notifications marked as read", count)})
}

// DeleteNotification deletes a notification
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	err := h.notificationRepository.DeleteNotification(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteAllNotifications deletes all of the user's notifications
func (h *NotificationHandler) DeleteAllNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.DeleteAll(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("%d notifications deleted", count)})
}
