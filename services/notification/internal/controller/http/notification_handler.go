package http

import (
	"errors"
	"net/http"
	"strconv"

	"draftroom/pkg/jwt"
	"draftroom/pkg/logger"
	"draftroom/services/notification/internal/entity"
	"draftroom/services/notification/internal/store"
	"draftroom/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type NotificationHandler struct {
	notificationUseCase usecase.NotificationUseCase
	preferenceUseCase   usecase.PreferenceUseCase
	activityUseCase     usecase.ActivityUseCase
	router              usecase.DeliveryRouter
	redisClient         *redis.Client
	logger              *logger.Logger
	jwtService          *jwt.Service
}

func NewNotificationHandler(
	notificationUseCase usecase.NotificationUseCase,
	preferenceUseCase usecase.PreferenceUseCase,
	activityUseCase usecase.ActivityUseCase,
	router usecase.DeliveryRouter,
	redisClient *redis.Client,
	logger *logger.Logger,
	jwtService *jwt.Service,
) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		preferenceUseCase:   preferenceUseCase,
		activityUseCase:     activityUseCase,
		router:              router,
		redisClient:         redisClient,
		logger:              logger,
		jwtService:          jwtService,
	}
}

type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids" binding:"required"`
}

// GetNotifications godoc
// @Summary      Get user notifications
// @Description  Get notifications for the authenticated user, newest first
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of notifications to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Param        unread_only query bool false "Only unread notifications"
// @Param        category query string false "Filter by category"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	opts := store.ListOptions{Limit: 50, Category: c.Query("category")}
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			opts.Limit = parsedLimit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			opts.Offset = parsedOffset
		}
	}
	opts.UnreadOnly = c.Query("unread_only") == "true"

	notifications, unreadCount := h.notificationUseCase.GetNotifications(userID, opts)

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"unread_count":  unreadCount,
		"offset":        opts.Offset,
	})
}

// MarkNotificationsRead godoc
// @Summary      Mark notifications read
// @Description  Mark the given notifications as read for the authenticated user
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body MarkReadRequest true "Notification ids to mark"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /notifications/read [post]
func (h *NotificationHandler) MarkNotificationsRead(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marked := h.notificationUseCase.MarkRead(c.Request.Context(), userID, req.NotificationIDs)

	c.JSON(http.StatusOK, gin.H{
		"message": "Notifications marked read",
		"marked":  marked,
	})
}

// GetPreferences godoc
// @Summary      Get notification preferences
// @Description  Get the authenticated user's delivery preferences, defaults if never saved
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /notifications/preferences [get]
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": h.preferenceUseCase.Get(userID)})
}

// UpdatePreferences godoc
// @Summary      Update notification preferences
// @Description  Apply a partial update to the authenticated user's preferences. Invalid fields reject the whole update.
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body entity.PreferencesPatch true "Fields to update"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /notifications/preferences [put]
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var patch entity.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.preferenceUseCase.Update(userID, patch)
	if err != nil {
		if errors.Is(err, entity.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to update preferences for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Preferences updated",
		"preferences": updated,
	})
}

// GetProjectActivity godoc
// @Summary      Get project activity feed
// @Description  Get the recent activity feed for a project, newest first
// @Tags         activity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        project_id path string true "Project ID"
// @Param        limit query int false "Number of items to return (max 100)"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /projects/{project_id}/activity [get]
func (h *NotificationHandler) GetProjectActivity(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	projectID := c.Param("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project ID required"})
		return
	}

	items := h.activityUseCase.ProjectFeed(projectID, parseLimit(c, 50))

	c.JSON(http.StatusOK, gin.H{
		"project_id": projectID,
		"activity":   items,
		"count":      len(items),
	})
}

// GetUserActivity godoc
// @Summary      Get cross-project activity
// @Description  Get recent activity across every project the authenticated user belongs to
// @Tags         activity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of items to return (max 100)"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /activity [get]
func (h *NotificationHandler) GetUserActivity(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := h.activityUseCase.UserFeed(userID, parseLimit(c, 50))
	if err != nil {
		h.logger.Error("Failed to load activity for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activity": items,
		"count":    len(items),
	})
}

// IngestEvent godoc
// @Summary      Ingest a collaboration event
// @Description  Accept a collaboration event from an internal service and route it to recipients
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request body entity.Event true "Collaboration event"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /events [post]
func (h *NotificationHandler) IngestEvent(c *gin.Context) {
	var event entity.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := event.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.router.Route(c.Request.Context(), event)
	if err != nil {
		h.logger.Error("Failed to route %s event: %v", event.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to route event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Event routed",
		"created":   len(result.Created),
		"published": len(result.Published),
	})
}

func parseLimit(c *gin.Context, fallback int) int {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
		return parsed
	}
	return fallback
}
