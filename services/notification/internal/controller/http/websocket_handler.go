package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"draftroom/services/notification/internal/entity"
	"draftroom/services/notification/internal/store"
	"draftroom/services/notification/internal/transport"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type serverMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// wsSession serializes writes to one connection; the pubsub pump and the
// request/reply loop both write.
type wsSession struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSession) send(event string, data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(serverMessage{Event: event, Data: data})
}

func (s *wsSession) sendRaw(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// HandleWebSocket upgrades the connection, subscribes the client to its own
// notification channel plus the activity channel of every project it belongs
// to, and serves request/reply messages until the client disconnects.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")

	if userID == "" {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}

		claims, err := h.jwtService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID = claims.UserID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("WebSocket connected for user %s", userID)

	session := &wsSession{conn: conn}
	ctx := context.Background()

	channels := []string{transport.UserChannel(userID)}
	if projects, err := h.activityUseCase.ProjectsForUser(userID); err != nil {
		h.logger.Warn("Failed to resolve projects for user %s, subscribing to user channel only: %v", userID, err)
	} else {
		for _, p := range projects {
			channels = append(channels, transport.ProjectChannel(p.ID))
		}
	}

	pubsub := h.redisClient.Subscribe(ctx, channels...)
	defer pubsub.Close()

	redisChannel := pubsub.Channel()
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case msg := <-redisChannel:
				if msg == nil {
					continue
				}
				if err := session.sendRaw([]byte(msg.Payload)); err != nil {
					h.logger.Error("Failed to write WebSocket message: %v", err)
					return
				}
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read error: %v", err)
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			session.send("error", gin.H{"message": "malformed message"})
			continue
		}

		h.handleClientMessage(ctx, session, userID, msg)
	}

	close(done)
	h.logger.Info("WebSocket disconnected for user %s", userID)
}

func (h *NotificationHandler) handleClientMessage(ctx context.Context, session *wsSession, userID string, msg clientMessage) {
	switch msg.Event {
	case "request-notifications":
		var req struct {
			Limit      int    `json:"limit"`
			Offset     int    `json:"offset"`
			UnreadOnly bool   `json:"unread_only"`
			Category   string `json:"category"`
		}
		if len(msg.Data) > 0 {
			json.Unmarshal(msg.Data, &req)
		}
		if req.Limit <= 0 || req.Limit > 100 {
			req.Limit = 50
		}

		notifications, unreadCount := h.notificationUseCase.GetNotifications(userID, store.ListOptions{
			Limit:      req.Limit,
			Offset:     req.Offset,
			UnreadOnly: req.UnreadOnly,
			Category:   req.Category,
		})
		session.send(transport.EventNotificationsUpdate, gin.H{
			"notifications": notifications,
			"unread_count":  unreadCount,
		})

	case "mark-notifications-read":
		var req struct {
			NotificationIDs []string `json:"notification_ids"`
		}
		if err := json.Unmarshal(msg.Data, &req); err != nil || len(req.NotificationIDs) == 0 {
			session.send("error", gin.H{"message": "notification_ids required"})
			return
		}
		// The confirmation arrives over the user channel, so every open
		// session converges, not just this one
		h.notificationUseCase.MarkRead(ctx, userID, req.NotificationIDs)

	case "update-notification-preferences":
		var patch entity.PreferencesPatch
		if err := json.Unmarshal(msg.Data, &patch); err != nil {
			session.send("error", gin.H{"message": "malformed preferences"})
			return
		}
		updated, err := h.preferenceUseCase.Update(userID, patch)
		if err != nil {
			if errors.Is(err, entity.ErrValidation) {
				session.send("error", gin.H{"message": err.Error()})
				return
			}
			h.logger.Error("Failed to update preferences for user %s: %v", userID, err)
			session.send("error", gin.H{"message": "failed to update preferences"})
			return
		}
		session.send("notification-preferences", updated)

	case "request-activity-feed":
		var req struct {
			ProjectID string `json:"project_id"`
			Limit     int    `json:"limit"`
		}
		if len(msg.Data) > 0 {
			json.Unmarshal(msg.Data, &req)
		}
		if req.Limit <= 0 || req.Limit > 100 {
			req.Limit = 50
		}

		// No project id means the user's cross-project view
		if req.ProjectID == "" {
			items, err := h.activityUseCase.UserFeed(userID, req.Limit)
			if err != nil {
				h.logger.Error("Failed to load activity for user %s: %v", userID, err)
				session.send("error", gin.H{"message": "failed to load activity"})
				return
			}
			session.send(transport.EventActivityFeedUpdate, gin.H{"activity": items})
			return
		}

		session.send(transport.EventActivityFeedUpdate, gin.H{
			"project_id": req.ProjectID,
			"activity":   h.activityUseCase.ProjectFeed(req.ProjectID, req.Limit),
		})

	default:
		session.send("error", gin.H{"message": "unknown event: " + msg.Event})
	}
}
