package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"draftroom/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Server→client event names on the per-user channel.
const (
	EventNewNotification         = "new-notification"
	EventNotificationsUpdate     = "notifications-update"
	EventNotificationsMarkedRead = "notifications-marked-read"
)

// Server→client event names on the per-project channel.
const (
	EventActivityFeedItem   = "activity-feed-item"
	EventActivityFeedUpdate = "activity-feed-update"
)

// Publisher is the fan-out boundary. Implementations deliver a single
// envelope to everyone subscribed to a user or project channel; delivery is
// fire-and-forget and a failure never rolls back storage.
type Publisher interface {
	PublishToUser(ctx context.Context, userID, event string, data interface{}) error
	PublishToProject(ctx context.Context, projectID, event string, data interface{}) error
}

// UserChannel is the per-user topic a client subscribes to for its own
// notifications.
func UserChannel(userID string) string {
	return "user-" + userID
}

// ProjectChannel is the per-project topic carrying the activity feed.
func ProjectChannel(projectID string) string {
	return "project-" + projectID
}

type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type redisPublisher struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisPublisher(client *redis.Client, log *logger.Logger) Publisher {
	return &redisPublisher{client: client, logger: log}
}

func (p *redisPublisher) PublishToUser(ctx context.Context, userID, event string, data interface{}) error {
	return p.publish(ctx, UserChannel(userID), event, data)
}

func (p *redisPublisher) PublishToProject(ctx context.Context, projectID, event string, data interface{}) error {
	return p.publish(ctx, ProjectChannel(projectID), event, data)
}

func (p *redisPublisher) publish(ctx context.Context, channel, event string, data interface{}) error {
	payload, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event, channel, err)
	}
	return nil
}
