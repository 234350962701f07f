package usecase

import (
	"context"

	"draftroom/pkg/logger"
	"draftroom/services/notification/internal/entity"
	"draftroom/services/notification/internal/store"
	"draftroom/services/notification/internal/transport"
)

type NotificationUseCase interface {
	GetNotifications(userID string, opts store.ListOptions) ([]entity.Notification, int)
	MarkRead(ctx context.Context, userID string, ids []string) int
}

type notificationUseCase struct {
	notifications *store.NotificationStore
	publisher     transport.Publisher
	logger        *logger.Logger
}

func NewNotificationUseCase(notifications *store.NotificationStore, publisher transport.Publisher, log *logger.Logger) NotificationUseCase {
	return &notificationUseCase{notifications: notifications, publisher: publisher, logger: log}
}

func (uc *notificationUseCase) GetNotifications(userID string, opts store.ListOptions) ([]entity.Notification, int) {
	return uc.notifications.List(userID, opts), uc.notifications.UnreadCount(userID)
}

// MarkRead marks the given notifications read and pushes the new unread
// count to the user's channel so other open sessions converge. Unknown ids
// are ignored; the returned count is how many actually flipped.
func (uc *notificationUseCase) MarkRead(ctx context.Context, userID string, ids []string) int {
	marked := uc.notifications.MarkRead(userID, ids)
	if marked == 0 {
		return 0
	}

	payload := map[string]interface{}{
		"notification_ids": ids,
		"unread_count":     uc.notifications.UnreadCount(userID),
	}
	if err := uc.publisher.PublishToUser(ctx, userID, transport.EventNotificationsMarkedRead, payload); err != nil {
		uc.logger.Error("Failed to push marked-read update to user %s: %v", userID, err)
	}
	return marked
}
