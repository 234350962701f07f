package usecase

import (
	"context"
	"time"

	"draftroom/pkg/logger"
	"draftroom/services/notification/internal/entity"
	"draftroom/services/notification/internal/repo/persistent"
	"draftroom/services/notification/internal/store"
	"draftroom/services/notification/internal/transport"
)

// RouteResult reports what one event produced: the notifications written to
// the store and the recipients that got a real-time push.
type RouteResult struct {
	Created   []entity.Notification
	Published []string
}

// DeliveryRouter turns collaboration events into stored notifications,
// real-time publishes and activity feed entries, applying each recipient's
// delivery policy.
type DeliveryRouter interface {
	Route(ctx context.Context, event entity.Event) (RouteResult, error)
}

type deliveryRouter struct {
	resolver      persistent.CollaboratorResolver
	prefs         PreferenceUseCase
	notifications *store.NotificationStore
	feed          *store.ActivityFeed
	publisher     transport.Publisher
	logger        *logger.Logger
}

func NewDeliveryRouter(
	resolver persistent.CollaboratorResolver,
	prefs PreferenceUseCase,
	notifications *store.NotificationStore,
	feed *store.ActivityFeed,
	publisher transport.Publisher,
	log *logger.Logger,
) DeliveryRouter {
	return &deliveryRouter{
		resolver:      resolver,
		prefs:         prefs,
		notifications: notifications,
		feed:          feed,
		publisher:     publisher,
		logger:        log,
	}
}

func (r *deliveryRouter) Route(ctx context.Context, event entity.Event) (RouteResult, error) {
	result := RouteResult{}

	recipients := r.resolveRecipients(event)

	now := time.Now()
	for _, recipientID := range recipients {
		if recipientID == event.ActorID {
			// An editor is never notified of their own edit
			continue
		}

		prefs := r.prefs.Get(recipientID)
		if !prefs.CategoryEnabled(event.Category()) {
			// Toggle off means zero creation, not just zero publish
			continue
		}

		notification := r.buildNotification(event, recipientID)

		urgent := notification.Priority == entity.PriorityUrgent
		deferToDigest := !urgent && prefs.DigestFrequency != entity.DigestInstant
		quiet := !urgent && prefs.QuietHours.ActiveAt(now)

		notification.PendingDigest = deferToDigest && prefs.DigestFrequency != entity.DigestNever

		stored := r.notifications.Create(notification)
		result.Created = append(result.Created, stored)

		if deferToDigest || quiet {
			// Stored and listable on demand; only the push channel waits
			continue
		}

		if err := r.publisher.PublishToUser(ctx, recipientID, transport.EventNewNotification, stored); err != nil {
			r.logger.Error("Failed to push notification %s to user %s: %v", stored.ID, recipientID, err)
			continue
		}
		result.Published = append(result.Published, recipientID)
	}

	r.appendActivity(ctx, event)

	return result, nil
}

// resolveRecipients prefers the event's explicit recipient list (direct
// mentions), otherwise asks the resolver for the project's collaborators.
// Resolver failure degrades to no notifications; the feed append below
// still proceeds.
func (r *deliveryRouter) resolveRecipients(event entity.Event) []string {
	if len(event.Recipients) > 0 {
		return event.Recipients
	}
	if event.ProjectID == "" {
		return nil
	}

	collaborators, err := r.resolver.Collaborators(event.ProjectID)
	if err != nil {
		r.logger.Error("Failed to resolve collaborators for project %s, skipping notifications: %v", event.ProjectID, err)
		return nil
	}

	userIDs := make([]string, len(collaborators))
	for i, c := range collaborators {
		userIDs[i] = c.UserID
	}
	return userIDs
}

func (r *deliveryRouter) buildNotification(event entity.Event, recipientID string) entity.Notification {
	return entity.Notification{
		Type:         event.NotificationType(),
		Category:     event.Category(),
		Title:        event.Title,
		Message:      event.Message,
		Metadata:     event.Metadata,
		RecipientID:  recipientID,
		SenderID:     event.ActorID,
		ProjectID:    event.ProjectID,
		EntityID:     event.EntityID,
		EntityType:   event.EntityType,
		Priority:     event.EffectivePriority(),
		IsActionable: len(event.Actions) > 0,
		Actions:      event.Actions,
		ExpiresAt:    event.ExpiresAt,
	}
}

// appendActivity records the event in the owning project's feed and
// broadcasts it, even when the event produced no notifications.
func (r *deliveryRouter) appendActivity(ctx context.Context, event entity.Event) {
	if event.ProjectID == "" {
		return
	}
	activityType, ok := event.ActivityType()
	if !ok {
		return
	}

	item := r.feed.Append(entity.ActivityFeedItem{
		Type:       activityType,
		ActorID:    event.ActorID,
		ActorName:  event.ActorName,
		Action:     event.Action,
		TargetType: event.EntityType,
		TargetID:   event.EntityID,
		TargetName: event.EntityName,
		ProjectID:  event.ProjectID,
		Metadata:   event.Metadata,
	})

	if err := r.publisher.PublishToProject(ctx, event.ProjectID, transport.EventActivityFeedItem, item); err != nil {
		r.logger.Error("Failed to broadcast activity item %s to project %s: %v", item.ID, event.ProjectID, err)
	}
}
