package entity

import (
	"fmt"
	"time"
)

// Preference categories. Free-form strings on the notification record,
// but routing derives them from the event type.
const (
	CategoryCollaboration = "collaboration_updates"
	CategoryComments      = "comments"
	CategoryMentions      = "mentions"
	CategoryAccess        = "access_requests"
	CategoryConflicts     = "conflicts"
	CategorySystem        = "system"
)

type EventType string

const (
	EventDocumentEdited   EventType = "document_edited"
	EventCommentAdded     EventType = "comment_added"
	EventMention          EventType = "mention"
	EventUserJoined       EventType = "user_joined"
	EventUserLeft         EventType = "user_left"
	EventConflictDetected EventType = "conflict_detected"
	EventConflictResolved EventType = "conflict_resolved"
	EventEntityShared     EventType = "entity_shared"
	EventAccessRequested  EventType = "access_requested"
	EventSystemNotice     EventType = "system_notice"
)

// Event is a typed collaboration event consumed by the delivery router. It
// arrives over the intake queue or the internal HTTP endpoint.
type Event struct {
	Type       EventType              `json:"type"`
	ProjectID  string                 `json:"project_id,omitempty"`
	ActorID    string                 `json:"actor_id"`
	ActorName  string                 `json:"actor_name,omitempty"`
	Recipients []string               `json:"recipients,omitempty"` // explicit, e.g. direct mentions
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	EntityID   string                 `json:"entity_id,omitempty"`
	EntityType string                 `json:"entity_type,omitempty"`
	EntityName string                 `json:"entity_name,omitempty"`
	Action     string                 `json:"action,omitempty"` // display verb, e.g. "updated"
	Priority   Priority               `json:"priority,omitempty"`
	Actions    []NotificationAction   `json:"actions,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	ExpiresAt  *time.Time             `json:"expires_at,omitempty"`
}

// Validate rejects events the router could not do anything sensible with.
func (e Event) Validate() error {
	switch e.Type {
	case EventDocumentEdited, EventCommentAdded, EventMention, EventUserJoined,
		EventUserLeft, EventConflictDetected, EventConflictResolved,
		EventEntityShared, EventAccessRequested, EventSystemNotice:
	default:
		return fmt.Errorf("%w: unknown event type %q", ErrValidation, e.Type)
	}
	if e.Title == "" {
		return fmt.Errorf("%w: event title is required", ErrValidation)
	}
	if e.ActorID == "" && e.Type != EventSystemNotice {
		return fmt.Errorf("%w: event actor_id is required", ErrValidation)
	}
	if e.ProjectID == "" && len(e.Recipients) == 0 {
		return fmt.Errorf("%w: event needs a project_id or explicit recipients", ErrValidation)
	}
	return nil
}

// NotificationType maps the event to the stored notification type.
func (e Event) NotificationType() NotificationType {
	switch e.Type {
	case EventCommentAdded:
		return TypeComment
	case EventMention:
		return TypeMention
	case EventAccessRequested, EventEntityShared:
		return TypeAccess
	case EventConflictDetected, EventConflictResolved:
		return TypeConflict
	case EventSystemNotice:
		return TypeSystem
	default:
		return TypeCollaboration
	}
}

// Category maps the event to the preference category it is matched against.
func (e Event) Category() string {
	switch e.Type {
	case EventCommentAdded:
		return CategoryComments
	case EventMention:
		return CategoryMentions
	case EventAccessRequested, EventEntityShared:
		return CategoryAccess
	case EventConflictDetected, EventConflictResolved:
		return CategoryConflicts
	case EventSystemNotice:
		return CategorySystem
	default:
		return CategoryCollaboration
	}
}

// ActivityType maps the event to a feed item type. The second return is
// false for events that never show up in the project feed.
func (e Event) ActivityType() (ActivityType, bool) {
	switch e.Type {
	case EventDocumentEdited:
		return ActivityDocumentEdit, true
	case EventCommentAdded:
		return ActivityCommentAdded, true
	case EventUserJoined:
		return ActivityUserJoined, true
	case EventUserLeft:
		return ActivityUserLeft, true
	case EventConflictResolved:
		return ActivityConflictResolved, true
	case EventEntityShared:
		return ActivityEntityShared, true
	}
	return "", false
}

// EffectivePriority defaults to medium when the producer left it unset.
func (e Event) EffectivePriority() Priority {
	if e.Priority == "" {
		return PriorityMedium
	}
	return e.Priority
}

// Collaborator is one project member as returned by the resolver.
type Collaborator struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// ProjectRef is the minimal project identity used for cross-project reads.
type ProjectRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
