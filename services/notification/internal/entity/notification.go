package entity

import (
	"errors"
	"time"
)

// ErrValidation marks rejected user input. Callers check it with errors.Is
// and translate it to a 400.
var ErrValidation = errors.New("validation failed")

type NotificationType string

const (
	TypeCollaboration NotificationType = "collaboration"
	TypeComment       NotificationType = "comment"
	TypeMention       NotificationType = "mention"
	TypeAccess        NotificationType = "access"
	TypeConflict      NotificationType = "conflict"
	TypeSystem        NotificationType = "system"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type ActionKind string

const (
	ActionButton  ActionKind = "button"
	ActionLink    ActionKind = "link"
	ActionAPICall ActionKind = "api_call"
)

type ActionStyle string

const (
	StylePrimary   ActionStyle = "primary"
	StyleSecondary ActionStyle = "secondary"
	StyleSuccess   ActionStyle = "success"
	StyleWarning   ActionStyle = "warning"
	StyleDanger    ActionStyle = "danger"
)

// NotificationAction is an inline action attached to a notification, owned
// exclusively by its parent.
type NotificationAction struct {
	ID       string                 `json:"id"`
	Label    string                 `json:"label"`
	Kind     ActionKind             `json:"kind"`
	Action   string                 `json:"action"`
	Style    ActionStyle            `json:"style,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Notification is immutable once stored except for the IsRead/ReadAt pair,
// which transitions exactly once.
type Notification struct {
	ID           string                 `json:"id"`
	Type         NotificationType       `json:"type"`
	Category     string                 `json:"category"`
	Title        string                 `json:"title"`
	Message      string                 `json:"message"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	RecipientID  string                 `json:"recipient_id"`
	SenderID     string                 `json:"sender_id,omitempty"`
	ProjectID    string                 `json:"project_id,omitempty"`
	EntityID     string                 `json:"entity_id,omitempty"`
	EntityType   string                 `json:"entity_type,omitempty"`
	Priority     Priority               `json:"priority"`
	IsRead       bool                   `json:"is_read"`
	IsActionable bool                   `json:"is_actionable"`
	Actions      []NotificationAction   `json:"actions,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	ReadAt       *time.Time             `json:"read_at,omitempty"`
	ExpiresAt    *time.Time             `json:"expires_at,omitempty"`

	// PendingDigest is store-side delivery state, never serialized. It only
	// affects the deferred push channel, not listing.
	PendingDigest bool `json:"-"`
}

// Expired reports whether the notification's expiry has passed. Notifications
// without an expiry never expire.
func (n *Notification) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && !n.ExpiresAt.After(now)
}

// DigestBatch is one deferred delivery unit handed to the digest channel.
type DigestBatch struct {
	UserID        string         `json:"user_id"`
	Notifications []Notification `json:"notifications"`
}
