package entity

import "time"

type ActivityType string

const (
	ActivityDocumentEdit     ActivityType = "document_edit"
	ActivityCommentAdded     ActivityType = "comment_added"
	ActivityUserJoined       ActivityType = "user_joined"
	ActivityUserLeft         ActivityType = "user_left"
	ActivityConflictResolved ActivityType = "conflict_resolved"
	ActivityEntityShared     ActivityType = "entity_shared"
)

// ActivityFeedItem is one entry in a project's activity log. Immutable once
// appended. ActorName is denormalized so the feed renders without a join.
type ActivityFeedItem struct {
	ID         string                 `json:"id"`
	Type       ActivityType           `json:"type"`
	ActorID    string                 `json:"actor_id"`
	ActorName  string                 `json:"actor_name"`
	Action     string                 `json:"action"`
	TargetType string                 `json:"target_type,omitempty"`
	TargetID   string                 `json:"target_id,omitempty"`
	TargetName string                 `json:"target_name,omitempty"`
	ProjectID  string                 `json:"project_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}
