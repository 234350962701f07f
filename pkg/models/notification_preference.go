package models

import (
	"time"
)

// NotificationPreference is the persisted form of a user's notification
// settings. One row per user, created on first update.
type NotificationPreference struct {
	UserID               string    `gorm:"type:uuid;primary_key" json:"user_id"`
	CollaborationUpdates bool      `gorm:"default:true" json:"collaboration_updates"`
	Comments             bool      `gorm:"default:true" json:"comments"`
	Mentions             bool      `gorm:"default:true" json:"mentions"`
	AccessRequests       bool      `gorm:"default:true" json:"access_requests"`
	Conflicts            bool      `gorm:"default:true" json:"conflicts"`
	System               bool      `gorm:"default:true" json:"system"`
	DigestFrequency      string    `gorm:"type:varchar(20);default:'instant'" json:"digest_frequency"`
	QuietHoursEnabled    bool      `gorm:"default:false" json:"quiet_hours_enabled"`
	QuietHoursStart      string    `gorm:"type:varchar(5);default:'22:00'" json:"quiet_hours_start"`
	QuietHoursEnd        string    `gorm:"type:varchar(5);default:'08:00'" json:"quiet_hours_end"`
	QuietHoursTimezone   string    `gorm:"type:varchar(64);default:'UTC'" json:"quiet_hours_timezone"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}
