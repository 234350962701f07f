package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollaboratorRole string

const (
	RoleOwner  CollaboratorRole = "owner"
	RoleEditor CollaboratorRole = "editor"
	RoleViewer CollaboratorRole = "viewer"
)

type Collaborator struct {
	ID        string           `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID string           `gorm:"type:uuid;not null;index" json:"project_id"`
	UserID    string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Role      CollaboratorRole `gorm:"type:varchar(20);default:'viewer'" json:"role"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (c *Collaborator) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
