package persistent

import (
	"draftroom/pkg/models"
	"draftroom/services/notification/internal/entity"

	"gorm.io/gorm"
)

// CollaboratorResolver answers membership questions for shared projects.
// The relational store behind it is owned by the rest of the platform; this
// service only reads.
type CollaboratorResolver interface {
	Collaborators(projectID string) ([]entity.Collaborator, error)
	ProjectsForUser(userID string) ([]entity.ProjectRef, error)
}

type collaboratorRepository struct {
	db *gorm.DB
}

func NewCollaboratorRepository(db *gorm.DB) CollaboratorResolver {
	return &collaboratorRepository{db: db}
}

func (r *collaboratorRepository) Collaborators(projectID string) ([]entity.Collaborator, error) {
	var rows []models.Collaborator
	err := r.db.Where("project_id = ?", projectID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return ToCollaboratorEntities(rows), nil
}

func (r *collaboratorRepository) ProjectsForUser(userID string) ([]entity.ProjectRef, error) {
	var rows []models.Project
	err := r.db.
		Joins("JOIN collaborators ON collaborators.project_id = projects.id").
		Where("collaborators.user_id = ? AND collaborators.deleted_at IS NULL", userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return ToProjectRefEntities(rows), nil
}
