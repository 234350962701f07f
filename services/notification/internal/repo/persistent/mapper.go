package persistent

import (
	"draftroom/pkg/models"
	"draftroom/services/notification/internal/entity"
)

func ToCollaboratorEntities(rows []models.Collaborator) []entity.Collaborator {
	collaborators := make([]entity.Collaborator, len(rows))
	for i, row := range rows {
		collaborators[i] = entity.Collaborator{
			UserID: row.UserID,
			Role:   string(row.Role),
		}
	}
	return collaborators
}

func ToProjectRefEntities(rows []models.Project) []entity.ProjectRef {
	refs := make([]entity.ProjectRef, len(rows))
	for i, row := range rows {
		refs[i] = entity.ProjectRef{
			ID:    row.ID,
			Title: row.Title,
		}
	}
	return refs
}

func ToPreferencesEntity(row *models.NotificationPreference) entity.NotificationPreferences {
	return entity.NotificationPreferences{
		UserID:               row.UserID,
		CollaborationUpdates: row.CollaborationUpdates,
		Comments:             row.Comments,
		Mentions:             row.Mentions,
		AccessRequests:       row.AccessRequests,
		Conflicts:            row.Conflicts,
		System:               row.System,
		DigestFrequency:      entity.DigestFrequency(row.DigestFrequency),
		QuietHours: entity.QuietHours{
			Enabled:   row.QuietHoursEnabled,
			StartTime: row.QuietHoursStart,
			EndTime:   row.QuietHoursEnd,
			Timezone:  row.QuietHoursTimezone,
		},
	}
}

func ToPreferenceModel(prefs entity.NotificationPreferences) models.NotificationPreference {
	return models.NotificationPreference{
		UserID:               prefs.UserID,
		CollaborationUpdates: prefs.CollaborationUpdates,
		Comments:             prefs.Comments,
		Mentions:             prefs.Mentions,
		AccessRequests:       prefs.AccessRequests,
		Conflicts:            prefs.Conflicts,
		System:               prefs.System,
		DigestFrequency:      string(prefs.DigestFrequency),
		QuietHoursEnabled:    prefs.QuietHours.Enabled,
		QuietHoursStart:      prefs.QuietHours.StartTime,
		QuietHoursEnd:        prefs.QuietHours.EndTime,
		QuietHoursTimezone:   prefs.QuietHours.Timezone,
	}
}
