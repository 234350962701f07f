package persistent

import (
	"testing"

	"draftroom/pkg/models"
	"draftroom/services/notification/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestPreferenceMapper_RoundTrip(t *testing.T) {
	prefs := entity.NotificationPreferences{
		UserID:               "user-1",
		CollaborationUpdates: true,
		Comments:             false,
		Mentions:             true,
		AccessRequests:       true,
		Conflicts:            false,
		System:               true,
		DigestFrequency:      entity.DigestDaily,
		QuietHours: entity.QuietHours{
			Enabled:   true,
			StartTime: "22:00",
			EndTime:   "07:00",
			Timezone:  "Europe/Berlin",
		},
	}

	row := ToPreferenceModel(prefs)
	back := ToPreferencesEntity(&row)

	assert.Equal(t, prefs, back)
}

func TestToCollaboratorEntities(t *testing.T) {
	rows := []models.Collaborator{
		{UserID: "user-1", Role: models.RoleOwner},
		{UserID: "user-2", Role: models.RoleEditor},
	}

	got := ToCollaboratorEntities(rows)
	assert.Len(t, got, 2)
	assert.Equal(t, "user-1", got[0].UserID)
	assert.Equal(t, "owner", got[0].Role)
	assert.Equal(t, "editor", got[1].Role)
}
