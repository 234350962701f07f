package usecase

import (
	"errors"
	"testing"

	"draftroom/pkg/logger"
	"draftroom/services/notification/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestPreferenceGet_DefaultsForUnknownUser(t *testing.T) {
	uc := NewPreferenceUseCase(newFakePreferenceRepo(), logger.New())

	prefs := uc.Get("user-1")

	assert.Equal(t, "user-1", prefs.UserID)
	assert.True(t, prefs.CollaborationUpdates)
	assert.True(t, prefs.Mentions)
	assert.Equal(t, entity.DigestInstant, prefs.DigestFrequency)
	assert.False(t, prefs.QuietHours.Enabled)
}

func TestPreferenceGet_RepoErrorFallsBackToDefaults(t *testing.T) {
	repo := newFakePreferenceRepo()
	repo.getErr = errors.New("connection refused")
	uc := NewPreferenceUseCase(repo, logger.New())

	prefs := uc.Get("user-1")

	assert.Equal(t, entity.DefaultPreferences("user-1"), prefs)
}

func TestPreferenceUpdate_MergesIntoStored(t *testing.T) {
	repo := newFakePreferenceRepo()
	uc := NewPreferenceUseCase(repo, logger.New())

	freq := entity.DigestDaily
	updated, err := uc.Update("user-1", entity.PreferencesPatch{DigestFrequency: &freq})
	assert.NoError(t, err)
	assert.Equal(t, entity.DigestDaily, updated.DigestFrequency)
	// Untouched fields keep their defaults
	assert.True(t, updated.Comments)

	off := false
	updated, err = uc.Update("user-1", entity.PreferencesPatch{Comments: &off})
	assert.NoError(t, err)
	assert.False(t, updated.Comments)
	// Earlier update survives the second patch
	assert.Equal(t, entity.DigestDaily, updated.DigestFrequency)

	assert.Equal(t, updated, uc.Get("user-1"))
}

func TestPreferenceUpdate_InvalidPatchLeavesStoredUntouched(t *testing.T) {
	repo := newFakePreferenceRepo()
	uc := NewPreferenceUseCase(repo, logger.New())

	off := false
	_, err := uc.Update("user-1", entity.PreferencesPatch{Mentions: &off})
	assert.NoError(t, err)

	// Valid toggle bundled with a broken quiet hours block: nothing applies
	on := true
	_, err = uc.Update("user-1", entity.PreferencesPatch{
		Mentions: &on,
		QuietHours: &entity.QuietHours{
			Enabled:   true,
			StartTime: "25:99",
			EndTime:   "08:00",
			Timezone:  "UTC",
		},
	})
	assert.ErrorIs(t, err, entity.ErrValidation)
	assert.False(t, uc.Get("user-1").Mentions)
}

func TestPreferenceUpdate_RejectsUnknownDigestFrequency(t *testing.T) {
	uc := NewPreferenceUseCase(newFakePreferenceRepo(), logger.New())

	bad := entity.DigestFrequency("fortnightly")
	_, err := uc.Update("user-1", entity.PreferencesPatch{DigestFrequency: &bad})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestPreferenceUpdate_SaveErrorPropagates(t *testing.T) {
	repo := newFakePreferenceRepo()
	repo.saveErr = errors.New("disk full")
	uc := NewPreferenceUseCase(repo, logger.New())

	freq := entity.DigestWeekly
	_, err := uc.Update("user-1", entity.PreferencesPatch{DigestFrequency: &freq})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, entity.ErrValidation)
}
