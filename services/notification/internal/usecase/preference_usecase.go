package usecase

import (
	"fmt"

	"draftroom/pkg/logger"
	"draftroom/services/notification/internal/entity"
	"draftroom/services/notification/internal/repo/persistent"
)

type PreferenceUseCase interface {
	Get(userID string) entity.NotificationPreferences
	Update(userID string, patch entity.PreferencesPatch) (entity.NotificationPreferences, error)
}

type preferenceUseCase struct {
	repo   persistent.PreferenceRepository
	logger *logger.Logger
}

func NewPreferenceUseCase(repo persistent.PreferenceRepository, log *logger.Logger) PreferenceUseCase {
	return &preferenceUseCase{repo: repo, logger: log}
}

// Get returns the user's preferences, falling back to defaults for users
// who never saved any. It never fails: a repository error degrades to
// defaults so routing is never blocked on the database.
func (uc *preferenceUseCase) Get(userID string) entity.NotificationPreferences {
	stored, err := uc.repo.Get(userID)
	if err != nil {
		uc.logger.Warn("Failed to load preferences for user %s, using defaults: %v", userID, err)
		return entity.DefaultPreferences(userID)
	}
	if stored == nil {
		return entity.DefaultPreferences(userID)
	}
	return *stored
}

// Update validates the whole patch before applying anything, so an invalid
// field leaves the stored record untouched.
func (uc *preferenceUseCase) Update(userID string, patch entity.PreferencesPatch) (entity.NotificationPreferences, error) {
	if err := patch.Validate(); err != nil {
		return entity.NotificationPreferences{}, err
	}

	current := uc.Get(userID)
	merged := patch.Apply(current)
	merged.UserID = userID

	if err := uc.repo.Save(merged); err != nil {
		return entity.NotificationPreferences{}, fmt.Errorf("failed to save preferences: %w", err)
	}
	return merged, nil
}
