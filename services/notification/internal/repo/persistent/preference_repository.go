package persistent

import (
	"errors"

	"draftroom/pkg/models"
	"draftroom/services/notification/internal/entity"

	"gorm.io/gorm"
)

// PreferenceRepository persists per-user notification settings. Get returns
// (nil, nil) for users without a stored row; callers fall back to defaults.
type PreferenceRepository interface {
	Get(userID string) (*entity.NotificationPreferences, error)
	Save(prefs entity.NotificationPreferences) error
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(userID string) (*entity.NotificationPreferences, error) {
	var row models.NotificationPreference
	err := r.db.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	prefs := ToPreferencesEntity(&row)
	return &prefs, nil
}

func (r *preferenceRepository) Save(prefs entity.NotificationPreferences) error {
	row := ToPreferenceModel(prefs)
	return r.db.Save(&row).Error
}
