package repository

import (
	campaigndomain "traincrm-backend/internal/campaign/domain"

	"gorm.io/gorm"
)

type SettingsRepository interface {
	Get() (*campaigndomain.EmailSettings, error)
}

// settingsRepository implements SettingsRepository
type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new instance of settingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the relay settings record, or nil when none has been saved.
func (r *settingsRepository) Get() (*campaigndomain.EmailSettings, error) {
	var settings campaigndomain.EmailSettings
	err := r.db.Order("updated_at DESC").First(&settings).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}
