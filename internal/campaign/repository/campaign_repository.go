package repository

import (
	"time"

	campaigndomain "traincrm-backend/internal/campaign/domain"

	"gorm.io/gorm"
)

type CampaignRepository interface {
	GetByID(id string) (*campaigndomain.MarketingCampaign, error)
	UpdateStatus(id, status string, sentAt *time.Time) error
}

// campaignRepository implements CampaignRepository
type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates a new instance of campaignRepository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) GetByID(id string) (*campaigndomain.MarketingCampaign, error) {
	var campaign campaigndomain.MarketingCampaign
	err := r.db.Where("id = ?", id).First(&campaign).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) UpdateStatus(id, status string, sentAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if sentAt != nil {
		updates["sent_at"] = sentAt
	}
	return r.db.Model(&campaigndomain.MarketingCampaign{}).
		Where("id = ?", id).
		Updates(updates).Error
}
