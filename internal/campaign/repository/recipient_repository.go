package repository

import (
	"time"

	campaigndomain "traincrm-backend/internal/campaign/domain"

	"gorm.io/gorm"
)

type RecipientRepository interface {
	GetByID(id string) (*campaigndomain.CampaignRecipient, error)
	// ListUnsent returns recipients still awaiting a send, excluding anyone
	// who has unsubscribed.
	ListUnsent(campaignID string) ([]campaigndomain.CampaignRecipient, error)
	MarkSent(id string, sentAt time.Time) error
	MarkFailed(id, lastError string) error
	IncrementOpen(id string) error
	IncrementClick(id string) error
	MarkUnsubscribed(id string, at time.Time) error
}

// recipientRepository implements RecipientRepository
type recipientRepository struct {
	db *gorm.DB
}

// NewRecipientRepository creates a new instance of recipientRepository
func NewRecipientRepository(db *gorm.DB) RecipientRepository {
	return &recipientRepository{db: db}
}

func (r *recipientRepository) GetByID(id string) (*campaigndomain.CampaignRecipient, error) {
	var recipient campaigndomain.CampaignRecipient
	err := r.db.Where("id = ?", id).First(&recipient).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &recipient, nil
}

func (r *recipientRepository) ListUnsent(campaignID string) ([]campaigndomain.CampaignRecipient, error) {
	var recipients []campaigndomain.CampaignRecipient
	err := r.db.
		Where("campaign_id = ? AND sent = ? AND unsubscribed_at IS NULL", campaignID, false).
		Order("created_at").
		Find(&recipients).Error
	return recipients, err
}

func (r *recipientRepository) MarkSent(id string, sentAt time.Time) error {
	return r.db.Model(&campaigndomain.CampaignRecipient{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sent":            true,
			"sent_at":         sentAt,
			"delivery_status": campaigndomain.DeliveryDelivered,
			"last_error":      "",
		}).Error
}

func (r *recipientRepository) MarkFailed(id, lastError string) error {
	// Sent stays false so a retry run picks this recipient up again.
	return r.db.Model(&campaigndomain.CampaignRecipient{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"delivery_status": campaigndomain.DeliveryFailed,
			"last_error":      lastError,
		}).Error
}

// Counter increments run as row-scoped SQL expressions so concurrent
// duplicate tracking requests never lose an update.
func (r *recipientRepository) IncrementOpen(id string) error {
	return r.db.Model(&campaigndomain.CampaignRecipient{}).
		Where("id = ?", id).
		UpdateColumn("open_count", gorm.Expr("open_count + 1")).Error
}

func (r *recipientRepository) IncrementClick(id string) error {
	return r.db.Model(&campaigndomain.CampaignRecipient{}).
		Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
}

func (r *recipientRepository) MarkUnsubscribed(id string, at time.Time) error {
	return r.db.Model(&campaigndomain.CampaignRecipient{}).
		Where("id = ?", id).
		Update("unsubscribed_at", at).Error
}
