package repository

import (
	"strings"
	"time"

	campaigndomain "traincrm-backend/internal/campaign/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SuppressionRepository interface {
	Upsert(email, campaignID, reason string) error
}

// suppressionRepository implements SuppressionRepository
type suppressionRepository struct {
	db *gorm.DB
}

// NewSuppressionRepository creates a new instance of suppressionRepository
func NewSuppressionRepository(db *gorm.DB) SuppressionRepository {
	return &suppressionRepository{db: db}
}

// Upsert records a globally suppressed address, keyed by lowercased email.
// Unsubscribing twice is a no-op, not an error.
func (r *suppressionRepository) Upsert(email, campaignID, reason string) error {
	record := campaigndomain.UnsubscribedEmail{
		ID:         uuid.New().String(),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		CampaignID: campaignID,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	err := r.db.Create(&record).Error
	if err == gorm.ErrDuplicatedKey {
		return nil
	}
	return err
}
