package repository

import (
	leaddomain "traincrm-backend/internal/lead/domain"

	"gorm.io/gorm"
)

// LeadRepository is the slice of lead persistence the importer needs.
type LeadRepository interface {
	ExistsBySourceMessageID(messageID string) (bool, error)
	Create(lead *leaddomain.Lead) error
}

// leadRepository implements LeadRepository
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new instance of leadRepository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) ExistsBySourceMessageID(messageID string) (bool, error) {
	var lead leaddomain.Lead
	err := r.db.Select("id").Where("source_message_id = ?", messageID).First(&lead).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *leadRepository) Create(lead *leaddomain.Lead) error {
	return r.db.Create(lead).Error
}
