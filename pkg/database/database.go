package database

import (
	"traincrm-backend/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresConnection opens the CRM database. TranslateError is enabled so
// unique-constraint violations surface as gorm.ErrDuplicatedKey, which the
// lead importer relies on for dedup under concurrent runs.
func NewPostgresConnection(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
