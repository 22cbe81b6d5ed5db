package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dleutenegger/breez-sdk/internal/models"
)

// AutoMigrate creates or updates the cache schema.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	return db.AutoMigrate(&models.CachedItem{})
}
