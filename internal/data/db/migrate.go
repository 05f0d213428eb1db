package db

import (
	"fmt"

	types "github.com/yungbote/rango-rater-backend/internal/domain"
	"gorm.io/gorm"
)

// EnsureSchema creates users, activities, ratings and sync_runs with their
// unique, foreign key and check constraints. Safe to run on every startup.
func EnsureSchema(db *gorm.DB) error {
	if db.Dialector.Name() == DriverSQLite {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return Classify(fmt.Errorf("enable sqlite foreign keys: %w", err))
		}
	}
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return Classify(fmt.Errorf("automigrate: %w", err))
	}
	return nil
}
