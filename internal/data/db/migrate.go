package db

import (
	"fmt"

	types "github.com/mindmirror/mindmirror-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(&types.Feeling{}); err != nil {
		return fmt.Errorf("automigrate feeling: %w", err)
	}
	return nil
}
