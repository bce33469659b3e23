// Package schema owns the list of persisted models.
package schema

import (
	"fmt"

	authdomain "minimalist-backend/internal/auth/domain"
	tododomain "minimalist-backend/internal/todo/domain"

	"gorm.io/gorm"
)

// Models lists every table the service owns
func Models() []interface{} {
	return []interface{}{
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.FCMToken{},
		&authdomain.ShareCode{},
		&tododomain.Todo{},
	}
}

// Migrate creates or updates all tables and indexes
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
