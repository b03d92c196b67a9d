package auth

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/soma-campus/soma-backend/internal/db"
)

// Init migrates the auth tables. The partial index backs the one-live-code
// rule when two issues race.
func Init(d *gorm.DB) error {
	if err := d.AutoMigrate(&User{}, &OTP{}); err != nil {
		return fmt.Errorf("migrate auth tables: %w", err)
	}
	return db.EnsurePartialUniqueIndex(d, "idx_otps_live_email", "otps", "email", "is_used = false")
}
