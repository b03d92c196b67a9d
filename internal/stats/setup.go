package stats

import (
	"fmt"

	"gorm.io/gorm"
)

func Init(d *gorm.DB) error {
	if err := d.AutoMigrate(&DailyImpression{}); err != nil {
		return fmt.Errorf("migrate stats tables: %w", err)
	}
	return nil
}
