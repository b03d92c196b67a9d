package parties

import (
	"fmt"

	"gorm.io/gorm"
)

func Init(d *gorm.DB) error {
	if err := d.AutoMigrate(&Party{}, &Candidate{}, &Ballot{}); err != nil {
		return fmt.Errorf("migrate party tables: %w", err)
	}
	return nil
}
