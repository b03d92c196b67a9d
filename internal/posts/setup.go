package posts

import (
	"fmt"

	"gorm.io/gorm"
)

// Init expects the user and party tables to exist already.
func Init(d *gorm.DB) error {
	if err := d.AutoMigrate(&Post{}, &PostVote{}); err != nil {
		return fmt.Errorf("migrate post tables: %w", err)
	}
	return nil
}
