package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsurePartialUniqueIndex creates a unique index over column restricted to
// rows matching where. gorm tags cannot express the predicate.
func EnsurePartialUniqueIndex(d *gorm.DB, name, table, column, where string) error {
	stmt := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s) WHERE %s`, name, table, column, where)
	if err := d.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// ForUpdate row-locks the selected rows on Postgres. SQLite serializes
// writers already and has no FOR UPDATE.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
