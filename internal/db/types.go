package db

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is a text[] column on Postgres and its array literal stored as
// text elsewhere.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(s).Value()
}

func (s *StringList) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*s = StringList(arr)
	return nil
}

func (StringList) GormDBDataType(d *gorm.DB, _ *schema.Field) string {
	if d.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
