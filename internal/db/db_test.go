package db_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soma-campus/soma-backend/internal/db"
	"github.com/soma-campus/soma-backend/internal/db/dbtest"
)

type tagged struct {
	ID    uint `gorm:"primaryKey"`
	Email string
	Live  bool
	Tags  db.StringList
}

func (tagged) TableName() string { return "tagged" }

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, db.IsUniqueViolation(nil))
	assert.False(t, db.IsUniqueViolation(errors.New("boom")))
	assert.True(t, db.IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, db.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, db.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
}

func TestPartialUniqueIndex(t *testing.T) {
	d := dbtest.Open(t)
	require.NoError(t, d.AutoMigrate(&tagged{}))
	require.NoError(t, db.EnsurePartialUniqueIndex(d, "idx_tagged_live_email", "tagged", "email", "live = true"))

	require.NoError(t, d.Create(&tagged{Email: "a@x", Live: true}).Error)
	require.NoError(t, d.Create(&tagged{Email: "a@x", Live: false}).Error)
	require.NoError(t, d.Create(&tagged{Email: "a@x", Live: false}).Error)

	err := d.Create(&tagged{Email: "a@x", Live: true}).Error
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))
}

func TestStringListRoundTrip(t *testing.T) {
	d := dbtest.Open(t)
	require.NoError(t, d.AutoMigrate(&tagged{}))

	row := tagged{Email: "b@x", Tags: db.StringList{"one", "two words", `q"uote`}}
	require.NoError(t, d.Create(&row).Error)

	var got tagged
	require.NoError(t, d.First(&got, row.ID).Error)
	assert.Equal(t, row.Tags, got.Tags)
	assert.True(t, slices.Contains(got.Tags, "two words"))

	empty := tagged{Email: "c@x"}
	require.NoError(t, d.Create(&empty).Error)
	require.NoError(t, d.First(&got, empty.ID).Error)
	assert.Empty(t, got.Tags)
}
