package database

import (
	"testing"

	"folio/internal/config"
	"folio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}

	assert.NoError(t, configurePool(db, cfg))
	assert.NoError(t, Close(db))
}

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "portfolios", "projects", "media", "share_links", "analytics_events"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	// The legacy inline token and the share link token must both be unique.
	assert.True(t, db.Migrator().HasIndex(&models.Portfolio{}, "ShareToken"))
	assert.True(t, db.Migrator().HasIndex(&models.ShareLink{}, "Token"))
}
