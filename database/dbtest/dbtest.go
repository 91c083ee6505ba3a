// Package dbtest opens throwaway SQLite databases with the production schema.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"socialhub-app/database"
	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/users"
)

// Open returns a migrated database backed by a file in t.TempDir.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// SeedUser inserts u with its default free subscription.
func SeedUser(t *testing.T, db *gorm.DB, u *users.User) *users.User {
	t.Helper()
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(billing.NewDefaultSubscription(u.ID)).Error)
	return u
}
