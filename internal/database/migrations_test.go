package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dleutenegger/breez-sdk/internal/models"
)

func TestAutoMigrateCreatesCachedItemsTable(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	require.True(t, migrator.HasTable("cached_items"), "expected cached_items table to exist")
	require.True(t, migrator.HasColumn(&models.CachedItem{}, "key"))
	require.True(t, migrator.HasColumn(&models.CachedItem{}, "value"))
}

func TestAutoMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, db.Create(&models.CachedItem{Key: "node_state", Value: "{}"}).Error)
	require.NoError(t, AutoMigrate(db))

	var count int64
	require.NoError(t, db.Model(&models.CachedItem{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAutoMigrateRejectsNilHandle(t *testing.T) {
	require.Error(t, AutoMigrate(nil))
}

func TestPrimaryKeyRejectsDuplicateInsert(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, db.Create(&models.CachedItem{Key: "key1", Value: "val1"}).Error)
	require.Error(t, db.Create(&models.CachedItem{Key: "key1", Value: "val2"}).Error)
}
