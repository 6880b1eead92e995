package migration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/logger"
)

func TestNewManager_PicksStrategy(t *testing.T) {
	log := logger.NewNopLogger()

	assert.Equal(t, "gorm_auto_migrate", NewManager(constants.EnvProduction, "sqlite", log).Strategy().Name())
	assert.Equal(t, "goose", NewManager(constants.EnvProduction, "mysql", log).Strategy().Name())
	assert.Equal(t, "goose", NewManager(constants.EnvTest, "mysql", log).Strategy().Name())
	assert.Equal(t, "gorm_auto_migrate", NewManager(constants.EnvDevelopment, "mysql", log).Strategy().Name())
}

func TestManager_AutoMigrateSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	m := NewManager(constants.EnvDevelopment, "sqlite", logger.NewNopLogger())
	require.NoError(t, m.Migrate(context.Background(), db))

	for _, table := range []string{
		constants.TableUsers, constants.TableUserGroups, constants.TableUserGroupMembers,
		constants.TableCasbinRule, constants.TableActivityLogs,
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestEmbeddedScripts(t *testing.T) {
	entries, err := embeddedScripts.ReadDir("scripts")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := embeddedScripts.ReadFile("scripts/" + entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
	assert.Contains(t, string(data), "-- +goose Down")
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Create(dir, "add_group_color"))

	matches, err := filepath.Glob(filepath.Join(dir, "*_add_group_color.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "+goose Up")
}
