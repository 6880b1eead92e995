package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/warden/internal/domain/user"
	vo "github.com/orris-inc/warden/internal/domain/user/valueobjects"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(models.All()...))
	return gdb
}

func createGroup(t *testing.T, repo usergroup.Repository, name string, active bool, sortOrder int) *usergroup.UserGroup {
	t.Helper()
	g, err := usergroup.NewUserGroup(usergroup.Details{
		Name:        name,
		DisplayName: "Group " + name,
		IsActive:    active,
		SortOrder:   sortOrder,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), g))
	return g
}

func createUser(t *testing.T, repo user.Repository, email string, roles ...string) *user.User {
	t.Helper()
	addr, err := vo.NewEmail(email)
	require.NoError(t, err)
	u, err := user.NewUser(1, email, addr, "$2a$10$hash", false)
	require.NoError(t, err)
	u.AssignRoles(roles...)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func nopLogger() logger.Interface {
	return logger.NewNopLogger()
}
