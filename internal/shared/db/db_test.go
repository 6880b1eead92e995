package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type item struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&item{}))
	return gdb
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	gdb := setupDB(t)
	tm := NewTransactionManager(gdb)

	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		require.True(t, InTransaction(ctx))
		require.NoError(t, GetTxFromContext(ctx, gdb).Create(&item{Name: "editors"}).Error)
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int64
	gdb.Model(&item{}).Count(&count)
	assert.Zero(t, count)
}

func TestRunInTransaction_NestedJoinsOuter(t *testing.T) {
	gdb := setupDB(t)
	tm := NewTransactionManager(gdb)

	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		if err := tm.RunInTransaction(ctx, func(inner context.Context) error {
			return GetTxFromContext(inner, gdb).Create(&item{Name: "a"}).Error
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})
	require.Error(t, err)

	var count int64
	gdb.Model(&item{}).Count(&count)
	assert.Zero(t, count)
}

func TestScopes(t *testing.T) {
	gdb := setupDB(t)
	for _, n := range []string{"alpha", "beta", "gamma_1", "gammax1"} {
		require.NoError(t, gdb.Create(&item{Name: n}).Error)
	}

	var found []item
	require.NoError(t, gdb.Scopes(Search("gamma_", "name")).Find(&found).Error)
	require.Len(t, found, 1)
	assert.Equal(t, "gamma_1", found[0].Name)

	found = nil
	require.NoError(t, gdb.Order("id").Scopes(Paginate(2, 3)).Find(&found).Error)
	require.Len(t, found, 1)
	assert.Equal(t, "gammax1", found[0].Name)
}
