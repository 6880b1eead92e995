package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/infrastructure/repository"
	"github.com/orris-inc/warden/internal/shared/db"
	"github.com/orris-inc/warden/internal/shared/logger"
)

func setupStore(t *testing.T) (*gorm.DB, *PolicyStore, *Enforcer) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	log := logger.NewNopLogger()
	enforcer, err := NewEnforcer(gdb, log)
	require.NoError(t, err)
	return gdb, NewPolicyStore(gdb, log), enforcer
}

func TestEnforcer_DenyBeatsGrant(t *testing.T) {
	_, store, enforcer := setupStore(t)
	ctx := context.Background()

	admin := permission.RoleSubject("admin")
	auditors := permission.GroupSubject(3)

	require.NoError(t, store.SyncGrants(ctx, admin, []permission.Capability{permission.ViewUserGroups, permission.DeleteUserGroups}))
	require.NoError(t, store.Apply(ctx, auditors, map[permission.Capability]permission.Action{
		permission.DeleteUserGroups: permission.ActionDeny,
	}))
	require.NoError(t, enforcer.Reload())

	allowed, err := enforcer.Allowed([]permission.Subject{admin}, permission.DeleteUserGroups)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = enforcer.Allowed([]permission.Subject{admin, auditors}, permission.DeleteUserGroups)
	require.NoError(t, err)
	assert.False(t, allowed, "a deny from any subject wins")

	allowed, err = enforcer.Allowed([]permission.Subject{admin, auditors}, permission.ViewUserGroups)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = enforcer.Allowed([]permission.Subject{auditors}, permission.ViewUserGroups)
	require.NoError(t, err)
	assert.False(t, allowed, "absent is not granted")

	allowed, err = enforcer.Allowed(nil, permission.ViewUserGroups)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestEnforcer_SubjectMatchIsExact(t *testing.T) {
	_, store, enforcer := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SyncGrants(ctx, permission.GroupSubject(1), []permission.Capability{permission.ViewUsers}))
	require.NoError(t, enforcer.Reload())

	allowed, err := enforcer.Allowed([]permission.Subject{permission.GroupSubject(11)}, permission.ViewUsers)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestPolicyStore_ApplyAndDispositions(t *testing.T) {
	_, store, _ := setupStore(t)
	ctx := context.Background()
	g := permission.GroupSubject(8)

	require.NoError(t, store.Apply(ctx, g, map[permission.Capability]permission.Action{
		permission.ViewUsers:   permission.ActionGrant,
		permission.EditUsers:   permission.ActionDeny,
		permission.DeleteUsers: permission.ActionRemove,
	}))

	got, err := store.Dispositions(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, map[permission.Capability]permission.Disposition{
		permission.ViewUsers: permission.Allow,
		permission.EditUsers: permission.Deny,
	}, got)

	require.NoError(t, store.Apply(ctx, g, map[permission.Capability]permission.Action{
		permission.ViewUsers: permission.ActionDeny,
		permission.EditUsers: permission.ActionRemove,
	}))
	got, err = store.Dispositions(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, map[permission.Capability]permission.Disposition{permission.ViewUsers: permission.Deny}, got)
}

func TestPolicyStore_SyncGrantsKeepsUnrelatedDenies(t *testing.T) {
	_, store, _ := setupStore(t)
	ctx := context.Background()
	g := permission.GroupSubject(2)

	require.NoError(t, store.Apply(ctx, g, map[permission.Capability]permission.Action{
		permission.ViewUsers:        permission.ActionGrant,
		permission.EditUsers:        permission.ActionDeny,
		permission.DeleteUserGroups: permission.ActionDeny,
	}))

	require.NoError(t, store.SyncGrants(ctx, g, []permission.Capability{permission.ViewUserGroups, permission.EditUsers, permission.EditUsers}))

	got, err := store.Dispositions(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, map[permission.Capability]permission.Disposition{
		permission.ViewUserGroups:   permission.Allow,
		permission.EditUsers:        permission.Allow,
		permission.DeleteUserGroups: permission.Deny,
	}, got)
}

func TestPolicyStore_RollsBackWithTransaction(t *testing.T) {
	gdb, store, _ := setupStore(t)
	tm := db.NewTransactionManager(gdb)
	g := permission.GroupSubject(5)

	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		if err := store.SyncGrants(ctx, g, []permission.Capability{permission.ViewUsers}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := store.Dispositions(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPolicyStore_DeleteSubject(t *testing.T) {
	_, store, _ := setupStore(t)
	ctx := context.Background()
	g := permission.GroupSubject(4)
	other := permission.GroupSubject(40)

	require.NoError(t, store.SyncGrants(ctx, g, []permission.Capability{permission.ViewUsers}))
	require.NoError(t, store.SyncGrants(ctx, other, []permission.Capability{permission.ViewUsers}))
	require.NoError(t, store.DeleteSubject(ctx, g))

	got, err := store.Dispositions(ctx, g)
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = store.Dispositions(ctx, other)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

const roleYAML = `
roles:
  - slug: super-admin
    name: Super Admin
    grant: ["*"]
  - slug: admin
    name: Administrator
    grant:
      - view user groups
      - create user groups
      - edit user groups
      - delete user groups
    deny:
      - delete users
`

func TestSeeder_SeedAndCheck(t *testing.T) {
	gdb, store, enforcer := setupStore(t)
	log := logger.NewNopLogger()
	seeder := NewSeeder(
		db.NewTransactionManager(gdb),
		repository.NewPermissionCatalogRepository(gdb, log),
		repository.NewRoleRepository(gdb, log),
		store, enforcer, log,
	)
	ctx := context.Background()

	f, err := ParseRoleFile([]byte(roleYAML))
	require.NoError(t, err)
	require.NoError(t, seeder.Seed(ctx, f))

	allowed, err := enforcer.Allowed([]permission.Subject{permission.RoleSubject("super-admin")}, permission.ManagePermissionsUserGroups)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = enforcer.Allowed([]permission.Subject{permission.RoleSubject("admin")}, permission.DeleteUsers)
	require.NoError(t, err)
	assert.False(t, allowed)

	// reseeding is stable
	require.NoError(t, seeder.Seed(ctx, f))
	d, err := store.Dispositions(ctx, permission.RoleSubject("admin"))
	require.NoError(t, err)
	assert.Len(t, d, 5)

	drift, err := seeder.Check(ctx)
	require.NoError(t, err)
	assert.True(t, drift.Clean())
}

func TestParseRoleFile_RejectsUnknownCapability(t *testing.T) {
	_, err := ParseRoleFile([]byte("roles:\n  - slug: admin\n    grant: [\"launch rockets\"]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "launch rockets")

	_, err = ParseRoleFile([]byte("roles:\n  - slug: a\n  - slug: a\n"))
	assert.Error(t, err)
}

func TestEnforcer_OnReload(t *testing.T) {
	_, _, enforcer := setupStore(t)
	calls := 0
	enforcer.OnReload(func() { calls++ })

	require.NoError(t, enforcer.Reload())
	require.NoError(t, enforcer.Reload())
	assert.Equal(t, 2, calls)
}
