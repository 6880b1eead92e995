package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/query"
)

func TestUserGroupRepository_CreateAndGet(t *testing.T) {
	repo := NewUserGroupRepository(setupTestDB(t), nopLogger())
	ctx := context.Background()

	legacy := uint(77)
	g, err := usergroup.NewUserGroup(usergroup.Details{
		Name:          "editors",
		DisplayName:   "Editors",
		Description:   "Content editors",
		IsActive:      true,
		LegacyGroupID: &legacy,
		Metadata:      map[string]any{"region": "eu"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g))
	require.NotZero(t, g.ID())

	got, err := repo.GetByID(ctx, g.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Editors", got.DisplayName())
	assert.Equal(t, "eu", got.Metadata()["region"])
	require.NotNil(t, got.LegacyGroupID())
	assert.Equal(t, legacy, *got.LegacyGroupID())

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserGroupRepository_DuplicateNameIsFieldError(t *testing.T) {
	repo := NewUserGroupRepository(setupTestDB(t), nopLogger())
	createGroup(t, repo, "ops", true, 0)

	dup, err := usergroup.NewUserGroup(usergroup.Details{Name: "ops", DisplayName: "Ops again"})
	require.NoError(t, err)

	err = repo.Create(context.Background(), dup)
	require.Error(t, err)
	assert.Contains(t, errors.GetAppError(err).Fields, "name")
}

func TestUserGroupRepository_ExistsByName(t *testing.T) {
	repo := NewUserGroupRepository(setupTestDB(t), nopLogger())
	ctx := context.Background()
	g := createGroup(t, repo, "ops", false, 0)

	exists, err := repo.ExistsByName(ctx, "ops", 0)
	require.NoError(t, err)
	assert.True(t, exists, "inactive groups still reserve their name")

	exists, err = repo.ExistsByName(ctx, "ops", g.ID())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserGroupRepository_UpdateAndDelete(t *testing.T) {
	repo := NewUserGroupRepository(setupTestDB(t), nopLogger())
	ctx := context.Background()
	g := createGroup(t, repo, "ops", true, 0)

	d := g.Details()
	d.DisplayName = "Operations"
	d.IsActive = false
	require.NoError(t, g.Update(d))
	require.NoError(t, repo.Update(ctx, g))

	got, err := repo.GetByID(ctx, g.ID())
	require.NoError(t, err)
	assert.Equal(t, "Operations", got.DisplayName())
	assert.False(t, got.IsActive())

	require.NoError(t, repo.Delete(ctx, g.ID()))
	err = repo.Delete(ctx, g.ID())
	assert.True(t, errors.IsNotFoundError(err))
}

func TestUserGroupRepository_List(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserGroupRepository(gdb, nopLogger())
	ctx := context.Background()

	createGroup(t, repo, "zeta", true, 2)
	createGroup(t, repo, "alpha", true, 1)
	createGroup(t, repo, "beta", false, 1)
	legacy := uint(5)
	lg, err := usergroup.NewUserGroup(usergroup.Details{Name: "legacy-admins", DisplayName: "Old admins", IsActive: true, LegacyGroupID: &legacy})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, lg))

	groups, total, err := repo.List(ctx, usergroup.ListFilter{PageFilter: query.PageFilter{Page: 1, PageSize: 15}})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name()
	}
	assert.Equal(t, []string{"legacy-admins", "alpha", "beta", "zeta"}, names, "sort_order then id")

	groups, total, err = repo.List(ctx, usergroup.ListFilter{Status: usergroup.StatusInactive})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "beta", groups[0].Name())

	_, total, err = repo.List(ctx, usergroup.ListFilter{Legacy: usergroup.LegacyYes})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = repo.List(ctx, usergroup.ListFilter{Legacy: usergroup.LegacyNo, Status: usergroup.StatusActive})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	groups, total, err = repo.List(ctx, usergroup.ListFilter{Search: "old"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "legacy-admins", groups[0].Name())

	groups, total, err = repo.List(ctx, usergroup.ListFilter{PageFilter: query.PageFilter{Page: 2, PageSize: 3}})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, groups, 1)
	assert.Equal(t, "zeta", groups[0].Name())
}

func TestUserGroupRepository_SearchActive(t *testing.T) {
	repo := NewUserGroupRepository(setupTestDB(t), nopLogger())
	createGroup(t, repo, "support-eu", true, 0)
	createGroup(t, repo, "support-us", false, 0)
	createGroup(t, repo, "billing", true, 0)

	groups, err := repo.SearchActive(context.Background(), "support", 20)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "support-eu", groups[0].Name())
}

func TestUserGroupRepository_CreateInactive(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserGroupRepository(gdb, nopLogger())
	members := NewMembershipRepository(gdb, nopLogger())
	users := NewUserRepository(gdb, nopLogger())
	ctx := context.Background()

	g := createGroup(t, repo, "frozen", false, 0)

	got, err := repo.GetByID(ctx, g.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsActive())

	groups, total, err := repo.List(ctx, usergroup.ListFilter{Status: usergroup.StatusInactive})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "frozen", groups[0].Name())

	u := createUser(t, users, "a@example.com")
	m, err := usergroup.NewMembership(u.ID(), g.ID(), false, nil, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, members.Upsert(ctx, m))

	ids, err := members.ActiveGroupIDsForUser(ctx, u.ID(), time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, ids, "inactive group confers nothing")
}

func TestUserGroupRepository_ListTiesBreakByID(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewUserGroupRepository(gdb, nopLogger())

	createGroup(t, repo, "mike", true, 1)
	createGroup(t, repo, "bravo", true, 1)

	groups, _, err := repo.List(context.Background(), usergroup.ListFilter{PageFilter: query.PageFilter{Page: 1, PageSize: 15}})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "mike", groups[0].Name())
	assert.Equal(t, "bravo", groups[1].Name())
}
