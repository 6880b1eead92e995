package usergroup

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/warden/internal/shared/errors"
)

func validDetails() Details {
	return Details{
		Name:        "support.tier-1",
		DisplayName: "Support Tier 1",
		Description: "First line support",
		IsActive:    true,
		SortOrder:   3,
		Metadata:    map[string]any{"color": "blue"},
	}
}

func TestNewUserGroup(t *testing.T) {
	g, err := NewUserGroup(validDetails())
	require.NoError(t, err)

	assert.Equal(t, "support.tier-1", g.Name())
	assert.True(t, g.IsActive())
	assert.False(t, g.IsLegacy())
	assert.Equal(t, "blue", g.Metadata()["color"])
	assert.Zero(t, g.ID())

	require.NoError(t, g.SetID(5))
	assert.Equal(t, "group:5", g.Subject().String())
	assert.Error(t, g.SetID(6))
}

func TestNewUserGroup_Validation(t *testing.T) {
	legacyZero := uint(0)

	tests := []struct {
		name      string
		mutate    func(d *Details)
		wantField string
	}{
		{"empty name", func(d *Details) { d.Name = " " }, "name"},
		{"uppercase name", func(d *Details) { d.Name = "Support" }, "name"},
		{"leading dash", func(d *Details) { d.Name = "-ops" }, "name"},
		{"name too long", func(d *Details) { d.Name = strings.Repeat("a", 101) }, "name"},
		{"missing display name", func(d *Details) { d.DisplayName = "" }, "display_name"},
		{"display name too long", func(d *Details) { d.DisplayName = strings.Repeat("x", 151) }, "display_name"},
		{"description too long", func(d *Details) { d.Description = strings.Repeat("x", 1001) }, "description"},
		{"negative sort order", func(d *Details) { d.SortOrder = -1 }, "sort_order"},
		{"zero legacy id", func(d *Details) { d.LegacyGroupID = &legacyZero }, "legacy_group_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)

			_, err := NewUserGroup(d)
			require.Error(t, err)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Contains(t, appErr.Fields, tt.wantField)
		})
	}
}

func TestUserGroup_Update(t *testing.T) {
	g, err := NewUserGroup(validDetails())
	require.NoError(t, err)

	legacy := uint(44)
	d := g.Details()
	d.DisplayName = "Support (EU)"
	d.IsActive = false
	d.LegacyGroupID = &legacy
	require.NoError(t, g.Update(d))

	assert.Equal(t, "Support (EU)", g.DisplayName())
	assert.False(t, g.IsActive())
	assert.True(t, g.IsLegacy())

	d.Name = "BAD NAME"
	assert.Error(t, g.Update(d))
	assert.Equal(t, "support.tier-1", g.Name(), "failed update leaves group unchanged")
}

func TestUserGroup_MetadataIsCopied(t *testing.T) {
	g, err := NewUserGroup(validDetails())
	require.NoError(t, err)

	m := g.Metadata()
	m["color"] = "red"
	assert.Equal(t, "blue", g.Metadata()["color"])
}

func TestNewMembership(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	yesterday := now.AddDate(0, 0, -1)
	_, err := NewMembership(1, 2, false, &yesterday, now)
	require.Error(t, err)
	assert.Contains(t, errors.GetAppError(err).Fields, "expires_at")

	laterToday := now.Add(3 * time.Hour)
	_, err = NewMembership(1, 2, false, &laterToday, now)
	assert.Error(t, err, "expiry must be on a later calendar day")

	nextWeek := now.AddDate(0, 0, 7)
	m, err := NewMembership(1, 2, true, &nextWeek, now)
	require.NoError(t, err)
	assert.True(t, m.IsPrimary())
	assert.True(t, m.IsEffective(now))
	assert.False(t, m.IsEffective(nextWeek))

	m, err = NewMembership(1, 2, false, nil, now)
	require.NoError(t, err)
	assert.True(t, m.IsEffective(now.AddDate(10, 0, 0)))

	_, err = NewMembership(0, 2, false, nil, now)
	assert.Error(t, err)
}
