package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/logger"
)

func strPtr(s string) *string { return &s }

func TestAssignUsers_RefreshesAndClearsPrimary(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	defer biztime.SetClock(func() time.Time { return now })()

	g := testGroup(t, 2, "ops")
	var cleared []uint
	var clearedExcept uint
	var upserted []*usergroup.Membership
	members := &mockMembershipRepository{
		ClearPrimaryForUsersFunc: func(_ context.Context, ids []uint, except uint) error {
			cleared, clearedExcept = ids, except
			return nil
		},
		UpsertFunc: func(_ context.Context, m *usergroup.Membership) error {
			upserted = append(upserted, m)
			return nil
		},
	}
	recorder := &mockRecorder{}
	uc := NewAssignUsersUseCase(groupRepoWith(g), members, &mockUserRepository{}, &passthroughTx{}, recorder, logger.NewNopLogger())

	resp, err := uc.Execute(context.Background(), testActor, 2, dto.AssignUsersRequest{
		UserIDs:        []uint{5, 6, 5},
		IsPrimaryGroup: true,
		ExpiresAt:      strPtr("2026-06-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, []uint{5, 6}, resp.UserIDs)
	assert.Equal(t, 2, resp.Assigned)
	assert.Equal(t, []uint{5, 6}, cleared)
	assert.Equal(t, uint(2), clearedExcept)
	require.Len(t, upserted, 2)
	for _, m := range upserted {
		assert.True(t, m.IsPrimary())
		require.NotNil(t, m.ExpiresAt())
		assert.Equal(t, "2026-06-01", biztime.FormatDate(*m.ExpiresAt()))
	}
	require.Len(t, recorder.entries, 1)
	assert.Equal(t, activity.ActionGroupUsersAssigned, recorder.entries[0].action)
	assert.Equal(t, "2026-06-01", recorder.entries[0].properties["expires_at"])
}

func TestAssignUsers_NonPrimaryLeavesOtherGroups(t *testing.T) {
	g := testGroup(t, 2, "ops")
	members := &mockMembershipRepository{
		ClearPrimaryForUsersFunc: func(context.Context, []uint, uint) error {
			t.Fatal("primary flags must not be cleared")
			return nil
		},
	}
	uc := NewAssignUsersUseCase(groupRepoWith(g), members, &mockUserRepository{}, &passthroughTx{}, &mockRecorder{}, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), testActor, 2, dto.AssignUsersRequest{UserIDs: []uint{5}})
	require.NoError(t, err)
}

func TestAssignUsers_EmptyExpiryIsPermanent(t *testing.T) {
	g := testGroup(t, 2, "ops")
	var upserted []*usergroup.Membership
	members := &mockMembershipRepository{
		UpsertFunc: func(_ context.Context, m *usergroup.Membership) error {
			upserted = append(upserted, m)
			return nil
		},
	}
	uc := NewAssignUsersUseCase(groupRepoWith(g), members, &mockUserRepository{}, &passthroughTx{}, &mockRecorder{}, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), testActor, 2, dto.AssignUsersRequest{
		UserIDs:   []uint{5},
		ExpiresAt: strPtr(""),
	})
	require.NoError(t, err)
	require.Len(t, upserted, 1)
	assert.Nil(t, upserted[0].ExpiresAt())
}

func TestAssignUsers_RejectsWholeBatch(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	defer biztime.SetClock(func() time.Time { return now })()

	tests := []struct {
		name   string
		req    dto.AssignUsersRequest
		fields []string
	}{
		{"unknown user", dto.AssignUsersRequest{UserIDs: []uint{5, 99, 6}}, []string{"user_ids.1"}},
		{"empty list", dto.AssignUsersRequest{UserIDs: []uint{}}, []string{"user_ids"}},
		{"zero id", dto.AssignUsersRequest{UserIDs: []uint{0}}, []string{"user_ids.0"}},
		{"expiry yesterday", dto.AssignUsersRequest{UserIDs: []uint{5}, ExpiresAt: strPtr("2026-04-30")}, []string{"expires_at"}},
		{"expiry today", dto.AssignUsersRequest{UserIDs: []uint{5}, ExpiresAt: strPtr("2026-05-01")}, []string{"expires_at"}},
		{"expiry garbage", dto.AssignUsersRequest{UserIDs: []uint{5}, ExpiresAt: strPtr("soon")}, []string{"expires_at"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := &mockMembershipRepository{
				UpsertFunc: func(context.Context, *usergroup.Membership) error {
					t.Fatal("no membership may be written")
					return nil
				},
			}
			users := &mockUserRepository{
				ExistingIDsFunc: func(_ context.Context, ids []uint) ([]uint, error) {
					out := []uint{}
					for _, id := range ids {
						if id != 99 {
							out = append(out, id)
						}
					}
					return out, nil
				},
			}
			recorder := &mockRecorder{}
			uc := NewAssignUsersUseCase(groupRepoWith(testGroup(t, 2, "ops")), members, users, &passthroughTx{}, recorder, logger.NewNopLogger())

			_, err := uc.Execute(context.Background(), testActor, 2, tt.req)
			fields := fieldsOf(t, err)
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
			assert.Empty(t, recorder.entries)
		})
	}
}

func TestAssignUsers_FormListsCandidates(t *testing.T) {
	var limit int
	users := &mockUserRepository{
		ListNotInGroupFunc: func(_ context.Context, groupID uint, l int) ([]*user.User, error) {
			limit = l
			return []*user.User{testUser(t, 8, "new@example.com")}, nil
		},
	}
	uc := NewAssignUsersUseCase(groupRepoWith(testGroup(t, 2, "ops")), &mockMembershipRepository{}, users, &passthroughTx{}, &mockRecorder{}, logger.NewNopLogger())

	form, err := uc.Form(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "ops", form.Group.Name)
	require.Len(t, form.Candidates, 1)
	assert.Equal(t, "new@example.com", form.Candidates[0].Email)
	assert.Equal(t, constants.AssignCandidateLimit, limit)
}

func TestRemoveUser(t *testing.T) {
	g := testGroup(t, 2, "ops")

	t.Run("removes membership", func(t *testing.T) {
		members := &mockMembershipRepository{
			DeleteFunc: func(context.Context, uint, uint) (bool, error) { return true, nil },
		}
		recorder := &mockRecorder{}
		uc := NewRemoveUserUseCase(groupRepoWith(g), members, recorder, logger.NewNopLogger())

		removed, err := uc.Execute(context.Background(), testActor, 2, 5)
		require.NoError(t, err)
		assert.True(t, removed)
		require.Len(t, recorder.entries, 1)
		assert.Equal(t, uint(5), recorder.entries[0].properties["user_id"])
	})

	t.Run("non-member is a no-op", func(t *testing.T) {
		recorder := &mockRecorder{}
		uc := NewRemoveUserUseCase(groupRepoWith(g), &mockMembershipRepository{}, recorder, logger.NewNopLogger())

		removed, err := uc.Execute(context.Background(), testActor, 2, 5)
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Empty(t, recorder.entries)
	})
}
