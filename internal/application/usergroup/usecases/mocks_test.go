package usecases

import (
	"context"
	"time"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/authorization"
)

type mockGroupRepository struct {
	CreateFunc       func(ctx context.Context, g *usergroup.UserGroup) error
	UpdateFunc       func(ctx context.Context, g *usergroup.UserGroup) error
	DeleteFunc       func(ctx context.Context, id uint) error
	GetByIDFunc      func(ctx context.Context, id uint) (*usergroup.UserGroup, error)
	ExistsByNameFunc func(ctx context.Context, name string, excludeID uint) (bool, error)
	ListFunc         func(ctx context.Context, filter usergroup.ListFilter) ([]*usergroup.UserGroup, int64, error)
	SearchActiveFunc func(ctx context.Context, term string, limit int) ([]*usergroup.UserGroup, error)
}

func (m *mockGroupRepository) Create(ctx context.Context, g *usergroup.UserGroup) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, g)
	}
	return g.SetID(1)
}

func (m *mockGroupRepository) Update(ctx context.Context, g *usergroup.UserGroup) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, g)
	}
	return nil
}

func (m *mockGroupRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockGroupRepository) GetByID(ctx context.Context, id uint) (*usergroup.UserGroup, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockGroupRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	if m.ExistsByNameFunc != nil {
		return m.ExistsByNameFunc(ctx, name, excludeID)
	}
	return false, nil
}

func (m *mockGroupRepository) List(ctx context.Context, filter usergroup.ListFilter) ([]*usergroup.UserGroup, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockGroupRepository) SearchActive(ctx context.Context, term string, limit int) ([]*usergroup.UserGroup, error) {
	if m.SearchActiveFunc != nil {
		return m.SearchActiveFunc(ctx, term, limit)
	}
	return nil, nil
}

type mockMembershipRepository struct {
	UpsertFunc                func(ctx context.Context, m *usergroup.Membership) error
	DeleteFunc                func(ctx context.Context, groupID, userID uint) (bool, error)
	CountByGroupFunc          func(ctx context.Context, groupID uint) (int64, error)
	CountByGroupsFunc         func(ctx context.Context, groupIDs []uint) (map[uint]int64, error)
	ListByGroupFunc           func(ctx context.Context, groupID uint) ([]*usergroup.Membership, error)
	MemberUserIDsFunc         func(ctx context.Context, groupID uint) ([]uint, error)
	ActiveGroupIDsForUserFunc func(ctx context.Context, userID uint, now time.Time) ([]uint, error)
	ClearPrimaryForUsersFunc  func(ctx context.Context, userIDs []uint, exceptGroupID uint) error
}

func (m *mockMembershipRepository) Upsert(ctx context.Context, mem *usergroup.Membership) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, mem)
	}
	return nil
}

func (m *mockMembershipRepository) Delete(ctx context.Context, groupID, userID uint) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, groupID, userID)
	}
	return false, nil
}

func (m *mockMembershipRepository) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	if m.CountByGroupFunc != nil {
		return m.CountByGroupFunc(ctx, groupID)
	}
	return 0, nil
}

func (m *mockMembershipRepository) CountByGroups(ctx context.Context, groupIDs []uint) (map[uint]int64, error) {
	if m.CountByGroupsFunc != nil {
		return m.CountByGroupsFunc(ctx, groupIDs)
	}
	return map[uint]int64{}, nil
}

func (m *mockMembershipRepository) ListByGroup(ctx context.Context, groupID uint) ([]*usergroup.Membership, error) {
	if m.ListByGroupFunc != nil {
		return m.ListByGroupFunc(ctx, groupID)
	}
	return nil, nil
}

func (m *mockMembershipRepository) MemberUserIDs(ctx context.Context, groupID uint) ([]uint, error) {
	if m.MemberUserIDsFunc != nil {
		return m.MemberUserIDsFunc(ctx, groupID)
	}
	return nil, nil
}

func (m *mockMembershipRepository) ActiveGroupIDsForUser(ctx context.Context, userID uint, now time.Time) ([]uint, error) {
	if m.ActiveGroupIDsForUserFunc != nil {
		return m.ActiveGroupIDsForUserFunc(ctx, userID, now)
	}
	return nil, nil
}

func (m *mockMembershipRepository) ClearPrimaryForUsers(ctx context.Context, userIDs []uint, exceptGroupID uint) error {
	if m.ClearPrimaryForUsersFunc != nil {
		return m.ClearPrimaryForUsersFunc(ctx, userIDs, exceptGroupID)
	}
	return nil
}

type mockUserRepository struct {
	ExistingIDsFunc    func(ctx context.Context, ids []uint) ([]uint, error)
	ListNotInGroupFunc func(ctx context.Context, groupID uint, limit int) ([]*user.User, error)
	ListByIDsFunc      func(ctx context.Context, ids []uint) ([]*user.User, error)
}

func (m *mockUserRepository) Create(context.Context, *user.User) error { return nil }

func (m *mockUserRepository) GetByID(context.Context, uint) (*user.User, error) { return nil, nil }

func (m *mockUserRepository) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, nil
}

func (m *mockUserRepository) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if m.ExistingIDsFunc != nil {
		return m.ExistingIDsFunc(ctx, ids)
	}
	return ids, nil
}

func (m *mockUserRepository) ListNotInGroup(ctx context.Context, groupID uint, limit int) ([]*user.User, error) {
	if m.ListNotInGroupFunc != nil {
		return m.ListNotInGroupFunc(ctx, groupID, limit)
	}
	return nil, nil
}

func (m *mockUserRepository) ListByIDs(ctx context.Context, ids []uint) ([]*user.User, error) {
	if m.ListByIDsFunc != nil {
		return m.ListByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *mockUserRepository) UpdatePassword(context.Context, *user.User) error { return nil }
func (m *mockUserRepository) SetActive(context.Context, uint, bool) error { return nil }
func (m *mockUserRepository) SetRoles(context.Context, uint, []string) error { return nil }

// memoryStore is an in-memory permission.Store with the same deny/sync rules
// as the database-backed one.
type memoryStore struct {
	rows     map[permission.Subject]map[permission.Capability]permission.Disposition
	applyErr error
	syncErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[permission.Subject]map[permission.Capability]permission.Disposition{}}
}

func (s *memoryStore) subject(sub permission.Subject) map[permission.Capability]permission.Disposition {
	if s.rows[sub] == nil {
		s.rows[sub] = map[permission.Capability]permission.Disposition{}
	}
	return s.rows[sub]
}

func (s *memoryStore) Dispositions(_ context.Context, sub permission.Subject) (map[permission.Capability]permission.Disposition, error) {
	out := map[permission.Capability]permission.Disposition{}
	for c, d := range s.rows[sub] {
		out[c] = d
	}
	return out, nil
}

func (s *memoryStore) Apply(_ context.Context, sub permission.Subject, changes map[permission.Capability]permission.Action) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	rows := s.subject(sub)
	for c, a := range changes {
		if d := a.Disposition(); d == permission.Absent {
			delete(rows, c)
		} else {
			rows[c] = d
		}
	}
	return nil
}

func (s *memoryStore) SyncGrants(_ context.Context, sub permission.Subject, grants []permission.Capability) error {
	if s.syncErr != nil {
		return s.syncErr
	}
	rows := s.subject(sub)
	for c, d := range rows {
		if d == permission.Allow {
			delete(rows, c)
		}
	}
	for _, c := range grants {
		rows[c] = permission.Allow
	}
	return nil
}

func (s *memoryStore) DeleteSubject(_ context.Context, sub permission.Subject) error {
	delete(s.rows, sub)
	return nil
}

type mockReloader struct {
	calls int
	err   error
}

func (m *mockReloader) Reload() error {
	m.calls++
	return m.err
}

// passthroughTx runs fn directly. When fn fails it restores the store
// snapshot, standing in for a database rollback.
type passthroughTx struct {
	store *memoryStore
	calls int
}

func (tx *passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	var snapshot map[permission.Subject]map[permission.Capability]permission.Disposition
	if tx.store != nil {
		snapshot = map[permission.Subject]map[permission.Capability]permission.Disposition{}
		for sub, rows := range tx.store.rows {
			snapshot[sub] = map[permission.Capability]permission.Disposition{}
			for c, d := range rows {
				snapshot[sub][c] = d
			}
		}
	}
	err := fn(ctx)
	if err != nil && tx.store != nil {
		tx.store.rows = snapshot
	}
	return err
}

type recordedActivity struct {
	actor       *authorization.Principal
	action      string
	subjectType string
	subjectID   uint
	properties  map[string]any
}

type mockRecorder struct {
	entries []recordedActivity
}

func (r *mockRecorder) Record(actor *authorization.Principal, action, subjectType string, subjectID uint, properties map[string]any) {
	r.entries = append(r.entries, recordedActivity{actor, action, subjectType, subjectID, properties})
}
