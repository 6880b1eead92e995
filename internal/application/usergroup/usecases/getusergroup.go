package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/mapper"
	"github.com/orris-inc/warden/internal/shared/services/markdown"
)

type GetUserGroupUseCase struct {
	repo     usergroup.Repository
	members  usergroup.MembershipRepository
	users    user.Repository
	store    permission.Store
	markdown markdown.Service
	logger   logger.Interface
}

func NewGetUserGroupUseCase(
	repo usergroup.Repository,
	members usergroup.MembershipRepository,
	users user.Repository,
	store permission.Store,
	md markdown.Service,
	logger logger.Interface,
) *GetUserGroupUseCase {
	return &GetUserGroupUseCase{
		repo:     repo,
		members:  members,
		users:    users,
		store:    store,
		markdown: md,
		logger:   logger,
	}
}

// Execute returns the group with its dispositions and effective members.
func (uc *GetUserGroupUseCase) Execute(ctx context.Context, id uint) (*dto.UserGroupDetailResponse, error) {
	group, err := loadGroup(ctx, uc.repo, id, uc.logger)
	if err != nil {
		return nil, err
	}

	dispositions, err := uc.store.Dispositions(ctx, group.Subject())
	if err != nil {
		uc.logger.Errorw("failed to load group permissions", "id", id, "error", err)
		return nil, fmt.Errorf("failed to load group permissions: %w", err)
	}
	granted, denied := splitDispositions(dispositions)

	memberships, err := uc.members.ListByGroup(ctx, id)
	if err != nil {
		uc.logger.Errorw("failed to list group members", "id", id, "error", err)
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}

	now := biztime.NowUTC()
	effective := make([]*usergroup.Membership, 0, len(memberships))
	for _, m := range memberships {
		if m.IsEffective(now) {
			effective = append(effective, m)
		}
	}

	members, err := uc.memberResponses(ctx, effective)
	if err != nil {
		return nil, err
	}

	resp := &dto.UserGroupDetailResponse{
		UserGroupResponse:   toGroupResponse(group),
		GrantedPermissions:  granted,
		DeniedPermissions:   denied,
		Members:             members,
		ExpiredMembersCount: len(memberships) - len(effective),
	}

	count := int64(len(memberships))
	resp.MembersCount = &count

	if group.Description() != "" {
		html, err := uc.markdown.ToHTMLSanitized(group.Description())
		if err != nil {
			uc.logger.Warnw("failed to render group description", "id", id, "error", err)
		} else {
			resp.DescriptionHTML = html
		}
	}

	return resp, nil
}

func (uc *GetUserGroupUseCase) memberResponses(ctx context.Context, memberships []*usergroup.Membership) ([]dto.MemberResponse, error) {
	out := make([]dto.MemberResponse, 0, len(memberships))
	if len(memberships) == 0 {
		return out, nil
	}

	ids := mapper.MapSlice(memberships, func(m *usergroup.Membership) uint { return m.UserID() })
	users, err := uc.users.ListByIDs(ctx, ids)
	if err != nil {
		uc.logger.Errorw("failed to load member users", "error", err)
		return nil, fmt.Errorf("failed to load member users: %w", err)
	}
	byID := mapper.IndexBy(users, func(u *user.User) uint { return u.ID() })

	for _, m := range memberships {
		u, ok := byID[m.UserID()]
		if !ok {
			continue
		}
		out = append(out, dto.MemberResponse{
			UserID:         u.ID(),
			Name:           u.Name(),
			Email:          u.Email().String(),
			IsPrimaryGroup: m.IsPrimary(),
			AssignedAt:     m.AssignedAt(),
			ExpiresAt:      m.ExpiresAt(),
		})
	}
	return out, nil
}
