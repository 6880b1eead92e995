package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/mapper"
	"github.com/orris-inc/warden/internal/shared/query"
	"github.com/orris-inc/warden/internal/shared/utils"
)

type ListUserGroupsUseCase struct {
	repo    usergroup.Repository
	members usergroup.MembershipRepository
	logger  logger.Interface
}

func NewListUserGroupsUseCase(repo usergroup.Repository, members usergroup.MembershipRepository, logger logger.Interface) *ListUserGroupsUseCase {
	return &ListUserGroupsUseCase{
		repo:    repo,
		members: members,
		logger:  logger,
	}
}

// Execute returns one fixed-size page ordered by sort order, then id.
func (uc *ListUserGroupsUseCase) Execute(ctx context.Context, req dto.ListUserGroupsRequest) (*dto.ListUserGroupsResponse, error) {
	filter := usergroup.ListFilter{
		PageFilter: query.PageFilter{Page: req.Page, PageSize: constants.GroupListPageSize},
		Search:     strings.TrimSpace(req.Search),
		Status:     usergroup.Status(req.Status),
		Legacy:     usergroup.LegacyFilter(req.Legacy),
	}

	groups, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list user groups", "error", err)
		return nil, fmt.Errorf("failed to list user groups: %w", err)
	}

	ids := mapper.MapSlice(groups, func(g *usergroup.UserGroup) uint { return g.ID() })
	counts, err := uc.members.CountByGroups(ctx, ids)
	if err != nil {
		uc.logger.Errorw("failed to count group members", "error", err)
		return nil, fmt.Errorf("failed to count group members: %w", err)
	}

	items := make([]dto.UserGroupResponse, 0, len(groups))
	for _, g := range groups {
		item := toGroupResponse(g)
		count := counts[g.ID()]
		item.MembersCount = &count
		items = append(items, item)
	}

	return &dto.ListUserGroupsResponse{
		Items:      items,
		Total:      total,
		Page:       filter.CurrentPage(),
		PageSize:   filter.Limit(),
		TotalPages: utils.TotalPages(total, filter.Limit()),
	}, nil
}
