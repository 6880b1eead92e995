package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// SearchUserGroupsUseCase backs the typeahead picker. Only active groups
// are offered.
type SearchUserGroupsUseCase struct {
	repo   usergroup.Repository
	logger logger.Interface
}

func NewSearchUserGroupsUseCase(repo usergroup.Repository, logger logger.Interface) *SearchUserGroupsUseCase {
	return &SearchUserGroupsUseCase{repo: repo, logger: logger}
}

func (uc *SearchUserGroupsUseCase) Execute(ctx context.Context, term string) ([]dto.SearchResultResponse, error) {
	groups, err := uc.repo.SearchActive(ctx, strings.TrimSpace(term), constants.GroupSearchLimit)
	if err != nil {
		uc.logger.Errorw("failed to search user groups", "term", term, "error", err)
		return nil, fmt.Errorf("failed to search user groups: %w", err)
	}

	out := make([]dto.SearchResultResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.SearchResultResponse{
			ID:          g.ID(),
			Name:        g.Name(),
			DisplayName: g.DisplayName(),
		})
	}
	return out, nil
}
