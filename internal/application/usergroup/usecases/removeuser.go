package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/logger"
)

type RemoveUserUseCase struct {
	repo     usergroup.Repository
	members  usergroup.MembershipRepository
	recorder ActivityRecorder
	logger   logger.Interface
}

func NewRemoveUserUseCase(
	repo usergroup.Repository,
	members usergroup.MembershipRepository,
	recorder ActivityRecorder,
	logger logger.Interface,
) *RemoveUserUseCase {
	return &RemoveUserUseCase{
		repo:     repo,
		members:  members,
		recorder: recorder,
		logger:   logger,
	}
}

// Execute removes the membership. Removing a user who is not a member
// succeeds and reports false.
func (uc *RemoveUserUseCase) Execute(ctx context.Context, actor *authorization.Principal, groupID, userID uint) (bool, error) {
	group, err := loadGroup(ctx, uc.repo, groupID, uc.logger)
	if err != nil {
		return false, err
	}

	removed, err := uc.members.Delete(ctx, groupID, userID)
	if err != nil {
		uc.logger.Errorw("failed to remove user from group", "group_id", groupID, "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to remove user from group: %w", err)
	}

	if removed {
		uc.recorder.Record(actor, activity.ActionGroupUserRemoved, activity.SubjectUserGroup, group.ID(), map[string]any{
			"user_id": userID,
		})
		uc.logger.Infow("user removed from group", "group_id", groupID, "user_id", userID)
	}
	return removed, nil
}
