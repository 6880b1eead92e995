package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
)

type DeleteUserGroupUseCase struct {
	repo     usergroup.Repository
	members  usergroup.MembershipRepository
	store    permission.Store
	policy   PolicyReloader
	txMgr    TransactionRunner
	recorder ActivityRecorder
	logger   logger.Interface
}

func NewDeleteUserGroupUseCase(
	repo usergroup.Repository,
	members usergroup.MembershipRepository,
	store permission.Store,
	policy PolicyReloader,
	txMgr TransactionRunner,
	recorder ActivityRecorder,
	logger logger.Interface,
) *DeleteUserGroupUseCase {
	return &DeleteUserGroupUseCase{
		repo:     repo,
		members:  members,
		store:    store,
		policy:   policy,
		txMgr:    txMgr,
		recorder: recorder,
		logger:   logger,
	}
}

// Execute hard-deletes a group that has no memberships, expired ones
// included, together with its policy rows.
func (uc *DeleteUserGroupUseCase) Execute(ctx context.Context, actor *authorization.Principal, id uint) error {
	group, err := loadGroup(ctx, uc.repo, id, uc.logger)
	if err != nil {
		return err
	}

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		count, err := uc.members.CountByGroup(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to count group members: %w", err)
		}
		if count > 0 {
			return errors.NewBusinessRuleError(constants.ErrMsgGroupHasMembers)
		}

		if err := uc.store.DeleteSubject(txCtx, group.Subject()); err != nil {
			return fmt.Errorf("failed to delete group permissions: %w", err)
		}
		return uc.repo.Delete(txCtx, id)
	})
	if err != nil {
		if errors.IsBusinessRuleError(err) {
			uc.logger.Warnw("refused to delete user group with members", "id", id)
		} else if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to delete user group", "id", id, "error", err)
		}
		return err
	}

	reloadPolicy(uc.policy, uc.logger)

	uc.recorder.Record(actor, activity.ActionGroupDeleted, activity.SubjectUserGroup, id, map[string]any{
		"name": group.Name(),
	})
	uc.logger.Infow("user group deleted", "id", id, "name", group.Name())
	return nil
}
