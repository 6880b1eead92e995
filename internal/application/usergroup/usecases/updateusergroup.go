package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/services/markdown"
	"github.com/orris-inc/warden/internal/shared/utils"
)

type UpdateUserGroupUseCase struct {
	repo     usergroup.Repository
	store    permission.Store
	policy   PolicyReloader
	txMgr    TransactionRunner
	markdown markdown.Service
	recorder ActivityRecorder
	logger   logger.Interface
}

func NewUpdateUserGroupUseCase(
	repo usergroup.Repository,
	store permission.Store,
	policy PolicyReloader,
	txMgr TransactionRunner,
	md markdown.Service,
	recorder ActivityRecorder,
	logger logger.Interface,
) *UpdateUserGroupUseCase {
	return &UpdateUserGroupUseCase{
		repo:     repo,
		store:    store,
		policy:   policy,
		txMgr:    txMgr,
		markdown: md,
		recorder: recorder,
		logger:   logger,
	}
}

// Execute overwrites the group. Concurrent edits are last-writer-wins.
func (uc *UpdateUserGroupUseCase) Execute(ctx context.Context, actor *authorization.Principal, id uint, req dto.UpdateUserGroupRequest) (*dto.UserGroupResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	metadata, err := decodeMetadata(req.Metadata)
	if err != nil {
		return nil, err
	}

	var caps []permission.Capability
	syncPermissions := req.Permissions != nil
	if syncPermissions {
		if caps, err = resolveCapabilities(*req.Permissions); err != nil {
			return nil, err
		}
	}

	group, err := loadGroup(ctx, uc.repo, id, uc.logger)
	if err != nil {
		return nil, err
	}
	previousName := group.Name()

	if err := group.Update(usergroup.Details{
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		Description:   uc.markdown.PlainText(req.Description),
		IsActive:      isActive(req.IsActive, group.IsActive()),
		SortOrder:     req.SortOrder,
		LegacyGroupID: req.LegacyGroupID,
		Metadata:      metadata,
	}); err != nil {
		return nil, err
	}

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		exists, err := uc.repo.ExistsByName(txCtx, group.Name(), group.ID())
		if err != nil {
			return fmt.Errorf("failed to check group name: %w", err)
		}
		if exists {
			return errors.NewFieldError("name", msgNameTaken)
		}

		if err := uc.repo.Update(txCtx, group); err != nil {
			return err
		}

		if syncPermissions {
			if err := uc.store.SyncGrants(txCtx, group.Subject(), caps); err != nil {
				return fmt.Errorf("failed to sync permissions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to update user group", "id", id, "error", err)
		}
		return nil, err
	}

	if syncPermissions {
		reloadPolicy(uc.policy, uc.logger)
	}

	props := map[string]any{"name": group.Name()}
	if previousName != group.Name() {
		props["previous_name"] = previousName
	}
	if syncPermissions {
		props["permissions"] = *req.Permissions
	}
	uc.recorder.Record(actor, activity.ActionGroupUpdated, activity.SubjectUserGroup, group.ID(), props)

	uc.logger.Infow("user group updated", "id", group.ID(), "name", group.Name(), "permissions_synced", syncPermissions)

	resp := toGroupResponse(group)
	return &resp, nil
}
