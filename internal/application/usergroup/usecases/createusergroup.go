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

const msgNameTaken = "The name has already been taken."

type CreateUserGroupUseCase struct {
	repo     usergroup.Repository
	store    permission.Store
	policy   PolicyReloader
	txMgr    TransactionRunner
	markdown markdown.Service
	recorder ActivityRecorder
	logger   logger.Interface
}

func NewCreateUserGroupUseCase(
	repo usergroup.Repository,
	store permission.Store,
	policy PolicyReloader,
	txMgr TransactionRunner,
	md markdown.Service,
	recorder ActivityRecorder,
	logger logger.Interface,
) *CreateUserGroupUseCase {
	return &CreateUserGroupUseCase{
		repo:     repo,
		store:    store,
		policy:   policy,
		txMgr:    txMgr,
		markdown: md,
		recorder: recorder,
		logger:   logger,
	}
}

// Execute creates the group and grants its permissions atomically.
func (uc *CreateUserGroupUseCase) Execute(ctx context.Context, actor *authorization.Principal, req dto.CreateUserGroupRequest) (*dto.UserGroupResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	metadata, err := decodeMetadata(req.Metadata)
	if err != nil {
		return nil, err
	}
	caps, err := resolveCapabilities(req.Permissions)
	if err != nil {
		return nil, err
	}

	group, err := usergroup.NewUserGroup(usergroup.Details{
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		Description:   uc.markdown.PlainText(req.Description),
		IsActive:      isActive(req.IsActive, true),
		SortOrder:     req.SortOrder,
		LegacyGroupID: req.LegacyGroupID,
		Metadata:      metadata,
	})
	if err != nil {
		return nil, err
	}

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		exists, err := uc.repo.ExistsByName(txCtx, group.Name(), 0)
		if err != nil {
			return fmt.Errorf("failed to check group name: %w", err)
		}
		if exists {
			return errors.NewFieldError("name", msgNameTaken)
		}

		if err := uc.repo.Create(txCtx, group); err != nil {
			return err
		}

		if len(caps) > 0 {
			if err := uc.store.SyncGrants(txCtx, group.Subject(), caps); err != nil {
				return fmt.Errorf("failed to grant permissions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to create user group", "name", req.Name, "error", err)
		}
		return nil, err
	}

	if len(caps) > 0 {
		reloadPolicy(uc.policy, uc.logger)
	}

	uc.recorder.Record(actor, activity.ActionGroupCreated, activity.SubjectUserGroup, group.ID(), map[string]any{
		"name":        group.Name(),
		"permissions": req.Permissions,
	})

	uc.logger.Infow("user group created", "id", group.ID(), "name", group.Name(), "permissions", len(caps))

	resp := toGroupResponse(group)
	return &resp, nil
}
