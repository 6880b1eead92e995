package usecases

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/user"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/utils"
)

type AssignUsersUseCase struct {
	repo     usergroup.Repository
	members  usergroup.MembershipRepository
	users    user.Repository
	txMgr    TransactionRunner
	recorder ActivityRecorder
	logger   logger.Interface
}

func NewAssignUsersUseCase(
	repo usergroup.Repository,
	members usergroup.MembershipRepository,
	users user.Repository,
	txMgr TransactionRunner,
	recorder ActivityRecorder,
	logger logger.Interface,
) *AssignUsersUseCase {
	return &AssignUsersUseCase{
		repo:     repo,
		members:  members,
		users:    users,
		txMgr:    txMgr,
		recorder: recorder,
		logger:   logger,
	}
}

// Form lists the group together with users who are not yet members.
func (uc *AssignUsersUseCase) Form(ctx context.Context, groupID uint) (*dto.AssignUsersFormResponse, error) {
	group, err := loadGroup(ctx, uc.repo, groupID, uc.logger)
	if err != nil {
		return nil, err
	}

	candidates, err := uc.users.ListNotInGroup(ctx, groupID, constants.AssignCandidateLimit)
	if err != nil {
		uc.logger.Errorw("failed to list assignable users", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to list assignable users: %w", err)
	}

	resp := &dto.AssignUsersFormResponse{
		Group:      toGroupResponse(group),
		Candidates: make([]dto.CandidateUserResponse, 0, len(candidates)),
	}
	for _, u := range candidates {
		resp.Candidates = append(resp.Candidates, dto.CandidateUserResponse{
			ID:    u.ID(),
			Name:  u.Name(),
			Email: u.Email().String(),
		})
	}
	return resp, nil
}

// Execute assigns every listed user or none. Existing memberships are
// refreshed in place; a primary assignment clears the users' other primary
// flags.
func (uc *AssignUsersUseCase) Execute(ctx context.Context, actor *authorization.Principal, groupID uint, req dto.AssignUsersRequest) (*dto.AssignUsersResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		t, err := biztime.ParseDateOrTime(*req.ExpiresAt)
		if err != nil {
			return nil, errors.NewFieldError("expires_at", "expires_at is not a valid date")
		}
		expiresAt = &t
	}

	group, err := loadGroup(ctx, uc.repo, groupID, uc.logger)
	if err != nil {
		return nil, err
	}

	userIDs := dedupe(req.UserIDs)
	if err := uc.checkUsersExist(ctx, req.UserIDs, userIDs); err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	memberships := make([]*usergroup.Membership, 0, len(userIDs))
	for _, uid := range userIDs {
		m, err := usergroup.NewMembership(uid, group.ID(), req.IsPrimaryGroup, expiresAt, now)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if req.IsPrimaryGroup {
			if err := uc.members.ClearPrimaryForUsers(txCtx, userIDs, group.ID()); err != nil {
				return fmt.Errorf("failed to clear primary groups: %w", err)
			}
		}
		for _, m := range memberships {
			if err := uc.members.Upsert(txCtx, m); err != nil {
				return fmt.Errorf("failed to assign user %d: %w", m.UserID(), err)
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to assign users to group", "group_id", groupID, "error", err)
		return nil, err
	}

	props := map[string]any{
		"user_ids":         userIDs,
		"is_primary_group": req.IsPrimaryGroup,
	}
	if expiresAt != nil {
		props["expires_at"] = biztime.FormatDate(*expiresAt)
	}
	uc.recorder.Record(actor, activity.ActionGroupUsersAssigned, activity.SubjectUserGroup, group.ID(), props)

	uc.logger.Infow("users assigned to group", "group_id", group.ID(), "count", len(userIDs), "primary", req.IsPrimaryGroup)

	return &dto.AssignUsersResponse{
		GroupID:  group.ID(),
		UserIDs:  userIDs,
		Assigned: len(userIDs),
	}, nil
}

// checkUsersExist reports every unknown id by its position in the request.
func (uc *AssignUsersUseCase) checkUsersExist(ctx context.Context, requested, unique []uint) error {
	existing, err := uc.users.ExistingIDs(ctx, unique)
	if err != nil {
		uc.logger.Errorw("failed to look up users", "error", err)
		return fmt.Errorf("failed to look up users: %w", err)
	}
	if len(existing) == len(unique) {
		return nil
	}

	fields := map[string]string{}
	for i, id := range requested {
		if !slices.Contains(existing, id) {
			key := fmt.Sprintf("user_ids.%d", i)
			fields[key] = fmt.Sprintf("The selected %s is invalid.", key)
		}
	}
	return errors.NewFieldValidationError(fields)
}

func dedupe(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
