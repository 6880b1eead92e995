package usecases

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/domain/activity"
	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/utils"
)

const (
	dispositionGranted = "granted"
	dispositionDenied  = "denied"
)

type GroupPermissionsUseCase struct {
	repo     usergroup.Repository
	store    permission.Store
	policy   PolicyReloader
	txMgr    TransactionRunner
	recorder ActivityRecorder
	logger   logger.Interface
}

func NewGroupPermissionsUseCase(
	repo usergroup.Repository,
	store permission.Store,
	policy PolicyReloader,
	txMgr TransactionRunner,
	recorder ActivityRecorder,
	logger logger.Interface,
) *GroupPermissionsUseCase {
	return &GroupPermissionsUseCase{
		repo:     repo,
		store:    store,
		policy:   policy,
		txMgr:    txMgr,
		recorder: recorder,
		logger:   logger,
	}
}

// Form lists every registered capability, sectioned by its first word, with
// the group's current disposition.
func (uc *GroupPermissionsUseCase) Form(ctx context.Context, groupID uint) (*dto.PermissionFormResponse, error) {
	group, err := loadGroup(ctx, uc.repo, groupID, uc.logger)
	if err != nil {
		return nil, err
	}

	current, err := uc.store.Dispositions(ctx, group.Subject())
	if err != nil {
		uc.logger.Errorw("failed to load group permissions", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to load group permissions: %w", err)
	}

	title := cases.Title(language.English)
	var sections []dto.PermissionSection
	index := map[string]int{}

	for _, c := range permission.All() {
		key := c.Group()
		i, ok := index[key]
		if !ok {
			i = len(sections)
			index[key] = i
			sections = append(sections, dto.PermissionSection{Key: key, Title: title.String(key)})
		}
		sections[i].Permissions = append(sections[i].Permissions, dto.PermissionState{
			Name:        c.String(),
			Description: c.Description(),
			Disposition: dispositionLabel(current[c]),
		})
	}

	return &dto.PermissionFormResponse{
		Group:    toGroupResponse(group),
		Sections: sections,
	}, nil
}

// Update applies every grant, deny and remove in one transaction. Any
// unknown capability or action rejects the whole request untouched.
func (uc *GroupPermissionsUseCase) Update(ctx context.Context, actor *authorization.Principal, groupID uint, req dto.UpdatePermissionsRequest) (*dto.UpdatePermissionsResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	changes, err := parseChanges(req.Permissions)
	if err != nil {
		return nil, err
	}

	group, err := loadGroup(ctx, uc.repo, groupID, uc.logger)
	if err != nil {
		return nil, err
	}

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		return uc.store.Apply(txCtx, group.Subject(), changes)
	})
	if err != nil {
		uc.logger.Errorw("failed to update group permissions", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to update group permissions: %w", err)
	}

	reloadPolicy(uc.policy, uc.logger)

	uc.recorder.Record(actor, activity.ActionGroupPermsUpdated, activity.SubjectUserGroup, group.ID(), map[string]any{
		"permissions": req.Permissions,
	})

	current, err := uc.store.Dispositions(ctx, group.Subject())
	if err != nil {
		uc.logger.Errorw("failed to reload group permissions", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to load group permissions: %w", err)
	}
	granted, denied := splitDispositions(current)

	uc.logger.Infow("group permissions updated", "group_id", groupID, "changes", len(changes))
	return &dto.UpdatePermissionsResponse{Granted: granted, Denied: denied}, nil
}

func parseChanges(in map[string]string) (map[permission.Capability]permission.Action, error) {
	changes := make(map[permission.Capability]permission.Action, len(in))
	fields := map[string]string{}

	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := "permissions." + name
		c, ok := permission.Lookup(name)
		if !ok {
			fields[key] = fmt.Sprintf("The selected permission %q is invalid.", name)
			continue
		}
		action, err := permission.ParseAction(in[name])
		if err != nil {
			fields[key] = fmt.Sprintf("The action for %q must be one of grant, deny, remove.", name)
			continue
		}
		changes[c] = action
	}

	if len(fields) > 0 {
		return nil, errors.NewFieldValidationError(fields)
	}
	return changes, nil
}

func dispositionLabel(d permission.Disposition) string {
	switch d {
	case permission.Allow:
		return dispositionGranted
	case permission.Deny:
		return dispositionDenied
	default:
		return ""
	}
}
