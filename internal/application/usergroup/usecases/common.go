package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/domain/usergroup"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// TransactionRunner runs fn in one database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ActivityRecorder interface {
	Record(actor *authorization.Principal, action, subjectType string, subjectID uint, properties map[string]any)
}

// PolicyReloader refreshes the in-memory policy after a commit.
type PolicyReloader interface {
	Reload() error
}

func loadGroup(ctx context.Context, repo usergroup.Repository, id uint, log logger.Interface) (*usergroup.UserGroup, error) {
	group, err := repo.GetByID(ctx, id)
	if err != nil {
		log.Errorw("failed to get user group", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get user group: %w", err)
	}
	if group == nil {
		return nil, errors.NewNotFoundError(constants.ErrMsgGroupNotFound)
	}
	return group, nil
}

// reloadPolicy never fails the request: the data is already committed and
// the next successful reload picks it up.
func reloadPolicy(reloader PolicyReloader, log logger.Interface) {
	if err := reloader.Reload(); err != nil {
		log.Errorw("failed to reload permission policy", "error", err)
	}
}

func toGroupResponse(g *usergroup.UserGroup) dto.UserGroupResponse {
	return dto.UserGroupResponse{
		ID:            g.ID(),
		Name:          g.Name(),
		DisplayName:   g.DisplayName(),
		Description:   g.Description(),
		IsActive:      g.IsActive(),
		SortOrder:     g.SortOrder(),
		LegacyGroupID: g.LegacyGroupID(),
		IsLegacy:      g.IsLegacy(),
		Metadata:      g.Metadata(),
		CreatedAt:     g.CreatedAt(),
		UpdatedAt:     g.UpdatedAt(),
	}
}

// decodeMetadata accepts a JSON object, or a string holding one. Empty and
// null decode to an empty object.
func decodeMetadata(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.NewFieldError("metadata", "The metadata must be a valid JSON object.")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return map[string]any{}, nil
		}
		raw = json.RawMessage(s)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil, errors.NewFieldError("metadata", "The metadata must be a valid JSON object.")
	}
	return out, nil
}

// resolveCapabilities maps names onto registered capabilities, rejecting the
// whole list when any name is unknown.
func resolveCapabilities(names []string) ([]permission.Capability, error) {
	if unknown := permission.Unknown(names); len(unknown) > 0 {
		return nil, errors.NewFieldError("permissions",
			fmt.Sprintf("The selected permissions are invalid: %s.", strings.Join(unknown, ", ")))
	}
	caps := make([]permission.Capability, 0, len(names))
	for _, n := range names {
		c, _ := permission.Lookup(n)
		if !slices.Contains(caps, c) {
			caps = append(caps, c)
		}
	}
	return caps, nil
}

func splitDispositions(d map[permission.Capability]permission.Disposition) (granted, denied []string) {
	granted, denied = []string{}, []string{}
	for c, disp := range d {
		switch disp {
		case permission.Allow:
			granted = append(granted, c.String())
		case permission.Deny:
			denied = append(denied, c.String())
		}
	}
	slices.Sort(granted)
	slices.Sort(denied)
	return granted, denied
}

// isActive resolves an optional is_active flag. Omitted keeps current.
func isActive(flag *bool, current bool) bool {
	if flag == nil {
		return current
	}
	return *flag
}
