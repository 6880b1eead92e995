// Package authorization carries the authenticated caller through the
// application layer.
package authorization

import (
	"context"
	"slices"
)

// Principal is the authenticated user as seen by one request. It is resolved
// once by the access middleware and passed explicitly to use cases.
type Principal struct {
	UserID             uint
	TenantID           uint
	SessionID          string
	Name               string
	Email              string
	Roles              []string
	IsActive           bool
	MustChangePassword bool
}

// HasRole reports whether the principal holds role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Roles, role)
}

// HasAnyRole reports whether the principal holds at least one of roles.
// An empty list is satisfied by anyone.
func (p *Principal) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
