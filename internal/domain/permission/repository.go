package permission

import "context"

// Store persists dispositions. Writes join the transaction carried by ctx;
// the enforcer only observes them after Reload.
type Store interface {
	// Dispositions returns every non-absent disposition held by subject.
	Dispositions(ctx context.Context, subject Subject) (map[Capability]Disposition, error)
	// Apply sets each capability to the disposition its action leaves behind.
	Apply(ctx context.Context, subject Subject, changes map[Capability]Action) error
	// SyncGrants makes grants the exact allow set of subject. A deny on a
	// capability in grants is replaced; other denies are kept.
	SyncGrants(ctx context.Context, subject Subject, grants []Capability) error
	// DeleteSubject drops every policy row of subject.
	DeleteSubject(ctx context.Context, subject Subject) error
}

// Enforcer answers capability checks from the loaded policy set.
type Enforcer interface {
	// Allowed is true when some subject is allowed and none is denied.
	Allowed(subjects []Subject, capability Capability) (bool, error)
	Reload() error
}

// CatalogRepository keeps the permissions table in step with the registry.
type CatalogRepository interface {
	Sync(ctx context.Context, capabilities []Capability) (added int, err error)
	ListNames(ctx context.Context) ([]string, error)
}

type RoleRepository interface {
	Upsert(ctx context.Context, role *Role) error
	GetBySlug(ctx context.Context, slug string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
}
