package permission

import (
	"context"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// wildcard in a role file grants every registered capability.
const wildcard = "*"

// RoleFile is the on-disk shape of configs/roles.yaml.
type RoleFile struct {
	Roles []RoleSeed `yaml:"roles"`
}

type RoleSeed struct {
	Slug        string   `yaml:"slug"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Grant       []string `yaml:"grant"`
	Deny        []string `yaml:"deny"`
}

func LoadRoleFile(path string) (*RoleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read role file: %w", err)
	}
	return ParseRoleFile(data)
}

// ParseRoleFile decodes and validates a role file. Every capability name
// must be registered.
func ParseRoleFile(data []byte) (*RoleFile, error) {
	var f RoleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse role file: %w", err)
	}

	seen := map[string]bool{}
	for _, r := range f.Roles {
		if seen[r.Slug] {
			return nil, fmt.Errorf("role %q defined twice", r.Slug)
		}
		seen[r.Slug] = true

		names := slices.Concat(r.Grant, r.Deny)
		names = slices.DeleteFunc(names, func(n string) bool { return n == wildcard })
		if unknown := permission.Unknown(names); len(unknown) > 0 {
			return nil, fmt.Errorf("role %q references unknown capabilities %q", r.Slug, unknown)
		}
	}
	return &f, nil
}

func (r RoleSeed) grants() []permission.Capability {
	if slices.Contains(r.Grant, wildcard) {
		return permission.All()
	}
	out := make([]permission.Capability, 0, len(r.Grant))
	for _, n := range r.Grant {
		out = append(out, permission.MustCapability(n))
	}
	return out
}

// TxRunner runs fn in one database transaction.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Seeder writes the permission catalogue and role dispositions.
type Seeder struct {
	tx       TxRunner
	catalog  permission.CatalogRepository
	roles    permission.RoleRepository
	store    permission.Store
	enforcer permission.Enforcer
	logger   logger.Interface
}

func NewSeeder(
	tx TxRunner,
	catalog permission.CatalogRepository,
	roles permission.RoleRepository,
	store permission.Store,
	enforcer permission.Enforcer,
	logger logger.Interface,
) *Seeder {
	return &Seeder{
		tx:       tx,
		catalog:  catalog,
		roles:    roles,
		store:    store,
		enforcer: enforcer,
		logger:   logger,
	}
}

// SyncCatalog inserts registry capabilities missing from the permissions table.
func (s *Seeder) SyncCatalog(ctx context.Context) (int, error) {
	return s.catalog.Sync(ctx, permission.All())
}

// Seed syncs the catalogue, upserts each role and makes its allow and deny
// sets match the file, all in one transaction, then reloads the enforcer.
func (s *Seeder) Seed(ctx context.Context, f *RoleFile) error {
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.catalog.Sync(ctx, permission.All()); err != nil {
			return err
		}

		for _, seed := range f.Roles {
			role, err := permission.NewRole(seed.Slug, seed.Name, seed.Description)
			if err != nil {
				return err
			}
			if err := s.roles.Upsert(ctx, role); err != nil {
				return err
			}
			if err := s.seedDispositions(ctx, role.Subject(), seed); err != nil {
				return fmt.Errorf("role %q: %w", seed.Slug, err)
			}
			s.logger.Infow("role seeded", "role", seed.Slug, "grants", len(seed.Grant), "denies", len(seed.Deny))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	return s.enforcer.Reload()
}

func (s *Seeder) seedDispositions(ctx context.Context, subject permission.Subject, seed RoleSeed) error {
	current, err := s.store.Dispositions(ctx, subject)
	if err != nil {
		return err
	}

	changes := map[permission.Capability]permission.Action{}
	for c, d := range current {
		if d == permission.Deny {
			changes[c] = permission.ActionRemove
		}
	}
	for _, n := range seed.Deny {
		changes[permission.MustCapability(n)] = permission.ActionDeny
	}
	if err := s.store.Apply(ctx, subject, changes); err != nil {
		return err
	}

	grants := slices.DeleteFunc(seed.grants(), func(c permission.Capability) bool {
		return changes[c] == permission.ActionDeny
	})
	return s.store.SyncGrants(ctx, subject, grants)
}

// Drift compares the permissions table against the registry.
type Drift struct {
	Missing []string
	Orphans []string
}

func (d Drift) Clean() bool { return len(d.Missing) == 0 && len(d.Orphans) == 0 }

func (s *Seeder) Check(ctx context.Context) (Drift, error) {
	stored, err := s.catalog.ListNames(ctx)
	if err != nil {
		return Drift{}, err
	}

	var d Drift
	for _, c := range permission.All() {
		if !slices.Contains(stored, c.String()) {
			d.Missing = append(d.Missing, c.String())
		}
	}
	d.Orphans = permission.Unknown(stored)
	return d, nil
}
