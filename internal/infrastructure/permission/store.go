package permission

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/infrastructure/persistence/models"
	"github.com/orris-inc/warden/internal/shared/db"
	"github.com/orris-inc/warden/internal/shared/logger"
)

const policyType = "p"

var _ permission.Store = (*PolicyStore)(nil)

// PolicyStore reads and writes disposition rows in casbin_rule directly so
// changes commit with the surrounding transaction.
type PolicyStore struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPolicyStore(db *gorm.DB, logger logger.Interface) *PolicyStore {
	return &PolicyStore{db: db, logger: logger}
}

func (s *PolicyStore) Dispositions(ctx context.Context, subject permission.Subject) (map[permission.Capability]permission.Disposition, error) {
	var rows []models.CasbinRuleModel
	if err := db.GetTxFromContext(ctx, s.db).
		Where("ptype = ? AND v0 = ?", policyType, subject.String()).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load dispositions: %w", err)
	}

	out := make(map[permission.Capability]permission.Disposition, len(rows))
	for _, row := range rows {
		c, ok := permission.Lookup(row.V1)
		if !ok {
			s.logger.Warnw("ignoring policy for unregistered capability", "subject", subject, "capability", row.V1)
			continue
		}
		d, err := permission.ParseDisposition(row.V2)
		if err != nil {
			s.logger.Warnw("ignoring policy with bad effect", "subject", subject, "capability", row.V1, "effect", row.V2)
			continue
		}
		// deny wins over a stray duplicate allow
		if out[c] != permission.Deny {
			out[c] = d
		}
	}
	return out, nil
}

func (s *PolicyStore) Apply(ctx context.Context, subject permission.Subject, changes map[permission.Capability]permission.Action) error {
	tx := db.GetTxFromContext(ctx, s.db)

	for c, action := range changes {
		if err := tx.Where("ptype = ? AND v0 = ? AND v1 = ?", policyType, subject.String(), c.String()).
			Delete(&models.CasbinRuleModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear disposition %q: %w", c, err)
		}

		d := action.Disposition()
		if d == permission.Absent {
			continue
		}
		if err := tx.Create(&models.CasbinRuleModel{
			Ptype: policyType,
			V0:    subject.String(),
			V1:    c.String(),
			V2:    string(d),
		}).Error; err != nil {
			return fmt.Errorf("failed to write disposition %q: %w", c, err)
		}
	}

	s.logger.Infow("dispositions applied", "subject", subject, "changes", len(changes))
	return nil
}

func (s *PolicyStore) SyncGrants(ctx context.Context, subject permission.Subject, grants []permission.Capability) error {
	tx := db.GetTxFromContext(ctx, s.db)

	if err := tx.Where("ptype = ? AND v0 = ? AND v2 = ?", policyType, subject.String(), string(permission.Allow)).
		Delete(&models.CasbinRuleModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear grants: %w", err)
	}
	if len(grants) == 0 {
		return nil
	}

	names := make([]string, len(grants))
	rows := make([]models.CasbinRuleModel, 0, len(grants))
	seen := make(map[permission.Capability]struct{}, len(grants))
	for i, c := range grants {
		names[i] = c.String()
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		rows = append(rows, models.CasbinRuleModel{
			Ptype: policyType,
			V0:    subject.String(),
			V1:    c.String(),
			V2:    string(permission.Allow),
		})
	}

	if err := tx.Where("ptype = ? AND v0 = ? AND v1 IN ?", policyType, subject.String(), names).
		Delete(&models.CasbinRuleModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear superseded denies: %w", err)
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to write grants: %w", err)
	}

	s.logger.Infow("grants synced", "subject", subject, "count", len(rows))
	return nil
}

func (s *PolicyStore) DeleteSubject(ctx context.Context, subject permission.Subject) error {
	if err := db.GetTxFromContext(ctx, s.db).
		Where("ptype = ? AND v0 = ?", policyType, subject.String()).
		Delete(&models.CasbinRuleModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete policies of %s: %w", subject, err)
	}
	return nil
}
