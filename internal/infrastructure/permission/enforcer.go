package permission

import (
	"fmt"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// The request subject is the comma-joined list of every policy holder the
// principal speaks for. A capability is granted when one of them is allowed
// and none is denied.
const modelText = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj, eft

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = subjectIn(p.sub, r.sub) && r.obj == p.obj
`

var _ permission.Enforcer = (*Enforcer)(nil)

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
	onReload func()
}

func NewEnforcer(db *gorm.DB, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	enforcer.AddFunction("subjectIn", subjectIn)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

// subjectIn(policySubject, joinedRequestSubjects)
func subjectIn(args ...any) (any, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("subjectIn expects 2 arguments, got %d", len(args))
	}
	sub, _ := args[0].(string)
	list, _ := args[1].(string)
	if sub == "" || list == "" {
		return false, nil
	}
	for _, s := range strings.Split(list, ",") {
		if s == sub {
			return true, nil
		}
	}
	return false, nil
}

func (e *Enforcer) Allowed(subjects []permission.Subject, capability permission.Capability) (bool, error) {
	if len(subjects) == 0 {
		return false, nil
	}
	parts := make([]string, len(subjects))
	for i, s := range subjects {
		parts[i] = s.String()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(strings.Join(parts, ","), capability.String())
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "capability", capability)
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return allowed, nil
}

// Reload re-reads casbin_rule. Call after a committed policy change.
func (e *Enforcer) Reload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	e.logger.Debug("policy reloaded")
	if e.onReload != nil {
		e.onReload()
	}
	return nil
}

// OnReload registers fn to run after every successful reload.
func (e *Enforcer) OnReload(fn func()) {
	e.mu.Lock()
	e.onReload = fn
	e.mu.Unlock()
}
