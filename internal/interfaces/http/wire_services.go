package http

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/application/access"
	activityApp "github.com/orris-inc/warden/internal/application/activity"
	"github.com/orris-inc/warden/internal/infrastructure/auth"
	"github.com/orris-inc/warden/internal/infrastructure/config"
	"github.com/orris-inc/warden/internal/infrastructure/flash"
	"github.com/orris-inc/warden/internal/infrastructure/metrics"
	infraPermission "github.com/orris-inc/warden/internal/infrastructure/permission"
	"github.com/orris-inc/warden/internal/infrastructure/ratelimit"
	"github.com/orris-inc/warden/internal/infrastructure/scheduler"
	"github.com/orris-inc/warden/internal/shared/db"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/services/markdown"
)

const sessionPruneTimeout = 5 * time.Minute

// services holds infrastructure services shared by use cases and middleware.
type services struct {
	txMgr       *db.TransactionManager
	enforcer    *infraPermission.Enforcer
	policyStore *infraPermission.PolicyStore
	hasher      *auth.BcryptPasswordHasher
	jwtSvc      *auth.JWTService
	limiter     ratelimit.RateLimiter
	metrics     *metrics.Metrics
	recorder    *activityApp.Recorder
	flash       *flash.Store
	markdown    markdown.Service
	access      *access.Service
	scheduler   *scheduler.Manager
}

func newServices(gdb *gorm.DB, rdb *redis.Client, cfg *config.Config, repos *repositories, log logger.Interface) (*services, error) {
	m := metrics.New()

	enforcer, err := infraPermission.NewEnforcer(gdb, log.Named("casbin"))
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	enforcer.OnReload(m.PolicyReloaded)

	jwtSvc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	recorder := activityApp.NewRecorder(repos.activityRepo, m, log.Named("activity"))

	s := &services{
		txMgr:       db.NewTransactionManager(gdb),
		enforcer:    enforcer,
		policyStore: infraPermission.NewPolicyStore(gdb, log),
		hasher:      auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost),
		jwtSvc:      jwtSvc,
		limiter:     newLoginLimiter(rdb, log),
		metrics:     m,
		recorder:    recorder,
		flash:       flash.NewStore(cfg.Auth.Session.FlashSecret, cfg.Auth.Cookie),
		markdown:    markdown.NewService(),
		access: access.NewService(
			jwtSvc,
			repos.userRepo,
			repos.sessionRepo,
			repos.membershipRepo,
			enforcer,
			recorder,
			log.Named("access"),
		),
		scheduler: scheduler.NewManager(log.Named("scheduler")),
	}

	retention := time.Duration(cfg.Auth.Session.RetentionHours) * time.Hour
	if err := s.scheduler.Register("session-prune", cfg.Auth.Session.PruneSchedule, sessionPruneTimeout,
		scheduler.NewSessionPruneJob(repos.sessionRepo, retention)); err != nil {
		return nil, fmt.Errorf("failed to register session prune job: %w", err)
	}

	return s, nil
}
