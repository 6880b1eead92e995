package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/infrastructure/config"
	"github.com/orris-inc/warden/internal/interfaces/http/middleware"
	"github.com/orris-inc/warden/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases,
// handlers and background jobs, and wires them together.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	svcs  *services
	ucs   *allUseCases
	hdlrs *allHandlers

	authMiddleware   *middleware.AuthMiddleware
	accessMiddleware *middleware.AccessMiddleware
}

// NewContainer builds the dependency graph. redisClient may be nil, in
// which case login attempts are not throttled.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	c.repos = newRepositories(db, log)

	svcs, err := newServices(db, redisClient, cfg, c.repos, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	c.svcs = svcs

	c.ucs = newUseCases(c.repos, c.svcs, cfg, log)
	c.hdlrs = newHandlers(c.ucs, c.svcs, cfg, log)

	c.authMiddleware = middleware.NewAuthMiddleware(
		c.svcs.access, cfg.Access, cfg.Auth.Cookie, c.svcs.metrics, log.Named("middleware.auth"),
	)
	c.accessMiddleware = middleware.NewAccessMiddleware(
		c.svcs.access, c.svcs.flash, cfg.Access, cfg.Auth.Cookie, c.svcs.metrics, log.Named("middleware.access"),
	)

	return c, nil
}

// StartBackground starts the scheduled jobs.
func (c *Container) StartBackground() {
	c.svcs.scheduler.Start()
}

// Shutdown stops background jobs, drains pending activity writes and
// closes the redis client. Call it before closing the database.
func (c *Container) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.svcs.scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.log.Warnw("scheduler did not stop before deadline", "error", ctx.Err())
	}

	if err := c.svcs.recorder.Wait(ctx); err != nil {
		c.log.Warnw("activity writes still pending at shutdown", "error", err)
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}
	return nil
}
