package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/warden/internal/infrastructure/ratelimit"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/utils"
)

const healthCheckTimeout = 2 * time.Second

// newLoginLimiter returns the redis sliding-window limiter, or a limiter
// that allows everything when redis is not configured.
func newLoginLimiter(rdb *redis.Client, log logger.Interface) ratelimit.RateLimiter {
	if rdb == nil {
		log.Warnw("redis not configured, login attempts are not rate limited")
		return ratelimit.NoopLimiter{}
	}
	return ratelimit.NewRedisRateLimiter(rdb)
}

// healthHandler reports 503 when the database, or redis when configured,
// does not answer a ping.
func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := gin.H{"database": "ok"}
		healthy := true

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unavailable"
			healthy = false
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				status["redis"] = "unavailable"
				healthy = false
			}
		}

		if !healthy {
			utils.SuccessResponse(c, http.StatusServiceUnavailable, "unhealthy", status)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "ok", status)
	}
}
