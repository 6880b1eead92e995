package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/warden/internal/infrastructure/metrics"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/config"
	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/utils"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authorization.Principal, error)
}

type GateMetrics interface {
	GateDecision(gate, result string)
}

type AuthMiddleware struct {
	auth    Authenticator
	access  config.AccessConfig
	cookie  config.CookieConfig
	metrics GateMetrics
	logger  logger.Interface
}

func NewAuthMiddleware(auth Authenticator, access config.AccessConfig, cookie config.CookieConfig, metrics GateMetrics, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		auth:    auth,
		access:  access,
		cookie:  cookie,
		metrics: metrics,
		logger:  logger,
	}
}

// RequireAuth resolves the principal from the access token cookie or the
// bearer header. Browser requests without one are sent to the login page;
// API requests get 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerOrCookie(c)

		principal, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			m.metrics.GateDecision("auth", metrics.ResultUnauth)
			if !errors.IsAppError(err) {
				m.logger.Errorw("failed to authenticate request", "error", err)
				utils.ErrorResponseWithError(c, err)
				c.Abort()
				return
			}
			if token != "" {
				m.logger.Debugw("rejected access token", "path", c.Request.URL.Path, "error", err)
				utils.ClearAuthCookies(c, m.cookie)
			}
			if isAPIRequest(c, m.access.APIPrefix) {
				utils.ErrorResponseWithError(c, err)
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, m.access.LoginPath)
			c.Abort()
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

func bearerOrCookie(c *gin.Context) string {
	if token := utils.GetTokenFromCookie(c, utils.AccessTokenCookie); token != "" {
		return token
	}
	header := c.GetHeader(constants.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func setPrincipal(c *gin.Context, p *authorization.Principal) {
	c.Set(constants.ContextKeyPrincipal, p)
	c.Request = c.Request.WithContext(authorization.WithPrincipal(c.Request.Context(), p))
}

// PrincipalFrom returns the principal set by RequireAuth, or nil.
func PrincipalFrom(c *gin.Context) *authorization.Principal {
	v, ok := c.Get(constants.ContextKeyPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*authorization.Principal)
	return p
}

// isAPIRequest is true under the API prefix or when the client asked for JSON.
func isAPIRequest(c *gin.Context, apiPrefix string) bool {
	if apiPrefix != "" && strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
		return true
	}
	return strings.Contains(c.GetHeader(constants.HeaderAccept), constants.ContentTypeJSON)
}
