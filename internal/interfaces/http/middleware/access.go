package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/infrastructure/flash"
	"github.com/orris-inc/warden/internal/infrastructure/metrics"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/config"
	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/utils"
)

type AccessChecker interface {
	Can(ctx context.Context, p *authorization.Principal, capability permission.Capability) (bool, error)
	EndInactiveSession(ctx context.Context, p *authorization.Principal) error
}

type Flasher interface {
	Add(w http.ResponseWriter, r *http.Request, level, text string) error
}

// AccessMiddleware holds the gates that run after RequireAuth.
type AccessMiddleware struct {
	checker AccessChecker
	flash   Flasher
	access  config.AccessConfig
	cookie  config.CookieConfig
	metrics GateMetrics
	logger  logger.Interface
}

func NewAccessMiddleware(
	checker AccessChecker,
	flash Flasher,
	access config.AccessConfig,
	cookie config.CookieConfig,
	metrics GateMetrics,
	logger logger.Interface,
) *AccessMiddleware {
	return &AccessMiddleware{
		checker: checker,
		flash:   flash,
		access:  access,
		cookie:  cookie,
		metrics: metrics,
		logger:  logger,
	}
}

// RequireRole stops principals holding none of roles with 403, then logs
// out deactivated accounts. With no roles only the active check runs.
func (m *AccessMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := m.principal(c)
		if !ok {
			return
		}

		if !p.HasAnyRole(roles...) {
			m.metrics.GateDecision("role", metrics.ResultForbidden)
			m.logger.Warnw("role check failed", "user_id", p.UserID, "required_roles", roles)
			m.forbid(c)
			return
		}

		if !p.IsActive {
			m.logoutInactive(c, p)
			return
		}

		m.metrics.GateDecision("role", metrics.ResultAllowed)
		c.Next()
	}
}

// RequirePermission allows the request when the principal's roles or
// active groups grant capability and none denies it.
func (m *AccessMiddleware) RequirePermission(capability permission.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := m.principal(c)
		if !ok {
			return
		}

		allowed, err := m.checker.Can(c.Request.Context(), p, capability)
		if err != nil {
			m.logger.Errorw("permission check failed", "user_id", p.UserID, "capability", capability, "error", err)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}
		if !allowed {
			m.metrics.GateDecision("permission", metrics.ResultForbidden)
			m.logger.Warnw("permission denied", "user_id", p.UserID, "capability", capability)
			m.forbid(c)
			return
		}

		if !p.IsActive {
			m.logoutInactive(c, p)
			return
		}

		m.metrics.GateDecision("permission", metrics.ResultAllowed)
		c.Next()
	}
}

// ForcePasswordChange sends principals flagged for a password change to
// the change form. The form itself, logout and API routes are exempt.
func (m *AccessMiddleware) ForcePasswordChange() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil || !p.MustChangePassword || m.exemptFromPasswordChange(c.Request.URL.Path) {
			c.Next()
			return
		}

		m.metrics.GateDecision("password", metrics.ResultPasswordReq)
		if err := m.flash.Add(c.Writer, c.Request, flash.LevelWarning, errors.MsgPasswordChangeRequired); err != nil {
			m.logger.Warnw("failed to store flash message", "error", err)
		}
		c.Redirect(http.StatusFound, m.access.PasswordChangePath)
		c.Abort()
	}
}

func (m *AccessMiddleware) exemptFromPasswordChange(path string) bool {
	if path == m.access.PasswordChangePath || path == m.access.LogoutPath {
		return true
	}
	return m.access.APIPrefix != "" && strings.HasPrefix(path, m.access.APIPrefix)
}

func (m *AccessMiddleware) principal(c *gin.Context) (*authorization.Principal, bool) {
	p := PrincipalFrom(c)
	if p == nil {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError(constants.ErrMsgUnauthorized))
		c.Abort()
		return nil, false
	}
	return p, true
}

func (m *AccessMiddleware) forbid(c *gin.Context) {
	utils.ErrorResponseWithError(c, errors.NewForbiddenError(constants.ErrMsgForbidden))
	c.Abort()
}

// logoutInactive ends the session of a deactivated account and sends it
// to the login page with an explanation.
func (m *AccessMiddleware) logoutInactive(c *gin.Context, p *authorization.Principal) {
	m.metrics.GateDecision("active", metrics.ResultInactive)

	if err := m.checker.EndInactiveSession(c.Request.Context(), p); err != nil {
		m.logger.Errorw("failed to end inactive session", "user_id", p.UserID, "error", err)
	}
	utils.ClearAuthCookies(c, m.cookie)

	if isAPIRequest(c, m.access.APIPrefix) {
		utils.ErrorResponseWithError(c, errors.NewAccountInactiveError())
		c.Abort()
		return
	}

	if err := m.flash.Add(c.Writer, c.Request, flash.LevelError, errors.MsgAccountDeactivated); err != nil {
		m.logger.Warnw("failed to store flash message", "error", err)
	}
	c.Redirect(http.StatusFound, m.access.LoginPath)
	c.Abort()
}
