// Package auth provides the login, logout and password change endpoints.
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/warden/internal/application/access"
	"github.com/orris-inc/warden/internal/application/auth/dto"
	"github.com/orris-inc/warden/internal/application/auth/usecases"
	"github.com/orris-inc/warden/internal/infrastructure/flash"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/config"
	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/utils"
)

const (
	msgLoggedOut       = "You have been logged out."
	msgPasswordChanged = "Your password has been changed."
)

type Handler struct {
	loginUseCase          loginUseCase
	logoutUseCase         logoutUseCase
	changePasswordUseCase changePasswordUseCase
	capabilities          capabilityLister
	flash                 flashStore
	cookieConfig          config.CookieConfig
	logger                logger.Interface
}

func NewHandler(
	loginUC *usecases.LoginUseCase,
	logoutUC *usecases.LogoutUseCase,
	changePasswordUC *usecases.ChangePasswordUseCase,
	accessService *access.Service,
	flashStore *flash.Store,
	cookieConfig config.CookieConfig,
	logger logger.Interface,
) *Handler {
	return &Handler{
		loginUseCase:          loginUC,
		logoutUseCase:         logoutUC,
		changePasswordUseCase: changePasswordUC,
		capabilities:          accessService,
		flash:                 flashStore,
		cookieConfig:          cookieConfig,
		logger:                logger,
	}
}

// LoginPage returns the flash messages waiting for the login screen
// @Summary Login page state
// @Description Pending flash messages, such as the deactivation notice
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse{data=PageState}
// @Router /login [get]
func (h *Handler) LoginPage(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", PageState{Messages: h.popFlashes(c)})
}

// Login authenticates with email and password and starts a session
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} utils.APIResponse{data=dto.LoginResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	cmd := usecases.LoginCommand{
		LoginRequest: req,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.GetHeader(constants.HeaderUserAgent),
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		if !errors.IsAppError(err) {
			h.logger.Errorw("login failed", "error", err)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	maxAge := int(result.Token.ExpiresAt.Sub(biztime.NowUTC()).Seconds())
	utils.SetAccessTokenCookie(c, h.cookieConfig, result.Token.Token, maxAge)
	utils.SetCSRFCookie(c, h.cookieConfig, maxAge)

	p := result.Principal
	utils.SuccessResponse(c, http.StatusOK, "login successful", dto.LoginResponse{
		UserID:             p.UserID,
		Name:               p.Name,
		Email:              p.Email,
		Roles:              p.Roles,
		MustChangePassword: p.MustChangePassword,
		ExpiresAt:          result.Token.ExpiresAt,
		AccessToken:        result.Token.Token,
	})
}

// Logout revokes the current session and clears the auth cookies
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	p := authorization.FromContext(c.Request.Context())
	if p != nil {
		if err := h.logoutUseCase.Execute(c.Request.Context(), p); err != nil {
			h.logger.Errorw("failed to revoke session on logout", "error", err, "user_id", p.UserID)
		}
	}

	utils.ClearAuthCookies(c, h.cookieConfig)
	h.addFlash(c, flash.LevelSuccess, msgLoggedOut)
	utils.SuccessResponse(c, http.StatusOK, msgLoggedOut, nil)
}

// PasswordForm reports whether a change is required and any pending messages
// @Summary Password change page state
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse{data=PageState}
// @Router /auth/password [get]
func (h *Handler) PasswordForm(c *gin.Context) {
	p := authorization.FromContext(c.Request.Context())
	state := PageState{Messages: h.popFlashes(c)}
	if p != nil {
		state.MustChangePassword = p.MustChangePassword
	}
	utils.SuccessResponse(c, http.StatusOK, "", state)
}

// ChangePassword sets a new password and lifts the forced-change flag
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Passwords"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /auth/password [put]
func (h *Handler) ChangePassword(c *gin.Context) {
	p := authorization.FromContext(c.Request.Context())
	if p == nil {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError(constants.ErrMsgUnauthorized))
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	if err := h.changePasswordUseCase.Execute(c.Request.Context(), p, req); err != nil {
		if !errors.IsAppError(err) {
			h.logger.Errorw("failed to change password", "error", err, "user_id", p.UserID)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.addFlash(c, flash.LevelSuccess, msgPasswordChanged)
	utils.SuccessResponse(c, http.StatusOK, msgPasswordChanged, nil)
}

// Me returns the caller and the capabilities its roles and groups allow
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse{data=MeResponse}
// @Failure 401 {object} utils.APIResponse
// @Router /api/me [get]
func (h *Handler) Me(c *gin.Context) {
	p := authorization.FromContext(c.Request.Context())
	if p == nil {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError(constants.ErrMsgUnauthorized))
		return
	}

	caps, err := h.capabilities.Capabilities(c.Request.Context(), p)
	if err != nil {
		h.logger.Errorw("failed to list capabilities", "error", err, "user_id", p.UserID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	names := make([]string, len(caps))
	for i, capability := range caps {
		names[i] = capability.String()
	}
	utils.SuccessResponse(c, http.StatusOK, "", MeResponse{
		UserID:             p.UserID,
		Name:               p.Name,
		Email:              p.Email,
		Roles:              p.Roles,
		MustChangePassword: p.MustChangePassword,
		Capabilities:       names,
	})
}

type MeResponse struct {
	UserID             uint     `json:"user_id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Roles              []string `json:"roles"`
	MustChangePassword bool     `json:"must_change_password"`
	Capabilities       []string `json:"capabilities"`
}

// PageState is what the login and password screens render besides the form.
type PageState struct {
	Messages           []flash.Message `json:"messages"`
	MustChangePassword bool            `json:"must_change_password,omitempty"`
}

func (h *Handler) popFlashes(c *gin.Context) []flash.Message {
	msgs, err := h.flash.Pop(c.Writer, c.Request)
	if err != nil {
		h.logger.Warnw("failed to read flash messages", "error", err)
		return []flash.Message{}
	}
	return msgs
}

func (h *Handler) addFlash(c *gin.Context, level, text string) {
	if err := h.flash.Add(c.Writer, c.Request, level, text); err != nil {
		h.logger.Warnw("failed to store flash message", "error", err)
	}
}
