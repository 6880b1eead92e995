package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/warden/internal/domain/permission"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/config"
	"github.com/orris-inc/warden/internal/shared/errors"
	"github.com/orris-inc/warden/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var accessCfg = config.AccessConfig{
	AdminRoles:         []string{"super-admin", "admin"},
	LoginPath:          "/login",
	LogoutPath:         "/auth/logout",
	PasswordChangePath: "/auth/password",
	APIPrefix:          "/api",
}

type stubChecker struct {
	allowed map[permission.Capability]bool
	ended   []string
}

func (s *stubChecker) Can(_ context.Context, _ *authorization.Principal, c permission.Capability) (bool, error) {
	return s.allowed[c], nil
}

func (s *stubChecker) EndInactiveSession(_ context.Context, p *authorization.Principal) error {
	s.ended = append(s.ended, p.SessionID)
	return nil
}

type recordingFlash struct {
	levels []string
	texts  []string
}

func (f *recordingFlash) Add(_ http.ResponseWriter, _ *http.Request, level, text string) error {
	f.levels = append(f.levels, level)
	f.texts = append(f.texts, text)
	return nil
}

type gateCounter map[string]int

func (g gateCounter) GateDecision(gate, result string) { g[gate+":"+result]++ }

// gated builds a router whose first middleware installs p.
func gated(p *authorization.Principal, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if p != nil {
			setPrincipal(c, p)
		}
		c.Next()
	})
	chain := append(handlers, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.Any("/*path", chain...)
	return r
}

func serve(r *gin.Engine, method, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func principal(roles []string, active, mustChange bool) *authorization.Principal {
	return &authorization.Principal{UserID: 7, SessionID: "sess", Roles: roles, IsActive: active, MustChangePassword: mustChange}
}

func newAccess(checker *stubChecker, fl *recordingFlash) *AccessMiddleware {
	return NewAccessMiddleware(checker, fl, accessCfg, config.CookieConfig{Path: "/"}, gateCounter{}, logger.NewNopLogger())
}

func TestRequireRole(t *testing.T) {
	t.Run("missing role is forbidden even when inactive", func(t *testing.T) {
		checker := &stubChecker{}
		m := newAccess(checker, &recordingFlash{})
		w := serve(gated(principal([]string{"support"}, false, false), m.RequireRole("admin")), http.MethodGet, "/admin/user-groups")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, checker.ended)
	})

	t.Run("active admin passes", func(t *testing.T) {
		m := newAccess(&stubChecker{}, &recordingFlash{})
		w := serve(gated(principal([]string{"admin"}, true, false), m.RequireRole("super-admin", "admin")), http.MethodGet, "/admin/user-groups")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("inactive admin is logged out with flash", func(t *testing.T) {
		checker := &stubChecker{}
		fl := &recordingFlash{}
		m := newAccess(checker, fl)
		w := serve(gated(principal([]string{"admin"}, false, false), m.RequireRole("admin")), http.MethodGet, "/admin/user-groups")

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, []string{"sess"}, checker.ended)
		assert.Equal(t, []string{errors.MsgAccountDeactivated}, fl.texts)
		assert.Equal(t, []string{"error"}, fl.levels)
		assert.Contains(t, w.Header().Values("Set-Cookie")[0], "access_token=;")
	})

	t.Run("inactive API caller gets 401", func(t *testing.T) {
		checker := &stubChecker{}
		fl := &recordingFlash{}
		m := newAccess(checker, fl)
		w := serve(gated(principal([]string{"admin"}, false, false), m.RequireRole("admin")), http.MethodGet, "/api/me")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, []string{"sess"}, checker.ended)
		assert.Empty(t, fl.texts)
	})

	t.Run("empty role list only checks activity", func(t *testing.T) {
		m := newAccess(&stubChecker{}, &recordingFlash{})
		w := serve(gated(principal(nil, true, false), m.RequireRole()), http.MethodGet, "/auth/password")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no principal", func(t *testing.T) {
		m := newAccess(&stubChecker{}, &recordingFlash{})
		w := serve(gated(nil, m.RequireRole("admin")), http.MethodGet, "/admin")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	checker := &stubChecker{allowed: map[permission.Capability]bool{permission.ViewUserGroups: true}}
	m := newAccess(checker, &recordingFlash{})
	p := principal([]string{"admin"}, true, false)

	w := serve(gated(p, m.RequirePermission(permission.ViewUserGroups)), http.MethodGet, "/admin/user-groups")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(gated(p, m.RequirePermission(permission.DeleteUserGroups)), http.MethodDelete, "/admin/user-groups/5")
	require.Equal(t, http.StatusForbidden, w.Code)
	var body struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "forbidden", body.Error.Type)
}

func TestForcePasswordChange(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		mustChange bool
		wantCode   int
	}{
		{"flagged user is redirected", "/admin/user-groups", true, http.StatusFound},
		{"password form is reachable", "/auth/password", true, http.StatusOK},
		{"logout is reachable", "/auth/logout", true, http.StatusOK},
		{"api is exempt", "/api/user-groups", true, http.StatusOK},
		{"unflagged user passes", "/admin/user-groups", false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl := &recordingFlash{}
			m := newAccess(&stubChecker{}, fl)
			w := serve(gated(principal([]string{"admin"}, true, tt.mustChange), m.ForcePasswordChange()), http.MethodGet, tt.path)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusFound {
				assert.Equal(t, "/auth/password", w.Header().Get("Location"))
				assert.Equal(t, []string{errors.MsgPasswordChangeRequired}, fl.texts)
				assert.Equal(t, []string{"warning"}, fl.levels)
			}
		})
	}
}

type stubAuthenticator struct {
	p   *authorization.Principal
	err error
}

func (s stubAuthenticator) Authenticate(context.Context, string) (*authorization.Principal, error) {
	return s.p, s.err
}

func TestRequireAuth(t *testing.T) {
	newAuth := func(a stubAuthenticator) *gin.Engine {
		m := NewAuthMiddleware(a, accessCfg, config.CookieConfig{Path: "/"}, gateCounter{}, logger.NewNopLogger())
		r := gin.New()
		r.GET("/*path", m.RequireAuth(), func(c *gin.Context) {
			c.String(http.StatusOK, "user %d", PrincipalFrom(c).UserID)
		})
		return r
	}

	ok := newAuth(stubAuthenticator{p: &authorization.Principal{UserID: 4}})
	w := serve(ok, http.MethodGet, "/admin", "Authorization", "Bearer abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user 4", w.Body.String())

	denied := newAuth(stubAuthenticator{err: errors.NewSessionExpiredError()})
	w = serve(denied, http.MethodGet, "/admin")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = serve(denied, http.MethodGet, "/api/user-groups")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(denied, http.MethodGet, "/admin", "Accept", "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	broken := newAuth(stubAuthenticator{err: assert.AnError})
	w = serve(broken, http.MethodGet, "/admin")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestIDAndCSRF(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), CSRF())
	r.Any("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, http.MethodGet, "/x", "X-Request-ID", "abc")
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
	w = serve(r, http.MethodGet, "/x")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/admin/user-groups").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/admin/user-groups", "Authorization", "Bearer t").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/auth/login").Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/user-groups", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
	req.Header.Set("X-CSRF-Token", "tok")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
