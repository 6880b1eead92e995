package utils

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/warden/internal/shared/config"
)

const (
	AccessTokenCookie = "access_token"
	CSRFTokenCookie   = "csrf_token"
	CSRFTokenHeader   = "X-CSRF-Token"

	csrfTokenBytes = 32
)

// SetAccessTokenCookie stores the access token in an HttpOnly cookie.
func SetAccessTokenCookie(c *gin.Context, cookieConfig config.CookieConfig, accessToken string, maxAge int) {
	c.SetSameSite(parseSameSite(cookieConfig.SameSite))
	c.SetCookie(
		AccessTokenCookie,
		accessToken,
		maxAge,
		cookieConfig.Path,
		cookieConfig.Domain,
		cookieConfig.Secure,
		true,
	)
}

func ClearAuthCookies(c *gin.Context, cookieConfig config.CookieConfig) {
	SetAccessTokenCookie(c, cookieConfig, "", -1)
	setCSRFCookie(c, cookieConfig, "", -1)
}

// SetCSRFCookie issues a fresh double-submit token. The cookie is readable
// by scripts so they can echo it in the X-CSRF-Token header.
func SetCSRFCookie(c *gin.Context, cookieConfig config.CookieConfig, maxAge int) {
	setCSRFCookie(c, cookieConfig, generateCSRFToken(), maxAge)
}

func setCSRFCookie(c *gin.Context, cookieConfig config.CookieConfig, token string, maxAge int) {
	c.SetSameSite(parseSameSite(cookieConfig.SameSite))
	c.SetCookie(
		CSRFTokenCookie,
		token,
		maxAge,
		cookieConfig.Path,
		cookieConfig.Domain,
		cookieConfig.Secure,
		false,
	)
}

func generateCSRFToken() string {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("csrf: failed to generate random token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// GetTokenFromCookie returns the named cookie value or "".
func GetTokenFromCookie(c *gin.Context, cookieName string) string {
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
