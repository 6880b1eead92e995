package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/warden/internal/shared/constants"
	"github.com/orris-inc/warden/internal/shared/utils"
)

// csrfExactPaths lists exact paths exempt from CSRF validation.
var csrfExactPaths = map[string]struct{}{
	"/auth/login":  {},
	// Logout is exempt because the CSRF cookie may have expired alongside the access token.
	"/auth/logout": {},
}

// CSRF returns a middleware that validates CSRF tokens using the Double Submit Cookie pattern.
// For mutating requests (POST, PUT, DELETE, PATCH), it compares the csrf_token cookie value
// against the X-CSRF-Token header value. Safe methods (GET, HEAD, OPTIONS) are always skipped.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip safe HTTP methods
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		if _, ok := csrfExactPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		// Bearer clients do not ride on ambient cookies.
		if strings.HasPrefix(c.GetHeader(constants.HeaderAuthorization), "Bearer ") {
			c.Next()
			return
		}

		// Read CSRF token from cookie
		cookieToken, err := c.Cookie(utils.CSRFTokenCookie)
		if err != nil || cookieToken == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "missing CSRF token")
			c.Abort()
			return
		}

		// Read CSRF token from header
		headerToken := c.GetHeader(utils.CSRFTokenHeader)
		if headerToken == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "missing CSRF token header")
			c.Abort()
			return
		}

		// Constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
			utils.ErrorResponse(c, http.StatusForbidden, "invalid CSRF token")
			c.Abort()
			return
		}

		c.Next()
	}
}

// isSafeMethod returns true for HTTP methods that do not mutate state.
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
