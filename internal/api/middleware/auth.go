// Package middleware provides gin middleware for authentication and request logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amazongreen/storefront/internal/api/respond"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userID"

// TokenParser verifies a session token and returns its user id.
type TokenParser interface {
	Parse(token string) (uint, error)
}

// Auth rejects requests without a valid session token.
func Auth(tokens TokenParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(c, tokens, cookieName)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// Optional sets the user id when a valid token is present and lets every
// request through.
func Optional(tokens TokenParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := authenticate(c, tokens, cookieName); ok {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func authenticate(c *gin.Context, tokens TokenParser, cookieName string) (uint, bool) {
	token := bearer(c.GetHeader("Authorization"))
	if token == "" {
		if cookie, err := c.Cookie(cookieName); err == nil {
			token = cookie
		}
	}
	if token == "" {
		return 0, false
	}
	userID, err := tokens.Parse(token)
	if err != nil {
		return 0, false
	}
	return userID, true
}

func bearer(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
