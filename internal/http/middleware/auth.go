// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides JWT authentication. Tokens are read cookie-first (the
// access token cookie set at login) with an Authorization: Bearer fallback
// for non-browser clients. Verified claims are stored in the Gin context
// under CtxUserID / CtxUserRole / CtxUserEmail for handlers to read.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SimonHeistermann/Nomad-Cafes/internal/auth"
)

// Gin context keys populated by Authenticate.
const (
	CtxUserID    = "userID"
	CtxUserRole  = "userRole"
	CtxUserEmail = "userEmail"
)

// Authenticate verifies the access token when one is present and stores its
// claims in the context. It never aborts: routes that tolerate anonymous
// traffic (e.g. public listings) share the same chain, and RequireAuth does
// the actual gating.
func Authenticate(tokens *auth.Manager, accessCookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c, accessCookieName)
		if raw == "" {
			c.Next()
			return
		}

		claims, err := tokens.VerifyAccess(raw)
		if err != nil {
			// A bad token on a public route is treated as anonymous; protected
			// routes reject it in RequireAuth.
			c.Next()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserRole, claims.Role)
		c.Set(CtxUserEmail, claims.Email)
		c.Next()
	}
}

// RequireAuth aborts with 401 unless Authenticate placed a user ID in the
// context. Place it after Authenticate on protected groups.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserID) == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user carries the given
// role. Combine with RequireAuth: RequireRole alone does not check that a
// user is present.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserRole) != role {
			abortJSON(c, http.StatusForbidden, "forbidden", "insufficient permissions")
			return
		}
		c.Next()
	}
}

// tokenFromRequest extracts the raw access token: cookie first (how browser
// sessions authenticate) then the Authorization header.
func tokenFromRequest(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v
		}
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// abortJSON writes the standard error envelope with the request's correlation
// ID and stops the chain.
func abortJSON(c *gin.Context, status int, code, msg string) {
	rid, _ := c.Get(requestIDKey)
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": asString(rid),
		"code":       code,
		"message":    msg,
	})
}
