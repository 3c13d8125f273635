package server

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const (
	contextAdminKeyIDKey contextKey = "admin_key_id"
	contextScopesKey     contextKey = "admin_key_scopes"
)

// AdminKeyRequired authenticates the bearer admin key and checks that one
// of its scopes grants the object/action pair.
func (s *Server) AdminKeyRequired(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		key, err := s.adminKeySvc.Verify(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if !s.authorizer.Allowed(key.Scopes, object, action) {
			AbortWithError(c, ErrForbidden)
			return
		}

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, contextAdminKeyIDKey, key.ID.String())
		ctx = context.WithValue(ctx, contextScopesKey, []string(key.Scopes))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RateLimited gates a public route per client IP. No-op without redis.
func (s *Server) RateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := s.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !allowed {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}

// AdminKeyIDFromContext exposes the authenticated key id to handlers.
func AdminKeyIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextAdminKeyIDKey).(string)
	return id, ok
}
