package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/writing-assistant/internal/auth"
	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/ErlanBelekov/writing-assistant/internal/metrics"
	"github.com/ErlanBelekov/writing-assistant/internal/reqctx"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "token"
	SessionMaxAge = auth.SessionTTL

	userKey  = "user"
	tokenKey = "sessionToken"

	errNotAuthenticated = "Not authenticated"
	errUserNotFound     = "User not found"
	errInternalServer   = "Internal server error"
)

// SessionResolver maps a raw session token to its user.
type SessionResolver interface {
	Resolve(ctx context.Context, rawToken string) (*domain.User, error)
}

// Auth reads the session token from the "token" cookie, or from a Bearer
// Authorization header when no cookie is sent, and stores the resolved user
// in the gin context.
func Auth(resolver SessionResolver, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := sessionTokenFrom(c)

		user, err := resolver.Resolve(c.Request.Context(), raw)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrUnauthenticated):
				metrics.SessionRejectionsTotal.WithLabelValues("unauthenticated").Inc()
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errNotAuthenticated})
			case errors.Is(err, domain.ErrUserNotFound):
				metrics.SessionRejectionsTotal.WithLabelValues("user_not_found").Inc()
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			default:
				metrics.SessionRejectionsTotal.WithLabelValues("error").Inc()
				logger.ErrorContext(c.Request.Context(), "resolve session", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
			}
			return
		}

		c.Set(userKey, user)
		c.Set(tokenKey, raw)
		c.Request = c.Request.WithContext(reqctx.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// CurrentUser returns the user stored by Auth. It panics when called on a
// route without Auth.
func CurrentUser(c *gin.Context) *domain.User {
	return c.MustGet(userKey).(*domain.User)
}

// SessionToken returns the raw token Auth accepted.
func SessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func sessionTokenFrom(c *gin.Context) string {
	if raw, err := c.Cookie(SessionCookie); err == nil && raw != "" {
		return raw
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
