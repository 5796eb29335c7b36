package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"task_api/internal/domain"
	"task_api/internal/logger"
	"task_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TokenCookieName = "token"

	ctxUser   = "user"
	ctxUserID = "user_id"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// TokenFromRequest returns the session token from the token cookie, falling
// back to an Authorization: Bearer header. The cookie wins when both are set.
func TokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(TokenCookieName); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// AuthGate rejects requests without a valid session with 401 and otherwise
// stores the resolved user in the context.
func AuthGate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			unauthorized(c, "missing")
			return
		}

		user, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				unauthorized(c, rejectionReason(err))
				return
			}
			logger.FromContext(c.Request.Context()).Error("auth gate: load user", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxUserID, user.ID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, reason string) {
	AuthRejections.WithLabelValues(reason).Inc()
	logger.FromContext(c.Request.Context()).Debug("auth gate rejected request", "reason", reason)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return "expired"
	case errors.Is(err, service.ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, service.ErrUserNotFound):
		return "user_not_found"
	default:
		return "malformed"
	}
}

// CurrentUser returns the user stored by AuthGate.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
