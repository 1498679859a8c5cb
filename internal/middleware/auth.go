package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/personal-task-api/internal/auth"
	"github.com/yukikurage/personal-task-api/internal/constants"
	apierrors "github.com/yukikurage/personal-task-api/internal/errors"
	"github.com/yukikurage/personal-task-api/internal/services"
)

// Authenticator turns a bearer token or a session user ID into a Principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
	ResolvePrincipal(ctx context.Context, userID uint64) (auth.Principal, error)
}

// RequireAuth checks if the request carries a valid bearer token or session.
// A bearer token, when present, takes precedence over the session.
func RequireAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var (
			principal auth.Principal
			err       error
		)

		if token, ok := bearerToken(c); ok {
			principal, err = authenticator.Authenticate(ctx, token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, services.ErrUserNotFound) {
					apierrors.Unauthorized(c, "Invalid or expired token")
					c.Abort()
					return
				}
				slog.ErrorContext(ctx, "failed to authenticate token", "error", err)
				apierrors.InternalError(c, "")
				c.Abort()
				return
			}
		} else {
			userID, ok := sessionUserID(c)
			if !ok {
				apierrors.Unauthorized(c, "")
				c.Abort()
				return
			}

			principal, err = authenticator.ResolvePrincipal(ctx, userID)
			if err != nil {
				if errors.Is(err, services.ErrUserNotFound) {
					apierrors.Unauthorized(c, "")
					c.Abort()
					return
				}
				slog.ErrorContext(ctx, "failed to resolve session user", "error", err)
				apierrors.InternalError(c, "")
				c.Abort()
				return
			}
		}

		// Store the principal in context for easy access in handlers
		c.Set(constants.ContextKeyPrincipal, principal)
		c.Set(constants.ContextKeyUserID, principal.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func sessionUserID(c *gin.Context) (uint64, bool) {
	// the session middleware is optional, e.g. in token-only deployments
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return 0, false
	}
	return toUserID(sessions.Default(c).Get(constants.ContextKeyUserID))
}

// GetPrincipal retrieves the authenticated principal from context
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return auth.Principal{}, false
	}
	principal, ok := value.(auth.Principal)
	return principal, ok
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(userID)
}

func toUserID(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
