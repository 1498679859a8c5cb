package handlers

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/personal-task-api/internal/auth"
	apierrors "github.com/yukikurage/personal-task-api/internal/errors"
	"github.com/yukikurage/personal-task-api/internal/middleware"
	"github.com/yukikurage/personal-task-api/internal/services"
)

// Binding errors are reported under the JSON field names clients send.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// parseID reads a numeric path parameter. Anything else cannot name an
// existing resource and is answered with 404.
func parseID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		apierrors.NotFound(c, "")
		return 0, false
	}
	return id, true
}

// bindPartial binds a partial update body. An empty body is an empty update.
func bindPartial(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BindingError(c, err)
		return false
	}
	return true
}

// currentPrincipal returns the principal set by RequireAuth
func currentPrincipal(c *gin.Context) (auth.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return auth.Principal{}, false
	}
	return p, true
}

func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError

	switch {
	case errors.As(err, &verr):
		apierrors.BadRequestWithDetails(c, "Validation failed", verr.Fields)
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.BadRequestWithDetails(c, err.Error(), map[string]string{"state": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err, "path", c.Request.URL.Path)
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
