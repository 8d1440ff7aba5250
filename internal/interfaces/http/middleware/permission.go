package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
)

// Authorizer checks a principal's effective permissions
type Authorizer interface {
	Authorize(ctx context.Context, principal *identityapp.Principal, mode identity.CheckMode, required ...identity.PermissionCode) error
}

// RequirePermission creates middleware that requires a single permission
func RequirePermission(authz Authorizer, code identity.PermissionCode) gin.HandlerFunc {
	return requirePermissions(authz, identity.CheckAny, []identity.PermissionCode{code})
}

// RequireAnyPermission creates middleware that passes when at least one code is allowed
func RequireAnyPermission(authz Authorizer, codes ...identity.PermissionCode) gin.HandlerFunc {
	return requirePermissions(authz, identity.CheckAny, codes)
}

// RequireAllPermissions creates middleware that passes only when every code is allowed
func RequireAllPermissions(authz Authorizer, codes ...identity.PermissionCode) gin.HandlerFunc {
	return requirePermissions(authz, identity.CheckAll, codes)
}

func requirePermissions(authz Authorizer, mode identity.CheckMode, codes []identity.PermissionCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(RequestIDKey)))
			return
		}

		err := authz.Authorize(c.Request.Context(), principal, mode, codes...)
		if err == nil {
			c.Next()
			return
		}

		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Authorization check failed", c.GetString(RequestIDKey)))
			return
		}
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
			dto.NewErrorResponseWithDetails(code, domainErr.Message, c.GetString(RequestIDKey), domainErr.Details))
	}
}
