package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Context keys and header names used by authentication
const (
	PrincipalKey  = "principal"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator resolves a bearer token into a principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identityapp.Principal, error)
}

// AuthMiddlewareConfig holds configuration for authentication middleware
type AuthMiddlewareConfig struct {
	// Authenticator is required for token validation
	Authenticator Authenticator
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultAuthConfig returns default authentication middleware configuration
func DefaultAuthConfig(authenticator Authenticator) AuthMiddlewareConfig {
	return AuthMiddlewareConfig{
		Authenticator: authenticator,
		SkipPaths: []string{
			"/metrics",
			"/api/v1/auth/login",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api/v1/health",
		},
	}
}

// AuthMiddleware creates bearer token authentication middleware
func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return AuthMiddlewareWithConfig(DefaultAuthConfig(authenticator))
}

// AuthMiddlewareWithConfig creates authentication middleware with custom config.
// The resolved principal is stored under PrincipalKey and its identity is
// attached to the request logger.
func AuthMiddlewareWithConfig(cfg AuthMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, cfg.Logger, "Missing authorization header", nil)
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, cfg.Logger, "Invalid authorization header format", nil)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			abortUnauthorized(c, cfg.Logger, "Missing token", nil)
			return
		}

		principal, err := cfg.Authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			abortUnauthorized(c, cfg.Logger, "Authentication required", err)
			return
		}

		c.Set(PrincipalKey, principal)

		ctx := c.Request.Context()
		ctx, _ = logger.WithPrincipal(ctx, logger.FromContext(ctx), principal.ID().String(), principal.User.Username)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Authentication successful",
				zap.String("user_id", principal.ID().String()),
				zap.String("username", principal.User.Username))
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, message string, err error) {
	if log != nil {
		log.Warn("Authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path))
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, c.GetString(RequestIDKey)))
}

// GetPrincipal retrieves the authenticated principal from gin.Context
func GetPrincipal(c *gin.Context) *identityapp.Principal {
	if v, exists := c.Get(PrincipalKey); exists {
		if p, ok := v.(*identityapp.Principal); ok {
			return p
		}
	}
	return nil
}
