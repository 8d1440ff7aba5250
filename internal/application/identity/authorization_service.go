package identity

import (
	"context"

	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuthorizationService gates operations on the principal's effective permissions
type AuthorizationService struct {
	resolver *identity.PermissionResolver
	logger   *zap.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *zap.Logger) *AuthorizationService {
	return &AuthorizationService{
		resolver: identity.NewPermissionResolver(),
		logger:   logger,
	}
}

// Authorize checks required codes against the principal. A denial is a FORBIDDEN
// error whose "missing" detail lists the codes that were not granted.
func (s *AuthorizationService) Authorize(ctx context.Context, principal *Principal, mode identity.CheckMode, required ...identity.PermissionCode) error {
	if principal == nil || principal.User == nil {
		return shared.ErrUnauthorized
	}
	decision := s.resolver.Check(principal.Permissions, required, mode)
	if decision.Allowed {
		return nil
	}

	missing := make([]string, len(decision.Missing))
	for i, code := range decision.Missing {
		missing[i] = code.String()
	}
	s.logger.Warn("Access denied",
		zap.String("user_id", principal.ID().String()),
		zap.String("mode", string(mode)),
		zap.Strings("missing", missing),
		zap.String("request_id", logger.GetRequestID(ctx)))
	return shared.ErrForbidden.WithDetail("missing", missing)
}

// ListPermissions returns the permission catalog
func (s *AuthorizationService) ListPermissions() []PermissionDTO {
	return toPermissionDTOs(identity.PermissionCatalog())
}
