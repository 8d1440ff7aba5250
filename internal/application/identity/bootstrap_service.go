package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BootstrapInput names the first super admin
type BootstrapInput struct {
	AdminUsername string
	AdminPassword string
}

// BootstrapResult reports what a bootstrap run created
type BootstrapResult struct {
	RolesCreated []string
	AdminCreated bool
}

// BootstrapService seeds the default roles and the first super admin.
// Running it again only fills in what is missing.
type BootstrapService struct {
	scope  appshared.TransactionScope
	logger *zap.Logger
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(scope appshared.TransactionScope, logger *zap.Logger) *BootstrapService {
	return &BootstrapService{scope: scope, logger: logger}
}

// Run seeds missing default roles and, when credentials are given and the
// username is free, a super admin holding the ADMIN role
func (s *BootstrapService) Run(ctx context.Context, input BootstrapInput) (*BootstrapResult, error) {
	result := &BootstrapResult{RolesCreated: make([]string, 0)}

	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		result.RolesCreated = result.RolesCreated[:0]
		result.AdminCreated = false

		for _, def := range identity.DefaultRoles() {
			exists, err := repos.Roles().ExistsByName(ctx, def.Name)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			role, err := identity.NewDefaultRole(def.Name, def.Description, def.Permissions)
			if err != nil {
				return err
			}
			if err := repos.Roles().Save(ctx, role); err != nil {
				return err
			}
			result.RolesCreated = append(result.RolesCreated, role.Name)
		}

		if input.AdminUsername == "" || input.AdminPassword == "" {
			return nil
		}
		exists, err := repos.Users().ExistsByUsername(ctx, identity.NormalizeUsername(input.AdminUsername))
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		admin, err := identity.NewUser(input.AdminUsername, "Administrator", input.AdminPassword)
		if err != nil {
			return err
		}
		admin.SetSuperAdmin(true)
		adminRole, err := repos.Roles().FindByName(ctx, identity.RoleAdmin)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if adminRole != nil {
			admin.SetRoles([]uuid.UUID{adminRole.ID})
		}
		if err := repos.Users().Save(ctx, admin); err != nil {
			return err
		}
		result.AdminCreated = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Identity bootstrap finished",
		zap.Strings("roles_created", result.RolesCreated),
		zap.Bool("admin_created", result.AdminCreated))
	return result, nil
}
