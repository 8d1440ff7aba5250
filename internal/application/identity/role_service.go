package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RoleService handles role management operations
type RoleService struct {
	scope     appshared.TransactionScope
	roleRepo  identity.RoleRepository
	userRepo  identity.UserRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(
	scope appshared.TransactionScope,
	roleRepo identity.RoleRepository,
	userRepo identity.UserRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *RoleService {
	return &RoleService{
		scope:     scope,
		roleRepo:  roleRepo,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns every role with its user count
func (s *RoleService) List(ctx context.Context) ([]RoleDTO, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoleDTO, 0, len(roles))
	for _, role := range roles {
		dto, err := s.toDTOWithCount(ctx, role)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

// GetByID returns a role by ID
func (s *RoleService) GetByID(ctx context.Context, id uuid.UUID) (*RoleDTO, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto, err := s.toDTOWithCount(ctx, role)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// Create creates a new custom role
func (s *RoleService) Create(ctx context.Context, input CreateRoleInput) (*RoleDTO, error) {
	s.logger.Info("Creating new role", zap.String("name", input.Name))

	codes, err := identity.ParsePermissionCodes(input.Permissions)
	if err != nil {
		return nil, err
	}
	role, err := identity.NewRole(input.Name, input.Description)
	if err != nil {
		return nil, err
	}
	if len(codes) > 0 {
		if err := role.SetPermissions(codes); err != nil {
			return nil, err
		}
	}

	var recorder appshared.EventRecorder
	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		exists, err := repos.Roles().ExistsByName(ctx, role.Name)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ROLE_NAME_EXISTS", "Role name already exists")
		}
		if err := repos.Roles().Save(ctx, role); err != nil {
			return err
		}
		recorder.Collect(role)
		return nil
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Role created", zap.String("role_id", role.ID.String()), zap.String("name", role.Name))
	dto := ToRoleDTO(role)
	return &dto, nil
}

// Update renames a role, changes its description, or replaces its permission set
func (s *RoleService) Update(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*RoleDTO, error) {
	var codes []identity.PermissionCode
	if input.Permissions != nil {
		parsed, err := identity.ParsePermissionCodes(input.Permissions)
		if err != nil {
			return nil, err
		}
		codes = parsed
	}

	role, err := s.mutate(ctx, id, func(repos appshared.Repositories, role *identity.Role) error {
		if input.Name != nil && strings.ToUpper(strings.TrimSpace(*input.Name)) != role.Name {
			if err := role.Rename(*input.Name); err != nil {
				return err
			}
			exists, err := repos.Roles().ExistsByName(ctx, role.Name)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewDomainError("ROLE_NAME_EXISTS", "Role name already exists")
			}
		}
		if input.Description != nil {
			role.SetDescription(*input.Description)
		}
		if input.Permissions != nil {
			return role.SetPermissions(codes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Role updated", zap.String("role_id", id.String()))
	return s.GetByID(ctx, role.ID)
}

// GrantPermission adds one permission code to a role
func (s *RoleService) GrantPermission(ctx context.Context, id uuid.UUID, rawCode string) (*RoleDTO, error) {
	code, err := identity.ParsePermissionCode(rawCode)
	if err != nil {
		return nil, err
	}
	role, err := s.mutate(ctx, id, func(_ appshared.Repositories, role *identity.Role) error {
		return role.GrantPermission(code)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Permission granted", zap.String("role_id", id.String()), zap.String("code", code.String()))
	dto := ToRoleDTO(role)
	return &dto, nil
}

// RevokePermission removes one permission code from a role
func (s *RoleService) RevokePermission(ctx context.Context, id uuid.UUID, rawCode string) (*RoleDTO, error) {
	code, err := identity.ParsePermissionCode(rawCode)
	if err != nil {
		return nil, err
	}
	role, err := s.mutate(ctx, id, func(_ appshared.Repositories, role *identity.Role) error {
		return role.RevokePermission(code)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Permission revoked", zap.String("role_id", id.String()), zap.String("code", code.String()))
	dto := ToRoleDTO(role)
	return &dto, nil
}

// Delete removes a custom role that no user holds
func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		role, err := repos.Roles().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !role.CanDelete() {
			return shared.NewDomainError("DEFAULT_ROLE_PROTECTED", "Default roles cannot be deleted")
		}
		count, err := repos.Users().CountByRole(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return shared.NewDomainError("ROLE_IN_USE", "Role is assigned to users").WithDetail("user_count", count)
		}
		return repos.Roles().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Role deleted", zap.String("role_id", id.String()))
	return nil
}

// mutate loads a role inside a transaction, applies fn and saves it,
// retrying the whole unit when another writer got there first
func (s *RoleService) mutate(ctx context.Context, id uuid.UUID, fn func(repos appshared.Repositories, role *identity.Role) error) (*identity.Role, error) {
	var (
		recorder appshared.EventRecorder
		result   *identity.Role
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			role, err := repos.Roles().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if err := fn(repos, role); err != nil {
				return err
			}
			if err := repos.Roles().Save(ctx, role); err != nil {
				return err
			}
			recorder.Collect(role)
			result = role
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)
	return result, nil
}

func (s *RoleService) toDTOWithCount(ctx context.Context, role *identity.Role) (RoleDTO, error) {
	dto := ToRoleDTO(role)
	count, err := s.userRepo.CountByRole(ctx, role.ID)
	if err != nil {
		return RoleDTO{}, err
	}
	dto.UserCount = count
	return dto, nil
}
