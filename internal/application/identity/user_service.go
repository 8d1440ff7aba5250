package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TokenRevoker invalidates every token issued to a user so far
type TokenRevoker interface {
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
}

// UserService handles user administration
type UserService struct {
	scope     appshared.TransactionScope
	userRepo  identity.UserRepository
	revoker   TokenRevoker
	tokenTTL  time.Duration
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewUserService creates a new user service. revoker may be nil; deactivated users
// are rejected on every request regardless, the revoker only closes the gap sooner.
func NewUserService(
	scope appshared.TransactionScope,
	userRepo identity.UserRepository,
	revoker TokenRevoker,
	tokenTTL time.Duration,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		scope:     scope,
		userRepo:  userRepo,
		revoker:   revoker,
		tokenTTL:  tokenTTL,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, filter identity.UserFilter) (shared.Paginated[UserDTO], error) {
	filter.Filter = filter.Filter.Normalize()
	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[UserDTO]{}, err
	}
	items := make([]UserDTO, len(users))
	for i, u := range users {
		items[i] = ToUserDTO(u)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// GetByID returns a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// Create creates a user with optional roles and overrides
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	s.logger.Info("Creating new user", zap.String("username", input.Username))

	overrides, err := parseOverrides(input.Overrides)
	if err != nil {
		return nil, err
	}
	user, err := identity.NewUser(input.Username, input.DisplayName, input.Password)
	if err != nil {
		return nil, err
	}
	if err := user.SetOverrides(overrides); err != nil {
		return nil, err
	}
	user.SetRoles(input.RoleIDs)
	if input.IsSuperAdmin {
		user.SetSuperAdmin(true)
	}

	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		exists, err := repos.Users().ExistsByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
		}
		if err := ensureRolesExist(ctx, repos.Roles(), user.RoleIDs); err != nil {
			return err
		}
		return repos.Users().Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	dto := ToUserDTO(user)
	return &dto, nil
}

// AssignRoles replaces the user's role assignments
func (s *UserService) AssignRoles(ctx context.Context, id uuid.UUID, roleIDs []uuid.UUID) (*UserDTO, error) {
	user, err := s.mutate(ctx, id, func(repos appshared.Repositories, user *identity.User) error {
		if err := ensureRolesExist(ctx, repos.Roles(), roleIDs); err != nil {
			return err
		}
		user.SetRoles(roleIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("User roles assigned", zap.String("user_id", id.String()), zap.Int("roles", len(user.RoleIDs)))
	dto := ToUserDTO(user)
	return &dto, nil
}

// SetOverrides replaces the user's direct permission overrides
func (s *UserService) SetOverrides(ctx context.Context, id uuid.UUID, input []OverrideDTO) (*UserDTO, error) {
	overrides, err := parseOverrides(input)
	if err != nil {
		return nil, err
	}
	user, err := s.mutate(ctx, id, func(_ appshared.Repositories, user *identity.User) error {
		return user.SetOverrides(overrides)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("User overrides set", zap.String("user_id", id.String()), zap.Int("overrides", len(user.Overrides)))
	dto := ToUserDTO(user)
	return &dto, nil
}

// Deactivate soft-disables a user and revokes their outstanding tokens.
// Users cannot deactivate themselves.
func (s *UserService) Deactivate(ctx context.Context, actorID, id uuid.UUID) (*UserDTO, error) {
	if actorID == id {
		return nil, shared.NewDomainError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account")
	}
	user, err := s.mutate(ctx, id, func(_ appshared.Repositories, user *identity.User) error {
		return user.Deactivate()
	})
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		if err := s.revoker.RevokeUser(ctx, id.String(), s.tokenTTL); err != nil {
			s.logger.Warn("Failed to revoke tokens of deactivated user", zap.String("user_id", id.String()), zap.Error(err))
		}
	}
	s.logger.Info("User deactivated", zap.String("user_id", id.String()), zap.String("actor_id", actorID.String()))
	dto := ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) mutate(ctx context.Context, id uuid.UUID, fn func(repos appshared.Repositories, user *identity.User) error) (*identity.User, error) {
	var (
		recorder appshared.EventRecorder
		result   *identity.User
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			user, err := repos.Users().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if err := fn(repos, user); err != nil {
				return err
			}
			if err := repos.Users().Save(ctx, user); err != nil {
				return err
			}
			recorder.Collect(user)
			result = user
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)
	return result, nil
}

func parseOverrides(input []OverrideDTO) ([]identity.PermissionOverride, error) {
	out := make([]identity.PermissionOverride, 0, len(input))
	for _, o := range input {
		code, err := identity.ParsePermissionCode(o.Code)
		if err != nil {
			return nil, err
		}
		out = append(out, identity.PermissionOverride{
			Code:   code,
			Effect: identity.OverrideEffect(strings.ToUpper(strings.TrimSpace(o.Effect))),
		})
	}
	return out, nil
}

func ensureRolesExist(ctx context.Context, roles identity.RoleRepository, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := roles.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(found))
	for _, r := range found {
		known[r.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return shared.NewNotFoundError("Role").WithDetail("role_id", id.String())
		}
	}
	return nil
}
