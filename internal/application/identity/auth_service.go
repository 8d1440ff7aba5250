package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// TokenService issues and validates access tokens
type TokenService interface {
	GenerateAccessToken(userID uuid.UUID, username string) (*auth.AccessToken, error)
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo    identity.UserRepository
	roleRepo    identity.RoleRepository
	resolver    *identity.PermissionResolver
	tokens      TokenService
	revocations auth.RevocationStore
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new auth service. revocations may be nil, in which case
// logout only succeeds client-side and tokens stay valid until they expire.
func NewAuthService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	tokens TokenService,
	revocations auth.RevocationStore,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		resolver:    identity.NewPermissionResolver(),
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
		now:         time.Now,
	}
}

// ErrInvalidCredentials is returned for an unknown username or a wrong password
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := identity.NormalizeUsername(input.Username)
	s.logger.Info("Login attempt", zap.String("username", username), zap.String("ip", input.IP))

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("username", username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Login failed: invalid password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		s.logger.Warn("Login failed: user deactivated", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("USER_DEACTIVATED", "User account is deactivated")
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, err
	}

	principal, err := s.principalFor(ctx, user)
	if err != nil {
		return nil, err
	}
	principal.TokenID = token.TokenID
	principal.TokenExpiry = token.ExpiresAt

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.Int("permissions", len(principal.Permissions.Allowed)))

	return &LoginResult{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		Principal:   ToPrincipalDTO(principal),
	}, nil
}

// Authenticate validates a bearer token and resolves the principal behind it.
// Permissions are resolved from storage on every call.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := s.tokens.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, shared.ErrUnauthorized.WithDetail("reason", err.Error())
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, shared.ErrUnauthorized.WithDetail("reason", auth.ErrTokenRevoked.Error())
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.ErrUnauthorized.WithDetail("reason", auth.ErrMissingUserID.Error())
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, shared.ErrUnauthorized.WithDetail("reason", "user deactivated")
	}

	principal, err := s.principalFor(ctx, user)
	if err != nil {
		return nil, err
	}
	principal.TokenID = claims.ID
	if claims.ExpiresAt != nil {
		principal.TokenExpiry = claims.ExpiresAt.Time
	}
	return principal, nil
}

// Logout revokes the principal's current token
func (s *AuthService) Logout(ctx context.Context, principal *Principal) error {
	if s.revocations == nil || principal.TokenID == "" {
		return nil
	}
	ttl := principal.TokenExpiry.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.RevokeToken(ctx, principal.TokenID, ttl); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("user_id", principal.ID().String()), zap.Error(err))
		return err
	}
	s.logger.Info("User logged out", zap.String("user_id", principal.ID().String()))
	return nil
}

func (s *AuthService) principalFor(ctx context.Context, user *identity.User) (*Principal, error) {
	roles, err := s.roleRepo.FindByIDs(ctx, user.RoleIDs)
	if err != nil {
		return nil, err
	}
	return &Principal{
		User:        user,
		Roles:       roles,
		Permissions: s.resolver.Resolve(user, roles),
	}, nil
}
