package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"avodah/internal/auth"
	apperrors "avodah/internal/errors"
	"avodah/internal/model"
	"avodah/internal/rbac"
	"avodah/internal/repository"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  *model.User
	Role  string
	Token string
}

// AuthService handles authentication and role authorization.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	WhoAmI(ctx context.Context, token string) (*model.User, error)
	ResetPassword(ctx context.Context, actorToken, targetEmail, newPassword string) error
	AssignRole(ctx context.Context, actorToken, targetEmail, roleName string) error
	TokenTTL() time.Duration
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	hasher     *auth.PasswordHasher
	tokenStore auth.TokenStoreInterface
	tokenTTL   time.Duration
}

// NewAuthService creates a new authentication service. A non-positive
// tokenTTL falls back to auth.DefaultTokenTTL.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	hasher *auth.PasswordHasher,
	tokenStore auth.TokenStoreInterface,
	tokenTTL time.Duration,
) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = auth.DefaultTokenTTL
	}
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		hasher:     hasher,
		tokenStore: tokenStore,
		tokenTTL:   tokenTTL,
	}
}

func (s *authService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register creates a member account with a hashed password.
func (s *authService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, apperrors.ErrMissingFields
	}

	// Fast-path rejection only; the unique indexes decide under concurrency.
	_, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	user.SetRank(rbac.Default)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperrors.ErrMissingFields
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if password == "" {
		return nil, apperrors.ErrMissingFields
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidPassword
	}

	role := user.RoleRank.Label()
	token, err := s.jwtService.Issue(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     role,
		RoleRank: user.RoleRank,
	}, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{User: user, Role: role, Token: token}, nil
}

// Logout revokes the presented token when it is still valid. Missing or
// invalid tokens are ignored; only a failed revocation is reported. The
// caller clears the cookie either way.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.Verify(token)
	if err != nil {
		return nil
	}
	if err := s.tokenStore.Revoke(ctx, claims.RegisteredClaims.ID, claims.TTL(time.Now())); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// WhoAmI returns the session owner as currently stored, not as embedded in the token.
func (s *authService) WhoAmI(ctx context.Context, token string) (*model.User, error) {
	user, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword replaces another user's password. Only the top rank may do it.
func (s *authService) ResetPassword(ctx context.Context, actorToken, targetEmail, newPassword string) error {
	actor, err := s.actor(ctx, actorToken)
	if err != nil {
		return err
	}
	if !rbac.CanResetPassword(actor.RoleRank) {
		return apperrors.ErrPermissionDenied
	}

	if strings.TrimSpace(targetEmail) == "" || newPassword == "" {
		return apperrors.ErrMissingFields
	}

	target, err := s.userRepo.FindByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("find target user: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(ctx, target.ID, map[string]interface{}{
		"password": hash,
	}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// AssignRole sets another user's role. Label and rank are written together.
func (s *authService) AssignRole(ctx context.Context, actorToken, targetEmail, roleName string) error {
	actor, err := s.actor(ctx, actorToken)
	if err != nil {
		return err
	}
	if !rbac.CanManageRoles(actor.RoleRank) {
		return apperrors.ErrPermissionDenied
	}

	if strings.TrimSpace(targetEmail) == "" || strings.TrimSpace(roleName) == "" {
		return apperrors.ErrMissingFields
	}

	target, err := s.userRepo.FindByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("find target user: %w", err)
	}

	rank, ok := rbac.Lookup(roleName)
	if !ok {
		return apperrors.ErrInvalidRole
	}
	if !rbac.CanAssign(actor.RoleRank, rank) {
		return apperrors.ErrPermissionDenied
	}

	if err := s.userRepo.UpdateFields(ctx, target.ID, map[string]interface{}{
		"role":          rank.Label(),
		"role_position": int(rank),
	}); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

// authenticate verifies the token and re-reads its owner from the store.
func (s *authService) authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtService.Verify(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.tokenStore.IsRevoked(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserUUID())
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find session user: %w", err)
	}
	return user, nil
}

// actor resolves the caller of a privileged operation. An actor whose
// account vanished is treated as lacking permission.
func (s *authService) actor(ctx context.Context, token string) (*model.User, error) {
	user, err := s.authenticate(ctx, token)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, apperrors.ErrPermissionDenied
	}
	return user, err
}
