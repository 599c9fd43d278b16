package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/security/auth"
)

const tokenTTL = 24 * time.Hour

// AuthService handles account lifecycle and token issuance
type AuthService struct {
	userRepo                 domain.UserRepository
	roleRepo                 domain.RoleRepository
	tokens                   *auth.TokenManager
	requireEmailConfirmation bool
	adminEmails              map[string]bool
	logger                   *slog.Logger
}

// NewAuthService creates a new authentication service. adminEmails is the
// bootstrap allowlist: only those accounts may take the admin role.
func NewAuthService(
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	tokens *auth.TokenManager,
	requireEmailConfirmation bool,
	adminEmails []string,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			allowed[email] = true
		}
	}

	return &AuthService{
		userRepo:                 userRepo,
		roleRepo:                 roleRepo,
		tokens:                   tokens,
		requireEmailConfirmation: requireEmailConfirmation,
		adminEmails:              allowed,
		logger:                   logger,
	}
}

// Session describes the caller's resolved identity: account plus role, with
// role absent until onboarding completes.
type Session struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role,omitempty"`
	Token  string      `json:"token"`
}

// Register creates a new user account. The account starts with no role; the
// caller is sent to role selection next.
func (s *AuthService) Register(email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, domain.Validationf("email and password are required")
	}
	if len(password) < 8 {
		return nil, domain.Validationf("password must be at least 8 characters")
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("email: %w", domain.ErrAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("email: %w", domain.ErrAlreadyExists)
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, "", tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))

	return &Session{UserID: user.ID, Email: user.Email, Token: token}, nil
}

// Login authenticates a user. A deactivated account or wrong password both
// resolve to the same invalid-credentials error so the response does not leak
// which one it was.
func (s *AuthService) Login(email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		s.logger.Info("login attempt with unknown email", slog.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Info("login attempt on deactivated account", slog.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		return nil, domain.ErrInvalidCredentials
	}

	if s.requireEmailConfirmation && !user.EmailConfirmed {
		return nil, domain.ErrEmailNotConfirmed
	}

	role := s.resolveRole(user.ID)

	token, err := s.tokens.GenerateToken(user.ID, user.Email, role, tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to log in")
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
	)

	return &Session{UserID: user.ID, Email: user.Email, Role: role, Token: token}, nil
}

// SelectRole binds a role to a freshly registered account. The binding is
// write-once: a second selection fails instead of silently overwriting. The
// admin role is not self-serve; it is granted only to accounts on the
// bootstrap allowlist. On success a new token carrying the role claim is
// issued.
func (s *AuthService) SelectRole(userID string, role domain.Role) (*Session, error) {
	if !role.Valid() {
		return nil, domain.Validationf("unknown role %q", role)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if role == domain.RoleAdmin && !s.adminEmails[strings.ToLower(user.Email)] {
		s.logger.Warn("admin role selection denied",
			slog.String("user_id", userID),
			slog.String("email", user.Email),
		)
		return nil, fmt.Errorf("admin role is not self-serve: %w", domain.ErrForbidden)
	}

	record := &domain.RoleRecord{UserID: userID, Role: role}
	if err := s.roleRepo.Create(record); err != nil {
		if errors.Is(err, domain.ErrRoleAlreadySet) {
			return nil, domain.ErrRoleAlreadySet
		}
		s.logger.Error("failed to store role",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to set role")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, role, tokenTTL)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to set role")
	}

	s.logger.Info("role selected",
		slog.String("user_id", userID),
		slog.String("role", string(role)),
	)

	return &Session{UserID: user.ID, Email: user.Email, Role: role, Token: token}, nil
}

// CurrentSession re-resolves identity and role from storage, re-issuing a
// token so a role granted after the current token was minted takes effect.
func (s *AuthService) CurrentSession(userID string) (*Session, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	role := s.resolveRole(user.ID)

	token, err := s.tokens.GenerateToken(user.ID, user.Email, role, tokenTTL)
	if err != nil {
		return nil, errors.New("failed to refresh session")
	}

	return &Session{UserID: user.ID, Email: user.Email, Role: role, Token: token}, nil
}

// ConfirmEmail marks the account's email as verified
func (s *AuthService) ConfirmEmail(userID string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.EmailConfirmed {
		return nil
	}

	user.EmailConfirmed = true
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("failed to confirm email",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return errors.New("failed to confirm email")
	}

	s.logger.Info("email confirmed", slog.String("user_id", userID))
	return nil
}

// ChangePassword rotates a user's password after verifying the current one
func (s *AuthService) ChangePassword(userID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.Validationf("new password must be at least 8 characters")
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.String("error", err.Error()))
		return errors.New("failed to change password")
	}

	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("failed to update password", slog.String("error", err.Error()))
		return errors.New("failed to change password")
	}

	s.logger.Info("user changed password", slog.String("user_id", userID))
	return nil
}

// DeleteAccount removes the account. Role, profiles, listings, applications
// and messages go with it through the storage cascade.
func (s *AuthService) DeleteAccount(userID string) error {
	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete account",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return errors.New("failed to delete account")
	}

	s.logger.Info("account deleted", slog.String("user_id", userID))
	return nil
}

// ListUsers returns all accounts, for the admin user list
func (s *AuthService) ListUsers() ([]*domain.User, error) {
	return s.userRepo.List()
}

func (s *AuthService) resolveRole(userID string) domain.Role {
	record, err := s.roleRepo.GetByUserID(userID)
	if err != nil {
		return ""
	}
	return record.Role
}
