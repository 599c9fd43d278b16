package service

import (
	"errors"
	"testing"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/security/auth"
)

func newTestAuthService(requireConfirmation bool, adminEmails ...string) (*AuthService, *memUserRepo, *memRoleRepo) {
	users := newMemUserRepo()
	roles := newMemRoleRepo()
	tokens := auth.NewTokenManager("test-secret", "internhub-test")
	return NewAuthService(users, roles, tokens, requireConfirmation, adminEmails, nil), users, roles
}

func TestRegisterAndLogin(t *testing.T) {
	s, _, _ := newTestAuthService(false)

	r, err := s.Register("alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if r.UserID == "" || r.Token == "" {
		t.Fatalf("expected user id and token")
	}
	if r.Role != "" {
		t.Fatalf("expected no role on a fresh account, got %q", r.Role)
	}

	// Duplicate email
	if _, err := s.Register("alice@example.com", "Password123"); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	lr, err := s.Login("alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.Token == "" {
		t.Fatalf("expected token on login")
	}

	if _, err := s.Login("alice@example.com", "Wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := s.Login("nobody@example.com", "Password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestLoginRequiresConfirmedEmail(t *testing.T) {
	s, _, _ := newTestAuthService(true)

	r, err := s.Register("carol@example.com", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := s.Login("carol@example.com", "Password123"); !errors.Is(err, domain.ErrEmailNotConfirmed) {
		t.Fatalf("expected unconfirmed email error, got %v", err)
	}

	if err := s.ConfirmEmail(r.UserID); err != nil {
		t.Fatalf("confirm email failed: %v", err)
	}
	// Idempotent
	if err := s.ConfirmEmail(r.UserID); err != nil {
		t.Fatalf("second confirm failed: %v", err)
	}

	if _, err := s.Login("carol@example.com", "Password123"); err != nil {
		t.Fatalf("login after confirmation failed: %v", err)
	}
}

func TestSelectRoleIsWriteOnce(t *testing.T) {
	s, _, _ := newTestAuthService(false)

	r, err := s.Register("dave@example.com", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	session, err := s.SelectRole(r.UserID, domain.RoleIntern)
	if err != nil {
		t.Fatalf("select role failed: %v", err)
	}
	if session.Role != domain.RoleIntern {
		t.Fatalf("expected intern role, got %q", session.Role)
	}
	if session.Token == r.Token {
		t.Fatalf("expected a re-issued token carrying the role claim")
	}

	// Second selection must fail, even with the same role
	if _, err := s.SelectRole(r.UserID, domain.RoleOrganization); !errors.Is(err, domain.ErrRoleAlreadySet) {
		t.Fatalf("expected role-already-set error, got %v", err)
	}
	if _, err := s.SelectRole(r.UserID, domain.RoleIntern); !errors.Is(err, domain.ErrRoleAlreadySet) {
		t.Fatalf("expected role-already-set error on repeat, got %v", err)
	}

	if _, err := s.SelectRole(r.UserID, "superuser"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected unknown role to be rejected, got %v", err)
	}
}

func TestSelectRoleAdminNotSelfServe(t *testing.T) {
	s, _, roles := newTestAuthService(false)

	r, err := s.Register("mallory@example.com", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Without an allowlist, no account can take the admin role
	if _, err := s.SelectRole(r.UserID, domain.RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for self-selected admin, got %v", err)
	}
	if _, err := roles.GetByUserID(r.UserID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no role record after denied selection")
	}

	// The denied account can still onboard normally
	if _, err := s.SelectRole(r.UserID, domain.RoleIntern); err != nil {
		t.Fatalf("intern selection after denial failed: %v", err)
	}
}

func TestSelectRoleAdminAllowlist(t *testing.T) {
	s, _, _ := newTestAuthService(false, "Root@Example.com")

	r, err := s.Register("root@example.com", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Allowlist comparison is case-insensitive
	session, err := s.SelectRole(r.UserID, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("allowlisted admin selection failed: %v", err)
	}
	if session.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", session.Role)
	}

	other, err := s.Register("other@example.com", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := s.SelectRole(other.UserID, domain.RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for account off the allowlist, got %v", err)
	}
}

func TestCurrentSessionPicksUpRole(t *testing.T) {
	s, _, _ := newTestAuthService(false)

	r, err := s.Register("erin@example.com", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	session, err := s.CurrentSession(r.UserID)
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if session.Role != "" {
		t.Fatalf("expected no role before selection")
	}

	if _, err := s.SelectRole(r.UserID, domain.RoleOrganization); err != nil {
		t.Fatalf("select role failed: %v", err)
	}

	session, err = s.CurrentSession(r.UserID)
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if session.Role != domain.RoleOrganization {
		t.Fatalf("expected organization role, got %q", session.Role)
	}
}

func TestChangePassword(t *testing.T) {
	s, _, _ := newTestAuthService(false)
	reg, err := s.Register("bob@example.com", "OldPass123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := s.ChangePassword(reg.UserID, "bad", "NewPass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected wrong old password error, got %v", err)
	}
	if err := s.ChangePassword(reg.UserID, "OldPass123", "NewPass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := s.Login("bob@example.com", "OldPass123"); err == nil {
		t.Fatalf("expected old password to fail after change")
	}
	if _, err := s.Login("bob@example.com", "NewPass123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	s, users, _ := newTestAuthService(false)
	reg, err := s.Register("frank@example.com", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := s.DeleteAccount(reg.UserID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := users.GetByID(reg.UserID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected account gone, got %v", err)
	}
	if err := s.DeleteAccount(reg.UserID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}
