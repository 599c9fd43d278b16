package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/security/middleware"
	"github.com/yourorg/internhub/internal/service"
)

// AuthHandler handles authentication and onboarding endpoints
type AuthHandler struct {
	authService    *service.AuthService
	profileService *service.ProfileService
	logger         *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, profileService *service.ProfileService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
		logger:         logger,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode register request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := h.authService.Register(req.Email, req.Password)
	if err != nil {
		h.logger.Info("registration failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	session, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		// Unconfirmed email is not a credentials failure; tell the client
		// where to send the user instead of a bare denial.
		if errors.Is(err, domain.ErrEmailNotConfirmed) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    err.Error(),
				"redirect": "/auth/resend-confirmation",
			})
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// SelectRoleRequest represents the onboarding role choice
type SelectRoleRequest struct {
	Role domain.Role `json:"role"`
}

// SelectRoleResponse carries the re-issued session plus where to go next
type SelectRoleResponse struct {
	*service.Session
	Next string `json:"next"`
}

// SelectRole handles POST /api/auth/role
func (h *AuthHandler) SelectRole(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SelectRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	session, err := h.authService.SelectRole(claims.UserID, req.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	next, err := h.profileService.OnboardingTarget(claims.UserID, session.Role)
	if err != nil {
		h.logger.Warn("failed to resolve onboarding target", slog.String("error", err.Error()))
		next = ""
	}

	writeJSON(w, http.StatusCreated, SelectRoleResponse{Session: session, Next: next})
}

// MeResponse is the session summary returned to the client shell
type MeResponse struct {
	*service.Session
	Next string `json:"next,omitempty"`
}

// Me handles GET /api/auth/me. It re-resolves the role from storage and
// reports where the client should navigate, so a stale token self-corrects.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.authService.CurrentSession(claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	next := ""
	if session.Role != "" {
		next, err = h.profileService.OnboardingTarget(claims.UserID, session.Role)
		if err != nil {
			h.logger.Warn("failed to resolve onboarding target", slog.String("error", err.Error()))
			next = ""
		}
	}

	writeJSON(w, http.StatusOK, MeResponse{Session: session, Next: next})
}

// ConfirmEmail handles POST /api/auth/confirm-email
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.authService.ConfirmEmail(claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "email confirmed"})
}

// ChangePasswordRequest represents change password request
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "oldPassword and newPassword are required")
		return
	}

	if err := h.authService.ChangePassword(claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}

	h.logger.Info("user changed password", slog.String("user_id", claims.UserID))
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

// DeleteAccount handles DELETE /api/auth/account
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.authService.DeleteAccount(claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
