package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/security"
	"github.com/yourorg/internhub/internal/security/middleware"
	"github.com/yourorg/internhub/internal/service"
)

// AdminHandler handles the admin review queue and user administration
type AdminHandler struct {
	approvalService *service.ApprovalService
	authService     *service.AuthService
	authz           *security.AuthorizationService
	logger          *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(approvalService *service.ApprovalService, authService *service.AuthService, authz *security.AuthorizationService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AdminHandler{
		approvalService: approvalService,
		authService:     authService,
		authz:           authz,
		logger:          logger,
	}
}

// ListOrganizations handles GET /api/admin/organizations. The status query
// defaults to pending, the review queue.
func (h *AdminHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	status := domain.ApprovalStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.ApprovalPending
	}
	if status != domain.ApprovalPending && status != domain.ApprovalApproved && status != domain.ApprovalRejected {
		writeError(w, http.StatusBadRequest, "unknown approval status")
		return
	}

	profiles, err := h.approvalService.ListByStatus(status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

// ApprovalRequest carries the review decision
type ApprovalRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

// Decide handles POST /api/admin/organizations/{id}/approval
func (h *AdminHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	organizationID := r.PathValue("id")

	// The guard resolved the role from storage; the token's role claim may
	// predate role selection.
	if err := h.authz.ValidatePermission(middleware.GetRoleFromContext(r.Context()), security.PermApproveOrgs); err != nil {
		writeDomainError(w, err)
		return
	}

	var req ApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	var (
		profile *domain.OrganizationProfile
		err     error
	)
	switch req.Decision {
	case "approve":
		profile, err = h.approvalService.Approve(r.Context(), claims.UserID, organizationID)
	case "reject":
		profile, err = h.approvalService.Reject(r.Context(), claims.UserID, organizationID, req.Reason)
	default:
		writeError(w, http.StatusBadRequest, "decision must be approve or reject")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UserSummary is the admin-facing account view; no password hash leaves the
// server.
type UserSummary struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
	IsActive       bool   `json:"is_active"`
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.authz.ValidatePermission(middleware.GetRoleFromContext(r.Context()), security.PermManageUsers); err != nil {
		writeDomainError(w, err)
		return
	}

	users, err := h.authService.ListUsers()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{
			ID:             u.ID,
			Email:          u.Email,
			EmailConfirmed: u.EmailConfirmed,
			IsActive:       u.IsActive,
		})
	}

	writeJSON(w, http.StatusOK, out)
}
