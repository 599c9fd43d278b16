package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/security/middleware"
	"github.com/yourorg/internhub/internal/service"
)

// ApplicationHandler handles the application workflow endpoints
type ApplicationHandler struct {
	applicationService *service.ApplicationService
	logger             *slog.Logger
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationService *service.ApplicationService, logger *slog.Logger) *ApplicationHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ApplicationHandler{
		applicationService: applicationService,
		logger:             logger,
	}
}

// ApplyRequest represents an application submission
type ApplyRequest struct {
	InternshipID string `json:"internship_id"`
	CoverLetter  string `json:"cover_letter"`
}

// Apply handles POST /api/applications
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.InternshipID == "" {
		writeError(w, http.StatusBadRequest, "internship_id is required")
		return
	}

	application, err := h.applicationService.Apply(r.Context(), claims.UserID, req.InternshipID, req.CoverLetter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, application)
}

// ListMine handles GET /api/applications, the applicant's own applications
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	applications, err := h.applicationService.ListMine(claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, applications)
}

// Withdraw handles POST /api/applications/{id}/withdraw
func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	application, err := h.applicationService.Withdraw(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, application)
}

// ListReceived handles GET /api/organization/applications with an optional
// internship_id query filter.
func (h *ApplicationHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	applications, err := h.applicationService.ListForOrganization(claims.UserID, r.URL.Query().Get("internship_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, applications)
}

// UpdateStatusRequest represents a review decision
type UpdateStatusRequest struct {
	Status domain.ApplicationStatus `json:"status"`
}

// UpdateStatus handles PATCH /api/applications/{id}/status
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	application, err := h.applicationService.UpdateStatus(r.Context(), claims.UserID, r.PathValue("id"), req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, application)
}

// Stats handles GET /api/organization/applications/stats, the dashboard
// per-status counters.
func (h *ApplicationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	counts, err := h.applicationService.Stats(claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, counts)
}
