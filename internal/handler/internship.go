package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/security/middleware"
	"github.com/yourorg/internhub/internal/service"
)

// InternshipHandler handles listing management and the public browse surface
type InternshipHandler struct {
	internshipService *service.InternshipService
	logger            *slog.Logger
}

// NewInternshipHandler creates a new internship handler
func NewInternshipHandler(internshipService *service.InternshipService, logger *slog.Logger) *InternshipHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &InternshipHandler{
		internshipService: internshipService,
		logger:            logger,
	}
}

// Create handles POST /api/internships
func (h *InternshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var input service.InternshipInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	internship, err := h.internshipService.Create(claims.UserID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, internship)
}

// ListMine handles GET /api/internships, the organization's own listings
func (h *InternshipHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	listings, err := h.internshipService.ListMine(claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

// Get handles GET /api/internships/{id}
func (h *InternshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	internship, err := h.internshipService.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, internship)
}

// Update handles PUT /api/internships/{id}
func (h *InternshipHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var input service.InternshipInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	internship, err := h.internshipService.Update(claims.UserID, r.PathValue("id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, internship)
}

// SetStatusRequest carries an activate/deactivate request
type SetStatusRequest struct {
	Status domain.InternshipStatus `json:"status"`
}

// SetStatus handles PATCH /api/internships/{id}/status
func (h *InternshipHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	internship, err := h.internshipService.SetStatus(claims.UserID, r.PathValue("id"), req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, internship)
}

// Delete handles DELETE /api/internships/{id}
func (h *InternshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	if err := h.internshipService.Delete(claims.UserID, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "internship deleted"})
}

// Browse handles GET /api/browse/internships with optional skill, location,
// and work_type query filters.
func (h *InternshipHandler) Browse(w http.ResponseWriter, r *http.Request) {
	filter := domain.BrowseFilter{
		Skill:    r.URL.Query().Get("skill"),
		Location: r.URL.Query().Get("location"),
		WorkType: r.URL.Query().Get("work_type"),
	}

	listings, err := h.internshipService.Browse(filter)
	if err != nil {
		h.logger.Error("browse failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load internships")
		return
	}

	writeJSON(w, http.StatusOK, listings)
}
