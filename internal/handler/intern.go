package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/internhub/internal/security/middleware"
	"github.com/yourorg/internhub/internal/service"
)

// InternHandler handles the applicant's own profile endpoints
type InternHandler struct {
	profileService *service.ProfileService
	logger         *slog.Logger
}

// NewInternHandler creates a new intern handler
func NewInternHandler(profileService *service.ProfileService, logger *slog.Logger) *InternHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &InternHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// CreateProfile handles POST /api/intern/profile
func (h *InternHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var input service.InternProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	profile, err := h.profileService.CreateInternProfile(claims.UserID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

// GetProfile handles GET /api/intern/profile
func (h *InternHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	profile, err := h.profileService.GetInternProfile(claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/intern/profile
func (h *InternHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var input service.InternProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	profile, err := h.profileService.UpdateInternProfile(claims.UserID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
