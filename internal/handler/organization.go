package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/internhub/internal/security/middleware"
	"github.com/yourorg/internhub/internal/service"
)

// OrganizationHandler handles the organization's own profile endpoints
type OrganizationHandler struct {
	profileService *service.ProfileService
	logger         *slog.Logger
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(profileService *service.ProfileService, logger *slog.Logger) *OrganizationHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OrganizationHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// CreateProfile handles POST /api/organization/profile
func (h *OrganizationHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var input service.OrganizationProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	profile, err := h.profileService.CreateOrganizationProfile(claims.UserID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

// GetProfile handles GET /api/organization/profile. The response includes the
// approval status and, when rejected, the admin's reason.
func (h *OrganizationHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	profile, err := h.profileService.GetOrganizationProfile(claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/organization/profile
func (h *OrganizationHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var input service.OrganizationProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	profile, err := h.profileService.UpdateOrganizationProfile(claims.UserID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
