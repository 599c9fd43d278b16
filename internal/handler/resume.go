package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/yourorg/internhub/internal/infrastructure/blob"
	"github.com/yourorg/internhub/internal/security/middleware"
	"github.com/yourorg/internhub/internal/service"
)

const resumeBucket = "resumes"

var allowedResumeExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ResumeHandler handles résumé upload and download
type ResumeHandler struct {
	store          *blob.Store
	profileService *service.ProfileService
	maxBytes       int64
	logger         *slog.Logger
}

// NewResumeHandler creates a new resume handler
func NewResumeHandler(store *blob.Store, profileService *service.ProfileService, maxBytes int64, logger *slog.Logger) *ResumeHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ResumeHandler{
		store:          store,
		profileService: profileService,
		maxBytes:       maxBytes,
		logger:         logger,
	}
}

// Upload handles POST /api/intern/resume. One résumé per applicant; a new
// upload replaces the old object and the profile URL points at the latest.
func (h *ResumeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "resume exceeds the upload limit")
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedResumeExtensions[ext]; !ok {
		writeError(w, http.StatusBadRequest, "resume must be a pdf, doc, or docx file")
		return
	}

	key := fmt.Sprintf("%s%s", claims.UserID, ext)
	if err := h.store.Save(resumeBucket, key, file); err != nil {
		h.logger.Error("failed to store resume",
			slog.String("user_id", claims.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to store resume")
		return
	}

	profile, err := h.profileService.SetResumeURL(claims.UserID, h.store.PublicURL(resumeBucket, key))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.logger.Info("resume uploaded",
		slog.String("user_id", claims.UserID),
		slog.String("filename", header.Filename),
	)

	writeJSON(w, http.StatusOK, map[string]string{"resume_url": profile.ResumeURL})
}

// Serve handles GET /files/resumes/{key}
func (h *ResumeHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing file key")
		return
	}

	rc, err := h.store.Open(resumeBucket, key)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer rc.Close()

	if ct, ok := allowedResumeExtensions[strings.ToLower(filepath.Ext(key))]; ok {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Debug("resume download aborted", slog.String("error", err.Error()))
	}
}
