package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/internhub/internal/security/middleware"
	"github.com/yourorg/internhub/internal/service"
)

// MessagingHandler handles the conversation and message endpoints
type MessagingHandler struct {
	messagingService *service.MessagingService
	logger           *slog.Logger
}

// NewMessagingHandler creates a new messaging handler
func NewMessagingHandler(messagingService *service.MessagingService, logger *slog.Logger) *MessagingHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &MessagingHandler{
		messagingService: messagingService,
		logger:           logger,
	}
}

// OpenRequest starts (or resumes) a conversation with another user
type OpenRequest struct {
	UserID string `json:"user_id"`
}

// Open handles POST /api/conversations
func (h *MessagingHandler) Open(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	conversation, err := h.messagingService.Open(claims.UserID, req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conversation)
}

// List handles GET /api/conversations
func (h *MessagingHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	conversations, err := h.messagingService.ListConversations(claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conversations)
}

// ListMessages handles GET /api/conversations/{id}/messages
func (h *MessagingHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	messages, err := h.messagingService.ListMessages(claims.UserID, r.PathValue("id"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// SendRequest carries the message body
type SendRequest struct {
	Content string `json:"content"`
}

// Send handles POST /api/conversations/{id}/messages
func (h *MessagingHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	message, err := h.messagingService.Send(r.Context(), claims.UserID, r.PathValue("id"), req.Content)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

// MarkRead handles POST /api/conversations/{id}/read
func (h *MessagingHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	marked, err := h.messagingService.MarkRead(claims.UserID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}
