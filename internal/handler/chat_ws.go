package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourorg/internhub/internal/security/middleware"
	"github.com/yourorg/internhub/internal/service"
)

// ChatFeedHandler streams new messages of one conversation over WebSocket.
// The feed only carries inserts made after the socket opened; history comes
// from the REST listing.
type ChatFeedHandler struct {
	messagingService *service.MessagingService
	logger           *slog.Logger
	allowedOrigins   []string
}

// NewChatFeedHandler creates a new chat feed handler
func NewChatFeedHandler(messagingService *service.MessagingService, logger *slog.Logger, allowedOrigins []string) *ChatFeedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChatFeedHandler{
		messagingService: messagingService,
		logger:           logger,
		allowedOrigins:   allowedOrigins,
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *ChatFeedHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/conversations/{id}
func (h *ChatFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID := r.PathValue("id")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "missing conversation id")
		return
	}

	// Membership check before the upgrade so a stranger gets a clean 403
	sub, err := h.messagingService.Subscribe(claims.UserID, conversationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer sub.Close()

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	h.logger.Debug("chat feed opened",
		slog.String("conversation_id", conversationID),
		slog.String("user_id", claims.UserID),
	)

	// Drain the reader so close frames and pongs are processed
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(15 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-clientGone:
			return
		case <-pingTicker.C:
			if err := ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case msg, ok := <-sub.Messages():
			if !ok {
				// Dropped as a slow subscriber; the client reconnects and
				// refetches over REST.
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "feed lagged"),
					time.Now().Add(5*time.Second))
				return
			}
			if err := ws.WriteJSON(msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("websocket closed", slog.String("conversation_id", conversationID))
				}
				return
			}
		}
	}
}
