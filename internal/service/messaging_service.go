package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/realtime"
)

const maxMessageLength = 4000

// MessagingService runs two-party conversations with realtime delivery.
// Sends persist first, then fan out: a message is never visible live that is
// not also in storage.
type MessagingService struct {
	convRepo domain.ConversationRepository
	msgRepo  domain.MessageRepository
	userRepo domain.UserRepository
	hub      *realtime.Hub
	fanout   *realtime.Fanout
	logger   *slog.Logger
}

// NewMessagingService creates a new messaging service. fanout may be nil when
// cross-instance delivery is disabled.
func NewMessagingService(
	convRepo domain.ConversationRepository,
	msgRepo domain.MessageRepository,
	userRepo domain.UserRepository,
	hub *realtime.Hub,
	fanout *realtime.Fanout,
	logger *slog.Logger,
) *MessagingService {
	if logger == nil {
		logger = slog.Default()
	}

	return &MessagingService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		userRepo: userRepo,
		hub:      hub,
		fanout:   fanout,
		logger:   logger,
	}
}

// Open returns the conversation between the caller and another user,
// creating it on first contact.
func (s *MessagingService) Open(userID, otherUserID string) (*domain.Conversation, error) {
	if otherUserID == "" || otherUserID == userID {
		return nil, domain.Validationf("a conversation needs two distinct participants")
	}

	if _, err := s.userRepo.GetByID(otherUserID); err != nil {
		return nil, fmt.Errorf("failed to resolve participant: %w", err)
	}

	conversation, err := s.convRepo.GetOrCreate(userID, otherUserID)
	if err != nil {
		return nil, err
	}

	return conversation, nil
}

// Send persists a message and delivers it to live subscribers. Only a
// participant of the conversation may send into it.
func (s *MessagingService) Send(ctx context.Context, senderID, conversationID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.Validationf("message content is required")
	}
	if len(content) > maxMessageLength {
		return nil, domain.Validationf("message exceeds %d characters", maxMessageLength)
	}

	conversation, err := s.convRepo.GetByID(conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, fmt.Errorf("not a participant of this conversation: %w", domain.ErrForbidden)
	}

	message := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}

	if err := s.msgRepo.Create(message); err != nil {
		return nil, err
	}

	if err := s.convRepo.Touch(conversationID, message.CreatedAt); err != nil {
		s.logger.Warn("failed to bump conversation",
			slog.String("conversation_id", conversationID),
			slog.String("error", err.Error()),
		)
	}

	s.hub.Publish(*message)
	if s.fanout != nil {
		s.fanout.Publish(ctx, *message)
	}

	return message, nil
}

// ListConversations returns the caller's inbox, most recently active first
func (s *MessagingService) ListConversations(userID string) ([]*domain.Conversation, error) {
	return s.convRepo.ListByParticipant(userID)
}

// ListMessages returns a conversation's history, oldest first. Only a
// participant may read it.
func (s *MessagingService) ListMessages(userID, conversationID string, limit int) ([]*domain.Message, error) {
	conversation, err := s.convRepo.GetByID(conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, fmt.Errorf("not a participant of this conversation: %w", domain.ErrForbidden)
	}

	return s.msgRepo.ListByConversation(conversationID, limit)
}

// MarkRead stamps the caller's unread messages in a conversation and returns
// how many were marked.
func (s *MessagingService) MarkRead(userID, conversationID string) (int, error) {
	conversation, err := s.convRepo.GetByID(conversationID)
	if err != nil {
		return 0, err
	}
	if !conversation.HasParticipant(userID) {
		return 0, fmt.Errorf("not a participant of this conversation: %w", domain.ErrForbidden)
	}

	return s.msgRepo.MarkRead(conversationID, userID, time.Now())
}

// Subscribe opens a live feed on a conversation after verifying membership
func (s *MessagingService) Subscribe(userID, conversationID string) (*realtime.Subscription, error) {
	conversation, err := s.convRepo.GetByID(conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, fmt.Errorf("not a participant of this conversation: %w", domain.ErrForbidden)
	}

	return s.hub.Subscribe(conversationID), nil
}
