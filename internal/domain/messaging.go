package domain

import "time"

// Conversation is a two-party thread. Participants are stored as a normalized
// pair (lexicographically smaller id first) so the same two users always map
// to the same row. UpdatedAt is bumped on every message for inbox ordering.
type Conversation struct {
	ID             string // UUID
	Participant1ID string
	Participant2ID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasParticipant reports whether userID is one of the two parties
func (c *Conversation) HasParticipant(userID string) bool {
	return c.Participant1ID == userID || c.Participant2ID == userID
}

// Message is immutable once created; ReadAt stays nil until the recipient
// marks the thread read.
type Message struct {
	ID             string // UUID
	ConversationID string
	SenderID       string
	Content        string
	CreatedAt      time.Time
	ReadAt         *time.Time
}

// ConversationRepository defines data access for conversations
type ConversationRepository interface {
	// GetOrCreate returns the existing conversation for the pair or inserts one.
	GetOrCreate(participant1ID, participant2ID string) (*Conversation, error)
	GetByID(id string) (*Conversation, error)
	ListByParticipant(userID string) ([]*Conversation, error)
	Touch(id string, at time.Time) error
}

// MessageRepository defines data access for messages
type MessageRepository interface {
	Create(message *Message) error
	ListByConversation(conversationID string, limit int) ([]*Message, error)
	// MarkRead sets read_at on unread messages sent to readerID and returns
	// how many rows changed.
	MarkRead(conversationID, readerID string, at time.Time) (int, error)
}
