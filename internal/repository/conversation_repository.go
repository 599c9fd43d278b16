package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/internhub/internal/domain"
)

// PostgresConversationRepository implements domain.ConversationRepository
type PostgresConversationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresConversationRepository creates a new conversation repository
func NewPostgresConversationRepository(db *sql.DB, logger *slog.Logger) *PostgresConversationRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresConversationRepository{
		db:     db,
		logger: logger,
	}
}

// orderPair normalizes an unordered participant pair so the same two users
// always address the same row.
func orderPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// GetOrCreate returns the conversation between two users, inserting it if
// absent. ON CONFLICT handles the race where both parties open the thread at
// once.
func (r *PostgresConversationRepository) GetOrCreate(participant1ID, participant2ID string) (*domain.Conversation, error) {
	p1, p2 := orderPair(participant1ID, participant2ID)

	query := `
		INSERT INTO conversations (id, participant1_id, participant2_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (participant1_id, participant2_id)
		DO UPDATE SET updated_at = conversations.updated_at
		RETURNING id, participant1_id, participant2_id, created_at, updated_at
	`

	c := &domain.Conversation{}
	err := r.db.QueryRow(query, uuid.NewString(), p1, p2).Scan(
		&c.ID,
		&c.Participant1ID,
		&c.Participant2ID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to get or create conversation",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get or create conversation: %w", err)
	}

	return c, nil
}

// GetByID retrieves a conversation by id
func (r *PostgresConversationRepository) GetByID(id string) (*domain.Conversation, error) {
	query := `
		SELECT id, participant1_id, participant2_id, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`

	c := &domain.Conversation{}
	err := r.db.QueryRow(query, id).Scan(
		&c.ID,
		&c.Participant1ID,
		&c.Participant2ID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("conversation: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return c, nil
}

// ListByParticipant lists a user's conversations, most recently active first
func (r *PostgresConversationRepository) ListByParticipant(userID string) ([]*domain.Conversation, error) {
	query := `
		SELECT id, participant1_id, participant2_id, created_at, updated_at
		FROM conversations
		WHERE participant1_id = $1 OR participant2_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*domain.Conversation
	for rows.Next() {
		c := &domain.Conversation{}
		err := rows.Scan(
			&c.ID,
			&c.Participant1ID,
			&c.Participant2ID,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}

	return conversations, rows.Err()
}

// Touch bumps updated_at for inbox ordering
func (r *PostgresConversationRepository) Touch(id string, at time.Time) error {
	if _, err := r.db.Exec(`UPDATE conversations SET updated_at = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

// PostgresMessageRepository implements domain.MessageRepository
type PostgresMessageRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresMessageRepository creates a new message repository
func NewPostgresMessageRepository(db *sql.DB, logger *slog.Logger) *PostgresMessageRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMessageRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a message; messages are immutable once written
func (r *PostgresMessageRepository) Create(m *domain.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRow(query, m.ID, m.ConversationID, m.SenderID, m.Content).Scan(&m.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create message",
			slog.String("conversation_id", m.ConversationID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListByConversation returns messages oldest first, capped at limit
func (r *PostgresMessageRepository) ListByConversation(conversationID string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = 200
	}

	query := `
		SELECT id, conversation_id, sender_id, content, created_at, read_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.db.Query(query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.SenderID,
			&m.Content,
			&m.CreatedAt,
			&m.ReadAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// MarkRead stamps read_at on messages the reader received but has not read
func (r *PostgresMessageRepository) MarkRead(conversationID, readerID string, at time.Time) (int, error) {
	result, err := r.db.Exec(`
		UPDATE messages
		SET read_at = $1
		WHERE conversation_id = $2 AND sender_id <> $3 AND read_at IS NULL
	`, at, conversationID, readerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return int(rows), nil
}
