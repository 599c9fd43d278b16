package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/yourorg/internhub/internal/domain"
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// PostgresRoleRepository implements domain.RoleRepository using PostgreSQL
type PostgresRoleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRoleRepository creates a new role repository
func NewPostgresRoleRepository(db *sql.DB, logger *slog.Logger) *PostgresRoleRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRoleRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the role record. The user_id primary key makes the record
// write-once: a second insert surfaces as ErrRoleAlreadySet.
func (r *PostgresRoleRepository) Create(record *domain.RoleRecord) error {
	query := `
		INSERT INTO roles (user_id, role)
		VALUES ($1, $2)
		RETURNING created_at
	`

	err := r.db.QueryRow(query, record.UserID, record.Role).Scan(&record.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("role for user %s: %w", record.UserID, domain.ErrRoleAlreadySet)
		}
		r.logger.Error("failed to create role",
			slog.String("user_id", record.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create role: %w", err)
	}

	return nil
}

// GetByUserID retrieves the role record for a user
func (r *PostgresRoleRepository) GetByUserID(userID string) (*domain.RoleRecord, error) {
	record := &domain.RoleRecord{}

	query := `
		SELECT user_id, role, created_at
		FROM roles
		WHERE user_id = $1
	`

	err := r.db.QueryRow(query, userID).Scan(&record.UserID, &record.Role, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return record, nil
}
