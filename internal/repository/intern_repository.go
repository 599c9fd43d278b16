package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/yourorg/internhub/internal/domain"
)

// PostgresInternRepository implements domain.InternRepository
type PostgresInternRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresInternRepository creates a new intern profile repository
func NewPostgresInternRepository(db *sql.DB, logger *slog.Logger) *PostgresInternRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInternRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new intern profile
func (r *PostgresInternRepository) Create(profile *domain.InternProfile) error {
	query := `
		INSERT INTO intern_profiles
			(id, user_id, full_name, education_level, field_of_study, university,
			 skills, experience_level, interests, availability, resume_url, portfolio_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		profile.ID,
		profile.UserID,
		profile.FullName,
		profile.EducationLevel,
		profile.FieldOfStudy,
		profile.University,
		pq.Array(profile.Skills),
		profile.ExperienceLevel,
		pq.Array(profile.Interests),
		profile.Availability,
		profile.ResumeURL,
		profile.PortfolioURL,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("intern profile for user %s: %w", profile.UserID, domain.ErrAlreadyExists)
		}
		r.logger.Error("failed to create intern profile",
			slog.String("user_id", profile.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create intern profile: %w", err)
	}

	return nil
}

// GetByUserID retrieves the profile owned by a user
func (r *PostgresInternRepository) GetByUserID(userID string) (*domain.InternProfile, error) {
	profile := &domain.InternProfile{}

	query := `
		SELECT id, user_id, full_name, education_level, field_of_study, university,
		       skills, experience_level, interests, availability, resume_url,
		       portfolio_url, created_at, updated_at
		FROM intern_profiles
		WHERE user_id = $1
	`

	err := r.db.QueryRow(query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.EducationLevel,
		&profile.FieldOfStudy,
		&profile.University,
		pq.Array(&profile.Skills),
		&profile.ExperienceLevel,
		pq.Array(&profile.Interests),
		&profile.Availability,
		&profile.ResumeURL,
		&profile.PortfolioURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("intern profile: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get intern profile: %w", err)
	}

	return profile, nil
}

// Update updates an existing intern profile
func (r *PostgresInternRepository) Update(profile *domain.InternProfile) error {
	query := `
		UPDATE intern_profiles
		SET full_name = $1, education_level = $2, field_of_study = $3, university = $4,
		    skills = $5, experience_level = $6, interests = $7, availability = $8,
		    resume_url = $9, portfolio_url = $10, updated_at = now()
		WHERE user_id = $11
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		profile.FullName,
		profile.EducationLevel,
		profile.FieldOfStudy,
		profile.University,
		pq.Array(profile.Skills),
		profile.ExperienceLevel,
		pq.Array(profile.Interests),
		profile.Availability,
		profile.ResumeURL,
		profile.PortfolioURL,
		profile.UserID,
	).Scan(&profile.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("intern profile: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update intern profile: %w", err)
	}

	return nil
}
