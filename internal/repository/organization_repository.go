package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/internhub/internal/domain"
)

// PostgresOrganizationRepository implements domain.OrganizationRepository
type PostgresOrganizationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresOrganizationRepository creates a new organization repository
func NewPostgresOrganizationRepository(db *sql.DB, logger *slog.Logger) *PostgresOrganizationRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresOrganizationRepository{
		db:     db,
		logger: logger,
	}
}

const organizationColumns = `
	id, user_id, company_name, company_size, industry, location, description,
	website, approval_status, rejection_reason, approved_at, created_at, updated_at`

func scanOrganization(row interface{ Scan(...any) error }) (*domain.OrganizationProfile, error) {
	p := &domain.OrganizationProfile{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.CompanyName,
		&p.CompanySize,
		&p.Industry,
		&p.Location,
		&p.Description,
		&p.Website,
		&p.ApprovalStatus,
		&p.RejectionReason,
		&p.ApprovedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// Create inserts a new organization profile in the pending state
func (r *PostgresOrganizationRepository) Create(profile *domain.OrganizationProfile) error {
	query := `
		INSERT INTO organization_profiles
			(id, user_id, company_name, company_size, industry, location, description, website, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		profile.ID,
		profile.UserID,
		profile.CompanyName,
		profile.CompanySize,
		profile.Industry,
		profile.Location,
		profile.Description,
		profile.Website,
		profile.ApprovalStatus,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("organization profile for user %s: %w", profile.UserID, domain.ErrAlreadyExists)
		}
		r.logger.Error("failed to create organization profile",
			slog.String("user_id", profile.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create organization profile: %w", err)
	}

	return nil
}

// GetByID retrieves an organization profile by its id
func (r *PostgresOrganizationRepository) GetByID(id string) (*domain.OrganizationProfile, error) {
	query := `SELECT` + organizationColumns + `FROM organization_profiles WHERE id = $1`

	profile, err := scanOrganization(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("organization profile: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get organization profile: %w", err)
	}

	return profile, nil
}

// GetByUserID retrieves the profile owned by a user
func (r *PostgresOrganizationRepository) GetByUserID(userID string) (*domain.OrganizationProfile, error) {
	query := `SELECT` + organizationColumns + `FROM organization_profiles WHERE user_id = $1`

	profile, err := scanOrganization(r.db.QueryRow(query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("organization profile: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get organization profile: %w", err)
	}

	return profile, nil
}

// Update updates the company fields; approval state is mutated only through
// UpdateApproval.
func (r *PostgresOrganizationRepository) Update(profile *domain.OrganizationProfile) error {
	query := `
		UPDATE organization_profiles
		SET company_name = $1, company_size = $2, industry = $3, location = $4,
		    description = $5, website = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		profile.CompanyName,
		profile.CompanySize,
		profile.Industry,
		profile.Location,
		profile.Description,
		profile.Website,
		profile.ID,
	).Scan(&profile.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("organization profile: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update organization profile: %w", err)
	}

	return nil
}

// UpdateApproval applies the admin approval transition and returns the
// updated row.
func (r *PostgresOrganizationRepository) UpdateApproval(id string, status domain.ApprovalStatus, reason string, approvedAt *time.Time) (*domain.OrganizationProfile, error) {
	query := `
		UPDATE organization_profiles
		SET approval_status = $1, rejection_reason = $2, approved_at = $3, updated_at = now()
		WHERE id = $4
		RETURNING` + organizationColumns

	profile, err := scanOrganization(r.db.QueryRow(query, status, reason, approvedAt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("organization profile: %w", domain.ErrNotFound)
		}
		r.logger.Error("failed to update approval",
			slog.String("id", id),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update approval: %w", err)
	}

	return profile, nil
}

// ListByApproval lists profiles in a given approval state, oldest first so
// the admin review queue is FIFO.
func (r *PostgresOrganizationRepository) ListByApproval(status domain.ApprovalStatus) ([]*domain.OrganizationProfile, error) {
	query := `SELECT` + organizationColumns + `
		FROM organization_profiles
		WHERE approval_status = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.OrganizationProfile
	for rows.Next() {
		profile, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}
