package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/internhub/internal/domain"
)

// PostgresApplicationRepository implements domain.ApplicationRepository
type PostgresApplicationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresApplicationRepository creates a new application repository
func NewPostgresApplicationRepository(db *sql.DB, logger *slog.Logger) *PostgresApplicationRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresApplicationRepository{
		db:     db,
		logger: logger,
	}
}

const applicationColumns = `
	id, applicant_id, internship_id, status, cover_letter, applied_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (*domain.Application, error) {
	a := &domain.Application{}
	err := row.Scan(
		&a.ID,
		&a.ApplicantID,
		&a.InternshipID,
		&a.Status,
		&a.CoverLetter,
		&a.AppliedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// Create inserts a new application. The partial unique index on
// (applicant_id, internship_id) WHERE status <> 'withdrawn' makes the
// duplicate check atomic: the second of two racing inserts loses and comes
// back as ErrAlreadyApplied instead of a silent duplicate row.
func (r *PostgresApplicationRepository) Create(a *domain.Application) error {
	query := `
		INSERT INTO applications (id, applicant_id, internship_id, status, cover_letter)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING applied_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		a.ID,
		a.ApplicantID,
		a.InternshipID,
		a.Status,
		a.CoverLetter,
	).Scan(&a.AppliedAt, &a.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("application for internship %s: %w", a.InternshipID, domain.ErrAlreadyApplied)
		}
		r.logger.Error("failed to create application",
			slog.String("applicant_id", a.ApplicantID),
			slog.String("internship_id", a.InternshipID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID retrieves an application by id
func (r *PostgresApplicationRepository) GetByID(id string) (*domain.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM applications WHERE id = $1`

	a, err := scanApplication(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("application: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return a, nil
}

// UpdateStatus sets the workflow status and returns the updated row
func (r *PostgresApplicationRepository) UpdateStatus(id string, status domain.ApplicationStatus) (*domain.Application, error) {
	query := `
		UPDATE applications
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING` + applicationColumns

	a, err := scanApplication(r.db.QueryRow(query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("application: %w", domain.ErrNotFound)
		}
		r.logger.Error("failed to update application status",
			slog.String("id", id),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	return a, nil
}

// ListByApplicant lists one applicant's applications, newest first
func (r *PostgresApplicationRepository) ListByApplicant(applicantID string) ([]*domain.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications
		WHERE applicant_id = $1
		ORDER BY applied_at DESC
	`

	return r.queryApplications(query, applicantID)
}

// ListByOrganization lists applications to an organization's postings,
// optionally narrowed to one internship.
func (r *PostgresApplicationRepository) ListByOrganization(organizationID string, internshipID string) ([]*domain.Application, error) {
	query := `
		SELECT a.id, a.applicant_id, a.internship_id, a.status, a.cover_letter, a.applied_at, a.updated_at
		FROM applications a
		JOIN internships i ON i.id = a.internship_id
		WHERE i.organization_id = $1
		  AND ($2 = '' OR a.internship_id::text = $2)
		ORDER BY a.applied_at DESC
	`

	return r.queryApplications(query, organizationID, internshipID)
}

// CountByStatusForOrganization aggregates the organization's applications
// into workflow buckets for the dashboard.
func (r *PostgresApplicationRepository) CountByStatusForOrganization(organizationID string) (domain.StatusCounts, error) {
	query := `
		SELECT a.status, COUNT(*)
		FROM applications a
		JOIN internships i ON i.id = a.internship_id
		WHERE i.organization_id = $1
		GROUP BY a.status
	`

	rows, err := r.db.Query(query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	counts := domain.StatusCounts{}
	for rows.Next() {
		var status domain.ApplicationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (r *PostgresApplicationRepository) queryApplications(query string, args ...any) ([]*domain.Application, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list applications", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var applications []*domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		applications = append(applications, a)
	}

	return applications, rows.Err()
}
