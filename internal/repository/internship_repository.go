package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/yourorg/internhub/internal/domain"
)

// PostgresInternshipRepository implements domain.InternshipRepository
type PostgresInternshipRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresInternshipRepository creates a new internship repository
func NewPostgresInternshipRepository(db *sql.DB, logger *slog.Logger) *PostgresInternshipRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInternshipRepository{
		db:     db,
		logger: logger,
	}
}

const internshipColumns = `
	i.id, i.organization_id, i.title, i.department, i.location, i.work_type,
	i.duration, i.stipend, i.description, i.responsibilities, i.requirements,
	i.skills, i.education_level, i.positions_available, i.application_deadline,
	i.start_date, i.status, i.created_at, i.updated_at`

func scanInternship(row interface{ Scan(...any) error }) (*domain.Internship, error) {
	in := &domain.Internship{}
	err := row.Scan(
		&in.ID,
		&in.OrganizationID,
		&in.Title,
		&in.Department,
		&in.Location,
		&in.WorkType,
		&in.Duration,
		&in.Stipend,
		&in.Description,
		&in.Responsibilities,
		&in.Requirements,
		pq.Array(&in.Skills),
		&in.EducationLevel,
		&in.PositionsAvailable,
		&in.ApplicationDeadline,
		&in.StartDate,
		&in.Status,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	return in, err
}

// Create inserts a new internship posting
func (r *PostgresInternshipRepository) Create(in *domain.Internship) error {
	query := `
		INSERT INTO internships
			(id, organization_id, title, department, location, work_type, duration,
			 stipend, description, responsibilities, requirements, skills,
			 education_level, positions_available, application_deadline, start_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		in.ID,
		in.OrganizationID,
		in.Title,
		in.Department,
		in.Location,
		in.WorkType,
		in.Duration,
		in.Stipend,
		in.Description,
		in.Responsibilities,
		in.Requirements,
		pq.Array(in.Skills),
		in.EducationLevel,
		in.PositionsAvailable,
		in.ApplicationDeadline,
		in.StartDate,
		in.Status,
	).Scan(&in.CreatedAt, &in.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create internship",
			slog.String("organization_id", in.OrganizationID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create internship: %w", err)
	}

	return nil
}

// GetByID retrieves an internship by id
func (r *PostgresInternshipRepository) GetByID(id string) (*domain.Internship, error) {
	query := `SELECT` + internshipColumns + ` FROM internships i WHERE i.id = $1`

	in, err := scanInternship(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("internship: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get internship: %w", err)
	}

	return in, nil
}

// Update updates an existing internship
func (r *PostgresInternshipRepository) Update(in *domain.Internship) error {
	query := `
		UPDATE internships
		SET title = $1, department = $2, location = $3, work_type = $4, duration = $5,
		    stipend = $6, description = $7, responsibilities = $8, requirements = $9,
		    skills = $10, education_level = $11, positions_available = $12,
		    application_deadline = $13, start_date = $14, status = $15, updated_at = now()
		WHERE id = $16
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		in.Title,
		in.Department,
		in.Location,
		in.WorkType,
		in.Duration,
		in.Stipend,
		in.Description,
		in.Responsibilities,
		in.Requirements,
		pq.Array(in.Skills),
		in.EducationLevel,
		in.PositionsAvailable,
		in.ApplicationDeadline,
		in.StartDate,
		in.Status,
		in.ID,
	).Scan(&in.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("internship: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update internship: %w", err)
	}

	return nil
}

// Delete removes an internship and, via cascade, its applications
func (r *PostgresInternshipRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM internships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete internship: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("internship: %w", domain.ErrNotFound)
	}

	return nil
}

// ListByOrganization lists all postings of one organization, newest first
func (r *PostgresInternshipRepository) ListByOrganization(organizationID string) ([]*domain.Internship, error) {
	query := `SELECT` + internshipColumns + `
		FROM internships i
		WHERE i.organization_id = $1
		ORDER BY i.created_at DESC
	`

	return r.queryInternships(query, organizationID)
}

// ListActive returns the public browse listing: active postings of approved
// organizations with an open deadline. Approval gating lives here, not as a
// denormalized flag on the internship row.
func (r *PostgresInternshipRepository) ListActive(filter domain.BrowseFilter, now time.Time) ([]*domain.Internship, error) {
	query := `SELECT` + internshipColumns + `
		FROM internships i
		JOIN organization_profiles o ON o.id = i.organization_id
		WHERE i.status = 'active'
		  AND o.approval_status = 'approved'
		  AND i.application_deadline > $1
		  AND ($2 = '' OR $2 = ANY(i.skills))
		  AND ($3 = '' OR i.location ILIKE '%' || $3 || '%')
		  AND ($4 = '' OR i.work_type = $4)
		ORDER BY i.created_at DESC
	`

	return r.queryInternships(query, now, filter.Skill, filter.Location, filter.WorkType)
}

// DeactivateExpired flips active listings past their deadline to inactive
func (r *PostgresInternshipRepository) DeactivateExpired(now time.Time) (int, error) {
	result, err := r.db.Exec(`
		UPDATE internships
		SET status = 'inactive', updated_at = now()
		WHERE status = 'active' AND application_deadline <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired internships: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return int(rows), nil
}

// CountActive counts currently active listings for the gauge
func (r *PostgresInternshipRepository) CountActive() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM internships WHERE status = 'active'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active internships: %w", err)
	}
	return count, nil
}

func (r *PostgresInternshipRepository) queryInternships(query string, args ...any) ([]*domain.Internship, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list internships", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list internships: %w", err)
	}
	defer rows.Close()

	var internships []*domain.Internship
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan internship: %w", err)
		}
		internships = append(internships, in)
	}

	return internships, rows.Err()
}
