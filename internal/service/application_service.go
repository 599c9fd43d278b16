package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/observability/metrics"
	"github.com/yourorg/internhub/internal/security/audit"
)

// ApplicationService runs the application workflow between interns and
// organizations.
type ApplicationService struct {
	appRepo        domain.ApplicationRepository
	internshipRepo domain.InternshipRepository
	orgRepo        domain.OrganizationRepository
	internRepo     domain.InternRepository
	strict         bool
	audit          *audit.Logger
	logger         *slog.Logger
}

// NewApplicationService creates a new application service. strict selects the
// forward-only status transition table over the permissive mode.
func NewApplicationService(
	appRepo domain.ApplicationRepository,
	internshipRepo domain.InternshipRepository,
	orgRepo domain.OrganizationRepository,
	internRepo domain.InternRepository,
	strict bool,
	auditLogger *audit.Logger,
	logger *slog.Logger,
) *ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ApplicationService{
		appRepo:        appRepo,
		internshipRepo: internshipRepo,
		orgRepo:        orgRepo,
		internRepo:     internRepo,
		strict:         strict,
		audit:          auditLogger,
		logger:         logger,
	}
}

// Apply submits an application. The applicant needs a complete intern
// profile, the listing must be active with a live deadline, and only one
// live application per (applicant, internship) pair may exist. The storage
// constraint backs the uniqueness check, so two concurrent submits resolve
// to one success and one conflict.
func (s *ApplicationService) Apply(ctx context.Context, applicantID, internshipID, coverLetter string) (*domain.Application, error) {
	if _, err := s.internRepo.GetByUserID(applicantID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveApplication("profile_incomplete")
			return nil, domain.ErrProfileIncomplete
		}
		return nil, err
	}

	internship, err := s.internshipRepo.GetByID(internshipID)
	if err != nil {
		return nil, err
	}

	if internship.Status != domain.InternshipActive {
		metrics.ObserveApplication("inactive_listing")
		return nil, fmt.Errorf("internship is not accepting applications: %w", domain.ErrForbidden)
	}
	if time.Now().After(internship.ApplicationDeadline) {
		metrics.ObserveApplication("deadline_passed")
		return nil, fmt.Errorf("application deadline has passed: %w", domain.ErrForbidden)
	}

	application := &domain.Application{
		ID:           uuid.NewString(),
		ApplicantID:  applicantID,
		InternshipID: internshipID,
		Status:       domain.StatusSubmitted,
		CoverLetter:  coverLetter,
	}

	if err := s.appRepo.Create(application); err != nil {
		if errors.Is(err, domain.ErrAlreadyApplied) {
			metrics.ObserveApplication("duplicate")
			return nil, domain.ErrAlreadyApplied
		}
		s.logger.Error("failed to create application",
			slog.String("applicant_id", applicantID),
			slog.String("internship_id", internshipID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to submit application")
	}

	metrics.ObserveApplication("submitted")
	s.audit.LogAction(ctx, applicantID, "apply", "application", application.ID, "submitted", internshipID)
	s.logger.Info("application submitted",
		slog.String("application_id", application.ID),
		slog.String("internship_id", internshipID),
	)

	return application, nil
}

// UpdateStatus moves an application through the review workflow. Only the
// organization that owns the listing may move it, and withdrawn can never be
// set from here.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actorUserID, applicationID string, to domain.ApplicationStatus) (*domain.Application, error) {
	application, err := s.appRepo.GetByID(applicationID)
	if err != nil {
		return nil, err
	}

	if err := s.verifyListingOwner(actorUserID, application.InternshipID); err != nil {
		return nil, err
	}

	from := application.Status
	if !domain.CanTransition(from, to, s.strict) {
		metrics.ObserveTransition(string(from), string(to), "rejected")
		return nil, fmt.Errorf("cannot move application from %s to %s: %w", from, to, domain.ErrInvalidTransition)
	}

	updated, err := s.appRepo.UpdateStatus(applicationID, to)
	if err != nil {
		s.logger.Error("failed to update application status",
			slog.String("application_id", applicationID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to update application status")
	}

	metrics.ObserveTransition(string(from), string(to), "applied")
	s.audit.LogStatusChange(ctx, actorUserID, applicationID, string(from), string(to))
	s.logger.Info("application status changed",
		slog.String("application_id", applicationID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)

	return updated, nil
}

// Withdraw is the applicant-initiated exit. It works from any non-terminal
// status and is the only path into withdrawn. Withdrawing frees the pair for
// a future re-application.
func (s *ApplicationService) Withdraw(ctx context.Context, applicantID, applicationID string) (*domain.Application, error) {
	application, err := s.appRepo.GetByID(applicationID)
	if err != nil {
		return nil, err
	}

	if application.ApplicantID != applicantID {
		return nil, fmt.Errorf("application belongs to another applicant: %w", domain.ErrForbidden)
	}

	from := application.Status
	if from.Terminal() {
		return nil, fmt.Errorf("cannot withdraw a %s application: %w", from, domain.ErrInvalidTransition)
	}

	updated, err := s.appRepo.UpdateStatus(applicationID, domain.StatusWithdrawn)
	if err != nil {
		s.logger.Error("failed to withdraw application",
			slog.String("application_id", applicationID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to withdraw application")
	}

	metrics.ObserveTransition(string(from), string(domain.StatusWithdrawn), "applied")
	s.audit.LogStatusChange(ctx, applicantID, applicationID, string(from), string(domain.StatusWithdrawn))
	s.logger.Info("application withdrawn", slog.String("application_id", applicationID))

	return updated, nil
}

// ListMine returns the applicant's own applications, newest first
func (s *ApplicationService) ListMine(applicantID string) ([]*domain.Application, error) {
	return s.appRepo.ListByApplicant(applicantID)
}

// ListForOrganization returns applications on the caller's listings,
// optionally narrowed to one internship.
func (s *ApplicationService) ListForOrganization(userID, internshipID string) ([]*domain.Application, error) {
	org, err := s.orgRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	if internshipID != "" {
		if err := s.verifyListingOwner(userID, internshipID); err != nil {
			return nil, err
		}
	}

	return s.appRepo.ListByOrganization(org.ID, internshipID)
}

// Stats aggregates the organization's applications per workflow status, for
// the dashboard counters.
func (s *ApplicationService) Stats(userID string) (domain.StatusCounts, error) {
	org, err := s.orgRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.appRepo.CountByStatusForOrganization(org.ID)
}

func (s *ApplicationService) verifyListingOwner(userID, internshipID string) error {
	org, err := s.orgRepo.GetByUserID(userID)
	if err != nil {
		return err
	}

	internship, err := s.internshipRepo.GetByID(internshipID)
	if err != nil {
		return err
	}

	if internship.OrganizationID != org.ID {
		return fmt.Errorf("internship belongs to another organization: %w", domain.ErrForbidden)
	}
	return nil
}
