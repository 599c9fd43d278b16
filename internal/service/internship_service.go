package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/observability/metrics"
	"github.com/yourorg/internhub/pkg/cache"
)

const browseCachePrefix = "browse:"

// InternshipService manages listings and the public browse surface
type InternshipService struct {
	internshipRepo domain.InternshipRepository
	orgRepo        domain.OrganizationRepository
	browseCache    *cache.Cache
	cacheTTL       time.Duration
	logger         *slog.Logger
}

// NewInternshipService creates a new internship service
func NewInternshipService(
	internshipRepo domain.InternshipRepository,
	orgRepo domain.OrganizationRepository,
	browseCache *cache.Cache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *InternshipService {
	if logger == nil {
		logger = slog.Default()
	}

	return &InternshipService{
		internshipRepo: internshipRepo,
		orgRepo:        orgRepo,
		browseCache:    browseCache,
		cacheTTL:       cacheTTL,
		logger:         logger,
	}
}

// InternshipInput carries the editable listing fields
type InternshipInput struct {
	Title               string    `json:"title"`
	Department          string    `json:"department"`
	Location            string    `json:"location"`
	WorkType            string    `json:"work_type"`
	Duration            string    `json:"duration"`
	Stipend             string    `json:"stipend"`
	Description         string    `json:"description"`
	Responsibilities    string    `json:"responsibilities"`
	Requirements        string    `json:"requirements"`
	Skills              []string  `json:"skills"`
	EducationLevel      string    `json:"education_level"`
	PositionsAvailable  int       `json:"positions_available"`
	ApplicationDeadline time.Time `json:"application_deadline"`
	StartDate           time.Time `json:"start_date"`
}

// Create publishes a new listing. Only approved organizations may publish;
// pending or rejected ones are turned away.
func (s *InternshipService) Create(userID string, input InternshipInput) (*domain.Internship, error) {
	org, err := s.resolveApprovedOrg(userID)
	if err != nil {
		return nil, err
	}

	if input.Title == "" {
		return nil, domain.Validationf("title is required")
	}
	if input.ApplicationDeadline.IsZero() {
		return nil, domain.Validationf("application deadline is required")
	}
	if input.PositionsAvailable <= 0 {
		input.PositionsAvailable = 1
	}

	internship := &domain.Internship{
		ID:                  uuid.NewString(),
		OrganizationID:      org.ID,
		Title:               input.Title,
		Department:          input.Department,
		Location:            input.Location,
		WorkType:            input.WorkType,
		Duration:            input.Duration,
		Stipend:             input.Stipend,
		Description:         input.Description,
		Responsibilities:    input.Responsibilities,
		Requirements:        input.Requirements,
		Skills:              input.Skills,
		EducationLevel:      input.EducationLevel,
		PositionsAvailable:  input.PositionsAvailable,
		ApplicationDeadline: input.ApplicationDeadline,
		StartDate:           input.StartDate,
		Status:              domain.InternshipActive,
	}

	if err := s.internshipRepo.Create(internship); err != nil {
		s.logger.Error("failed to create internship",
			slog.String("organization_id", org.ID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to create internship")
	}

	s.invalidateBrowse()
	s.refreshActiveGauge()

	s.logger.Info("internship created",
		slog.String("internship_id", internship.ID),
		slog.String("organization_id", org.ID),
	)

	return internship, nil
}

// Get returns a single listing
func (s *InternshipService) Get(id string) (*domain.Internship, error) {
	return s.internshipRepo.GetByID(id)
}

// Update edits a listing the caller's organization owns
func (s *InternshipService) Update(userID, internshipID string, input InternshipInput) (*domain.Internship, error) {
	org, internship, err := s.resolveOwned(userID, internshipID)
	if err != nil {
		return nil, err
	}

	if input.Title == "" {
		return nil, domain.Validationf("title is required")
	}

	internship.Title = input.Title
	internship.Department = input.Department
	internship.Location = input.Location
	internship.WorkType = input.WorkType
	internship.Duration = input.Duration
	internship.Stipend = input.Stipend
	internship.Description = input.Description
	internship.Responsibilities = input.Responsibilities
	internship.Requirements = input.Requirements
	internship.Skills = input.Skills
	internship.EducationLevel = input.EducationLevel
	if input.PositionsAvailable > 0 {
		internship.PositionsAvailable = input.PositionsAvailable
	}
	if !input.ApplicationDeadline.IsZero() {
		internship.ApplicationDeadline = input.ApplicationDeadline
	}
	if !input.StartDate.IsZero() {
		internship.StartDate = input.StartDate
	}

	if err := s.internshipRepo.Update(internship); err != nil {
		s.logger.Error("failed to update internship",
			slog.String("internship_id", internshipID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to update internship")
	}

	s.invalidateBrowse()

	s.logger.Info("internship updated",
		slog.String("internship_id", internshipID),
		slog.String("organization_id", org.ID),
	)

	return internship, nil
}

// SetStatus flips a listing between active and inactive
func (s *InternshipService) SetStatus(userID, internshipID string, status domain.InternshipStatus) (*domain.Internship, error) {
	if status != domain.InternshipActive && status != domain.InternshipInactive {
		return nil, domain.Validationf("unknown status %q", status)
	}

	_, internship, err := s.resolveOwned(userID, internshipID)
	if err != nil {
		return nil, err
	}

	internship.Status = status
	if err := s.internshipRepo.Update(internship); err != nil {
		return nil, errors.New("failed to update internship status")
	}

	s.invalidateBrowse()
	s.refreshActiveGauge()

	return internship, nil
}

// Delete removes a listing the caller's organization owns. Applications on it
// go with it through the storage cascade.
func (s *InternshipService) Delete(userID, internshipID string) error {
	_, _, err := s.resolveOwned(userID, internshipID)
	if err != nil {
		return err
	}

	if err := s.internshipRepo.Delete(internshipID); err != nil {
		s.logger.Error("failed to delete internship",
			slog.String("internship_id", internshipID),
			slog.String("error", err.Error()),
		)
		return errors.New("failed to delete internship")
	}

	s.invalidateBrowse()
	s.refreshActiveGauge()

	s.logger.Info("internship deleted", slog.String("internship_id", internshipID))
	return nil
}

// ListMine returns all listings of the caller's organization, any status
func (s *InternshipService) ListMine(userID string) ([]*domain.Internship, error) {
	org, err := s.orgRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.internshipRepo.ListByOrganization(org.ID)
}

// Browse returns the public listing feed: active postings of approved
// organizations with a future deadline. Results are cached briefly per
// filter combination.
func (s *InternshipService) Browse(filter domain.BrowseFilter) ([]*domain.Internship, error) {
	key := browseCacheKey(filter)

	if cached, ok := s.browseCache.Get(key); ok {
		if listings, ok := cached.([]*domain.Internship); ok {
			return listings, nil
		}
	}

	listings, err := s.internshipRepo.ListActive(filter, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to browse internships: %w", err)
	}

	s.browseCache.Set(key, listings, s.cacheTTL)
	return listings, nil
}

// resolveApprovedOrg loads the caller's organization and enforces the
// approval gate for publishing.
func (s *InternshipService) resolveApprovedOrg(userID string) (*domain.OrganizationProfile, error) {
	org, err := s.orgRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if org.ApprovalStatus != domain.ApprovalApproved {
		return nil, fmt.Errorf("organization not approved: %w", domain.ErrForbidden)
	}
	return org, nil
}

// resolveOwned loads the listing and verifies the caller's organization owns it
func (s *InternshipService) resolveOwned(userID, internshipID string) (*domain.OrganizationProfile, *domain.Internship, error) {
	org, err := s.orgRepo.GetByUserID(userID)
	if err != nil {
		return nil, nil, err
	}

	internship, err := s.internshipRepo.GetByID(internshipID)
	if err != nil {
		return nil, nil, err
	}

	if internship.OrganizationID != org.ID {
		return nil, nil, fmt.Errorf("internship belongs to another organization: %w", domain.ErrForbidden)
	}

	return org, internship, nil
}

func (s *InternshipService) invalidateBrowse() {
	s.browseCache.Invalidate(browseCachePrefix)
}

func (s *InternshipService) refreshActiveGauge() {
	count, err := s.internshipRepo.CountActive()
	if err != nil {
		s.logger.Warn("failed to count active listings", slog.String("error", err.Error()))
		return
	}
	metrics.SetActiveListings(count)
}

func browseCacheKey(filter domain.BrowseFilter) string {
	return fmt.Sprintf("%sskill=%s|location=%s|work_type=%s",
		browseCachePrefix, filter.Skill, filter.Location, filter.WorkType)
}
