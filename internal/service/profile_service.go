package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/security"
)

// ProfileService manages the 1:1 role profiles created during onboarding
type ProfileService struct {
	orgRepo    domain.OrganizationRepository
	internRepo domain.InternRepository
	logger     *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	orgRepo domain.OrganizationRepository,
	internRepo domain.InternRepository,
	logger *slog.Logger,
) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProfileService{
		orgRepo:    orgRepo,
		internRepo: internRepo,
		logger:     logger,
	}
}

// OrganizationProfileInput carries the editable company fields
type OrganizationProfileInput struct {
	CompanyName string `json:"company_name"`
	CompanySize string `json:"company_size"`
	Industry    string `json:"industry"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

// InternProfileInput carries the editable applicant fields
type InternProfileInput struct {
	FullName        string   `json:"full_name"`
	EducationLevel  string   `json:"education_level"`
	FieldOfStudy    string   `json:"field_of_study"`
	University      string   `json:"university"`
	Skills          []string `json:"skills"`
	ExperienceLevel string   `json:"experience_level"`
	Interests       []string `json:"interests"`
	Availability    string   `json:"availability"`
	PortfolioURL    string   `json:"portfolio_url"`
}

// CreateOrganizationProfile creates the company profile. New profiles always
// enter the admin review queue as pending.
func (s *ProfileService) CreateOrganizationProfile(userID string, input OrganizationProfileInput) (*domain.OrganizationProfile, error) {
	if input.CompanyName == "" {
		return nil, domain.Validationf("company name is required")
	}

	existing, err := s.orgRepo.GetByUserID(userID)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("organization profile: %w", domain.ErrAlreadyExists)
	}

	profile := &domain.OrganizationProfile{
		ID:             uuid.NewString(),
		UserID:         userID,
		CompanyName:    input.CompanyName,
		CompanySize:    input.CompanySize,
		Industry:       input.Industry,
		Location:       input.Location,
		Description:    input.Description,
		Website:        input.Website,
		ApprovalStatus: domain.ApprovalPending,
	}

	if err := s.orgRepo.Create(profile); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("organization profile: %w", domain.ErrAlreadyExists)
		}
		s.logger.Error("failed to create organization profile",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to create organization profile")
	}

	s.logger.Info("organization profile created",
		slog.String("user_id", userID),
		slog.String("profile_id", profile.ID),
	)

	return profile, nil
}

// GetOrganizationProfile returns the caller's own company profile
func (s *ProfileService) GetOrganizationProfile(userID string) (*domain.OrganizationProfile, error) {
	return s.orgRepo.GetByUserID(userID)
}

// UpdateOrganizationProfile edits company fields. Approval state is not
// touched here; only the review workflow changes it.
func (s *ProfileService) UpdateOrganizationProfile(userID string, input OrganizationProfileInput) (*domain.OrganizationProfile, error) {
	profile, err := s.orgRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	if input.CompanyName == "" {
		return nil, domain.Validationf("company name is required")
	}

	profile.CompanyName = input.CompanyName
	profile.CompanySize = input.CompanySize
	profile.Industry = input.Industry
	profile.Location = input.Location
	profile.Description = input.Description
	profile.Website = input.Website

	if err := s.orgRepo.Update(profile); err != nil {
		s.logger.Error("failed to update organization profile",
			slog.String("profile_id", profile.ID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to update organization profile")
	}

	return profile, nil
}

// CreateInternProfile creates the applicant profile. There is no review gate;
// the profile is usable immediately.
func (s *ProfileService) CreateInternProfile(userID string, input InternProfileInput) (*domain.InternProfile, error) {
	if input.FullName == "" {
		return nil, domain.Validationf("full name is required")
	}

	existing, err := s.internRepo.GetByUserID(userID)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("intern profile: %w", domain.ErrAlreadyExists)
	}

	profile := &domain.InternProfile{
		ID:              uuid.NewString(),
		UserID:          userID,
		FullName:        input.FullName,
		EducationLevel:  input.EducationLevel,
		FieldOfStudy:    input.FieldOfStudy,
		University:      input.University,
		Skills:          input.Skills,
		ExperienceLevel: input.ExperienceLevel,
		Interests:       input.Interests,
		Availability:    input.Availability,
		PortfolioURL:    input.PortfolioURL,
	}

	if err := s.internRepo.Create(profile); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("intern profile: %w", domain.ErrAlreadyExists)
		}
		s.logger.Error("failed to create intern profile",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to create intern profile")
	}

	s.logger.Info("intern profile created",
		slog.String("user_id", userID),
		slog.String("profile_id", profile.ID),
	)

	return profile, nil
}

// GetInternProfile returns the caller's own applicant profile
func (s *ProfileService) GetInternProfile(userID string) (*domain.InternProfile, error) {
	return s.internRepo.GetByUserID(userID)
}

// UpdateInternProfile edits applicant fields
func (s *ProfileService) UpdateInternProfile(userID string, input InternProfileInput) (*domain.InternProfile, error) {
	profile, err := s.internRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	if input.FullName == "" {
		return nil, domain.Validationf("full name is required")
	}

	profile.FullName = input.FullName
	profile.EducationLevel = input.EducationLevel
	profile.FieldOfStudy = input.FieldOfStudy
	profile.University = input.University
	profile.Skills = input.Skills
	profile.ExperienceLevel = input.ExperienceLevel
	profile.Interests = input.Interests
	profile.Availability = input.Availability
	profile.PortfolioURL = input.PortfolioURL

	if err := s.internRepo.Update(profile); err != nil {
		s.logger.Error("failed to update intern profile",
			slog.String("profile_id", profile.ID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to update intern profile")
	}

	return profile, nil
}

// SetResumeURL records the uploaded résumé's public URL on the profile
func (s *ProfileService) SetResumeURL(userID, resumeURL string) (*domain.InternProfile, error) {
	profile, err := s.internRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	profile.ResumeURL = resumeURL
	if err := s.internRepo.Update(profile); err != nil {
		s.logger.Error("failed to store resume url",
			slog.String("profile_id", profile.ID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to store resume url")
	}

	return profile, nil
}

// OnboardingTarget returns where a user who just resolved their role should
// land: profile setup if the role profile is missing, the role dashboard
// otherwise. Admins have no profile step.
func (s *ProfileService) OnboardingTarget(userID string, role domain.Role) (string, error) {
	switch role {
	case domain.RoleAdmin:
		return security.RouteAdminDashboard, nil
	case domain.RoleOrganization:
		if _, err := s.orgRepo.GetByUserID(userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return security.RouteOrganizationSetup, nil
			}
			return "", err
		}
		return security.RouteOrganizationDashboard, nil
	case domain.RoleIntern:
		if _, err := s.internRepo.GetByUserID(userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return security.RouteInternSetup, nil
			}
			return "", err
		}
		return security.RouteApplicantDashboard, nil
	}
	return security.RouteRoleSelection, nil
}
