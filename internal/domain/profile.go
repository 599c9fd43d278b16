package domain

import "time"

// ApprovalStatus tracks an organization profile through the admin review gate
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// OrganizationProfile is the 1:1 company profile owned by a user with the
// organization role. Listings are visible to applicants only while the
// profile is approved.
type OrganizationProfile struct {
	ID              string // UUID
	UserID          string // Unique, owns 1:1
	CompanyName     string
	CompanySize     string
	Industry        string
	Location        string
	Description     string
	Website         string
	ApprovalStatus  ApprovalStatus
	RejectionReason string
	ApprovedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InternProfile is the 1:1 applicant profile. No approval gate; usable
// immediately after creation.
type InternProfile struct {
	ID              string // UUID
	UserID          string // Unique
	FullName        string
	EducationLevel  string
	FieldOfStudy    string
	University      string
	Skills          []string
	ExperienceLevel string
	Interests       []string
	Availability    string
	ResumeURL       string
	PortfolioURL    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrganizationRepository defines data access for organization profiles
type OrganizationRepository interface {
	Create(profile *OrganizationProfile) error
	GetByID(id string) (*OrganizationProfile, error)
	GetByUserID(userID string) (*OrganizationProfile, error)
	Update(profile *OrganizationProfile) error
	UpdateApproval(id string, status ApprovalStatus, reason string, approvedAt *time.Time) (*OrganizationProfile, error)
	ListByApproval(status ApprovalStatus) ([]*OrganizationProfile, error)
}

// InternRepository defines data access for intern profiles
type InternRepository interface {
	Create(profile *InternProfile) error
	GetByUserID(userID string) (*InternProfile, error)
	Update(profile *InternProfile) error
}
