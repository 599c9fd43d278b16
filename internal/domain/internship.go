package domain

import "time"

// InternshipStatus controls listing visibility on the browse surface
type InternshipStatus string

const (
	InternshipActive   InternshipStatus = "active"
	InternshipInactive InternshipStatus = "inactive"
)

// Internship is a posting owned by exactly one organization profile
type Internship struct {
	ID                 string // UUID
	OrganizationID     string
	Title              string
	Department         string
	Location           string
	WorkType           string
	Duration           string
	Stipend            string
	Description        string
	Responsibilities   string
	Requirements       string
	Skills             []string
	EducationLevel     string
	PositionsAvailable int
	ApplicationDeadline time.Time
	StartDate          time.Time
	Status             InternshipStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BrowseFilter narrows the public listing query. Zero values match everything.
type BrowseFilter struct {
	Skill    string
	Location string
	WorkType string
}

// InternshipRepository defines data access for internship postings
type InternshipRepository interface {
	Create(internship *Internship) error
	GetByID(id string) (*Internship, error)
	Update(internship *Internship) error
	Delete(id string) error
	ListByOrganization(organizationID string) ([]*Internship, error)
	// ListActive returns active listings of approved organizations whose
	// deadline has not passed, newest first.
	ListActive(filter BrowseFilter, now time.Time) ([]*Internship, error)
	// DeactivateExpired flips active listings past their deadline to inactive
	// and returns how many rows changed.
	DeactivateExpired(now time.Time) (int, error)
	CountActive() (int, error)
}
