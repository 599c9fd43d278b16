package domain

import "time"

// ApplicationStatus is the per (applicant, internship) workflow state
type ApplicationStatus string

const (
	StatusSubmitted          ApplicationStatus = "submitted"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusInterviewed        ApplicationStatus = "interviewed"
	StatusAccepted           ApplicationStatus = "accepted"
	StatusRejected           ApplicationStatus = "rejected"
	StatusWithdrawn          ApplicationStatus = "withdrawn"
)

// Known reports whether s is one of the declared workflow statuses
func (s ApplicationStatus) Known() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusInterviewScheduled,
		StatusInterviewed, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s
func (s ApplicationStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusWithdrawn
}

// forwardTransitions is the strict-mode transition table. The
// interview_scheduled/interviewed pair is deliberately bidirectional
// (interviews get rescheduled). Withdrawn is reachable only through the
// applicant-initiated withdraw operation, never by the organization.
var forwardTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted:          {StatusUnderReview, StatusRejected},
	StatusUnderReview:        {StatusInterviewScheduled, StatusAccepted, StatusRejected},
	StatusInterviewScheduled: {StatusInterviewed},
	StatusInterviewed:        {StatusInterviewScheduled, StatusAccepted, StatusRejected},
}

// CanTransition reports whether an organization may move an application from
// one status to another. In permissive mode any known non-withdrawn target is
// allowed, which matches the unguarded behavior the product currently relies
// on; strict mode enforces the forward workflow table.
func CanTransition(from, to ApplicationStatus, strict bool) bool {
	if !to.Known() || to == StatusWithdrawn {
		return false
	}
	if !strict {
		return true
	}
	if from.Terminal() {
		return false
	}
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Application joins one intern profile to one internship posting
type Application struct {
	ID           string // UUID
	ApplicantID  string // InternProfile.UserID
	InternshipID string
	Status       ApplicationStatus
	CoverLetter  string
	AppliedAt    time.Time
	UpdatedAt    time.Time
}

// StatusCounts aggregates an organization's applications per workflow bucket
type StatusCounts map[ApplicationStatus]int

// ApplicationRepository defines data access for applications. Create must
// surface ErrAlreadyApplied when the one-live-application-per-pair constraint
// is violated, so the double-submit race resolves to a reported conflict.
type ApplicationRepository interface {
	Create(application *Application) error
	GetByID(id string) (*Application, error)
	UpdateStatus(id string, status ApplicationStatus) (*Application, error)
	ListByApplicant(applicantID string) ([]*Application, error)
	ListByOrganization(organizationID string, internshipID string) ([]*Application, error)
	CountByStatusForOrganization(organizationID string) (StatusCounts, error)
}
