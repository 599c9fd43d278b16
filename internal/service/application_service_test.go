package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/internhub/internal/domain"
)

type applicationFixture struct {
	svc         *ApplicationService
	apps        *memApplicationRepo
	internships *memInternshipRepo
	orgs        *memOrgRepo
	interns     *memInternRepo
}

func newApplicationFixture(t *testing.T, strict bool) *applicationFixture {
	t.Helper()
	orgs := newMemOrgRepo()
	internships := newMemInternshipRepo(orgs)
	apps := newMemApplicationRepo(internships)
	interns := newMemInternRepo()

	f := &applicationFixture{
		svc:         NewApplicationService(apps, internships, orgs, interns, strict, testAudit(), nil),
		apps:        apps,
		internships: internships,
		orgs:        orgs,
		interns:     interns,
	}

	seedOrg(t, orgs, "org-1", "org-user-1", domain.ApprovalApproved)
	if err := internships.Create(&domain.Internship{
		ID:                  "intern-ship-1",
		OrganizationID:      "org-1",
		Title:               "Backend Intern",
		Status:              domain.InternshipActive,
		ApplicationDeadline: time.Now().Add(24 * time.Hour),
	}); err != nil {
		t.Fatalf("seed internship failed: %v", err)
	}
	if err := interns.Create(&domain.InternProfile{
		ID:       "profile-1",
		UserID:   "applicant-1",
		FullName: "Pat Example",
	}); err != nil {
		t.Fatalf("seed intern profile failed: %v", err)
	}

	return f
}

func TestApply(t *testing.T) {
	f := newApplicationFixture(t, false)
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-1", "hello")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if app.Status != domain.StatusSubmitted {
		t.Fatalf("expected submitted, got %s", app.Status)
	}

	// Second live application for the same pair is a conflict
	if _, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-1", "again"); !errors.Is(err, domain.ErrAlreadyApplied) {
		t.Fatalf("expected already-applied, got %v", err)
	}
}

func TestApplyRequiresProfile(t *testing.T) {
	f := newApplicationFixture(t, false)

	if _, err := f.svc.Apply(context.Background(), "no-profile", "intern-ship-1", ""); !errors.Is(err, domain.ErrProfileIncomplete) {
		t.Fatalf("expected profile-incomplete, got %v", err)
	}
}

func TestApplyClosedListing(t *testing.T) {
	f := newApplicationFixture(t, false)
	ctx := context.Background()

	// Past deadline
	expired := &domain.Internship{
		ID:                  "intern-ship-expired",
		OrganizationID:      "org-1",
		Status:              domain.InternshipActive,
		ApplicationDeadline: time.Now().Add(-time.Hour),
	}
	if err := f.internships.Create(expired); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-expired", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for past deadline, got %v", err)
	}

	// Inactive listing
	inactive := &domain.Internship{
		ID:                  "intern-ship-inactive",
		OrganizationID:      "org-1",
		Status:              domain.InternshipInactive,
		ApplicationDeadline: time.Now().Add(time.Hour),
	}
	if err := f.internships.Create(inactive); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-inactive", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for inactive listing, got %v", err)
	}
}

func TestReapplyAfterWithdraw(t *testing.T) {
	f := newApplicationFixture(t, false)
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-1", "")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := f.svc.Withdraw(ctx, "applicant-1", app.ID); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if _, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-1", ""); err != nil {
		t.Fatalf("expected re-apply after withdraw to succeed, got %v", err)
	}
}

func TestUpdateStatusPermissive(t *testing.T) {
	f := newApplicationFixture(t, false)
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-1", "")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// Permissive mode allows skipping straight to accepted
	updated, err := f.svc.UpdateStatus(ctx, "org-user-1", app.ID, domain.StatusAccepted)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != domain.StatusAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}

	// And even back out of a terminal status
	if _, err := f.svc.UpdateStatus(ctx, "org-user-1", app.ID, domain.StatusUnderReview); err != nil {
		t.Fatalf("permissive mode should allow leaving terminal status: %v", err)
	}

	// But never into withdrawn
	if _, err := f.svc.UpdateStatus(ctx, "org-user-1", app.ID, domain.StatusWithdrawn); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition into withdrawn, got %v", err)
	}

	// And never to an unknown status
	if _, err := f.svc.UpdateStatus(ctx, "org-user-1", app.ID, "archived"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for unknown status, got %v", err)
	}
}

func TestUpdateStatusStrict(t *testing.T) {
	f := newApplicationFixture(t, true)
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-1", "")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// submitted -> accepted skips review
	if _, err := f.svc.UpdateStatus(ctx, "org-user-1", app.ID, domain.StatusAccepted); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	steps := []domain.ApplicationStatus{
		domain.StatusUnderReview,
		domain.StatusInterviewScheduled,
		domain.StatusInterviewed,
		domain.StatusAccepted,
	}
	for _, to := range steps {
		if _, err := f.svc.UpdateStatus(ctx, "org-user-1", app.ID, to); err != nil {
			t.Fatalf("transition to %s failed: %v", to, err)
		}
	}

	// Terminal status admits nothing further
	if _, err := f.svc.UpdateStatus(ctx, "org-user-1", app.ID, domain.StatusUnderReview); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected terminal status to be final, got %v", err)
	}
}

func TestUpdateStatusOwnership(t *testing.T) {
	f := newApplicationFixture(t, false)
	ctx := context.Background()

	seedOrg(t, f.orgs, "org-2", "org-user-2", domain.ApprovalApproved)

	app, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-1", "")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, "org-user-2", app.ID, domain.StatusUnderReview); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	f := newApplicationFixture(t, false)
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-1", "")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// Only the owner may withdraw
	if _, err := f.svc.Withdraw(ctx, "someone-else", app.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	updated, err := f.svc.Withdraw(ctx, "applicant-1", app.ID)
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if updated.Status != domain.StatusWithdrawn {
		t.Fatalf("expected withdrawn, got %s", updated.Status)
	}

	// Withdrawing again hits the terminal check
	if _, err := f.svc.Withdraw(ctx, "applicant-1", app.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition on double withdraw, got %v", err)
	}
}

func TestOrganizationStats(t *testing.T) {
	f := newApplicationFixture(t, false)
	ctx := context.Background()

	if err := f.interns.Create(&domain.InternProfile{ID: "profile-2", UserID: "applicant-2", FullName: "Sam"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	a1, err := f.svc.Apply(ctx, "applicant-1", "intern-ship-1", "")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := f.svc.Apply(ctx, "applicant-2", "intern-ship-1", ""); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, "org-user-1", a1.ID, domain.StatusUnderReview); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	counts, err := f.svc.Stats("org-user-1")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if counts[domain.StatusSubmitted] != 1 || counts[domain.StatusUnderReview] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
