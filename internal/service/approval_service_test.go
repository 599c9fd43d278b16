package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/pkg/cache"
)

func seedOrg(t *testing.T, orgs *memOrgRepo, id, userID string, status domain.ApprovalStatus) *domain.OrganizationProfile {
	t.Helper()
	p := &domain.OrganizationProfile{
		ID:             id,
		UserID:         userID,
		CompanyName:    "Acme " + id,
		ApprovalStatus: status,
	}
	if err := orgs.Create(p); err != nil {
		t.Fatalf("seed org failed: %v", err)
	}
	return p
}

func TestApproveOrganization(t *testing.T) {
	orgs := newMemOrgRepo()
	s := NewApprovalService(orgs, testAudit(), cache.New(), nil)
	seedOrg(t, orgs, "org-1", "user-1", domain.ApprovalPending)

	p, err := s.Approve(context.Background(), "admin-1", "org-1")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if p.ApprovalStatus != domain.ApprovalApproved {
		t.Fatalf("expected approved, got %s", p.ApprovalStatus)
	}
	if p.ApprovedAt == nil {
		t.Fatalf("expected approval timestamp")
	}

	// Idempotent: approving again keeps the original timestamp
	first := *p.ApprovedAt
	time.Sleep(time.Millisecond)
	again, err := s.Approve(context.Background(), "admin-1", "org-1")
	if err != nil {
		t.Fatalf("second approve failed: %v", err)
	}
	if !again.ApprovedAt.Equal(first) {
		t.Fatalf("expected approval timestamp to be stable across repeats")
	}
}

func TestApproveClearsRejectionReason(t *testing.T) {
	orgs := newMemOrgRepo()
	s := NewApprovalService(orgs, testAudit(), cache.New(), nil)
	seedOrg(t, orgs, "org-1", "user-1", domain.ApprovalPending)

	if _, err := s.Reject(context.Background(), "admin-1", "org-1", "incomplete details"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	p, err := s.Approve(context.Background(), "admin-1", "org-1")
	if err != nil {
		t.Fatalf("approve after reject failed: %v", err)
	}
	if p.RejectionReason != "" {
		t.Fatalf("expected rejection reason cleared on approval, got %q", p.RejectionReason)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	orgs := newMemOrgRepo()
	s := NewApprovalService(orgs, testAudit(), cache.New(), nil)
	seedOrg(t, orgs, "org-1", "user-1", domain.ApprovalPending)

	if _, err := s.Reject(context.Background(), "admin-1", "org-1", ""); !errors.Is(err, domain.ErrReasonRequired) {
		t.Fatalf("expected reason-required error, got %v", err)
	}
	if _, err := s.Reject(context.Background(), "admin-1", "org-1", "   "); !errors.Is(err, domain.ErrReasonRequired) {
		t.Fatalf("expected reason-required error for blank reason, got %v", err)
	}

	p, err := s.Reject(context.Background(), "admin-1", "org-1", "website unreachable")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if p.ApprovalStatus != domain.ApprovalRejected {
		t.Fatalf("expected rejected, got %s", p.ApprovalStatus)
	}
	if p.RejectionReason != "website unreachable" {
		t.Fatalf("expected stored reason, got %q", p.RejectionReason)
	}
}

func TestApprovalUnknownOrganization(t *testing.T) {
	s := NewApprovalService(newMemOrgRepo(), testAudit(), cache.New(), nil)

	if _, err := s.Approve(context.Background(), "admin-1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.Reject(context.Background(), "admin-1", "missing", "reason"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApprovalInvalidatesBrowseCache(t *testing.T) {
	orgs := newMemOrgRepo()
	internships := newMemInternshipRepo(orgs)
	browseCache := cache.New()
	approvals := NewApprovalService(orgs, testAudit(), browseCache, nil)
	listings := NewInternshipService(internships, orgs, browseCache, time.Hour, nil)

	seedOrg(t, orgs, "org-1", "user-1", domain.ApprovalApproved)
	if _, err := listings.Create("user-1", validListing()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	visible, err := listings.Browse(domain.BrowseFilter{})
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("expected 1 listing before rejection, got %d", len(visible))
	}

	// Rejecting the org must punch through the cached browse result
	if _, err := approvals.Reject(context.Background(), "admin-1", "org-1", "website unreachable"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	visible, err = listings.Browse(domain.BrowseFilter{})
	if err != nil {
		t.Fatalf("browse after reject failed: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("expected rejected org's listing hidden, got %d", len(visible))
	}

	// And approval must make it visible again without waiting out the TTL
	if _, err := approvals.Approve(context.Background(), "admin-1", "org-1"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	visible, err = listings.Browse(domain.BrowseFilter{})
	if err != nil {
		t.Fatalf("browse after approve failed: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("expected listing visible after approval, got %d", len(visible))
	}
}

func TestListPendingQueue(t *testing.T) {
	orgs := newMemOrgRepo()
	s := NewApprovalService(orgs, testAudit(), cache.New(), nil)
	seedOrg(t, orgs, "org-1", "user-1", domain.ApprovalPending)
	seedOrg(t, orgs, "org-2", "user-2", domain.ApprovalApproved)
	seedOrg(t, orgs, "org-3", "user-3", domain.ApprovalPending)

	pending, err := s.ListPending()
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	for _, p := range pending {
		if p.ApprovalStatus != domain.ApprovalPending {
			t.Fatalf("non-pending profile in queue: %s", p.ID)
		}
	}
}
