package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/observability/metrics"
	"github.com/yourorg/internhub/internal/security/audit"
	"github.com/yourorg/internhub/pkg/cache"
)

// ApprovalService runs the admin review queue for organization profiles.
// Approval state gates browse visibility, so every decision drops the cached
// browse responses alongside the write.
type ApprovalService struct {
	orgRepo     domain.OrganizationRepository
	audit       *audit.Logger
	browseCache *cache.Cache
	logger      *slog.Logger
}

// NewApprovalService creates a new approval service. browseCache is the same
// cache the internship service serves browse responses from.
func NewApprovalService(
	orgRepo domain.OrganizationRepository,
	auditLogger *audit.Logger,
	browseCache *cache.Cache,
	logger *slog.Logger,
) *ApprovalService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ApprovalService{
		orgRepo:     orgRepo,
		audit:       auditLogger,
		browseCache: browseCache,
		logger:      logger,
	}
}

// ListPending returns the review queue, oldest submission first
func (s *ApprovalService) ListPending() ([]*domain.OrganizationProfile, error) {
	return s.orgRepo.ListByApproval(domain.ApprovalPending)
}

// ListByStatus returns profiles in any review state, for the admin overview
func (s *ApprovalService) ListByStatus(status domain.ApprovalStatus) ([]*domain.OrganizationProfile, error) {
	return s.orgRepo.ListByApproval(status)
}

// Approve marks an organization approved, stamping the decision time and
// clearing any rejection reason from an earlier round. Approving an already
// approved profile is a no-op.
func (s *ApprovalService) Approve(ctx context.Context, adminID, organizationID string) (*domain.OrganizationProfile, error) {
	profile, err := s.orgRepo.GetByID(organizationID)
	if err != nil {
		return nil, err
	}

	if profile.ApprovalStatus == domain.ApprovalApproved {
		return profile, nil
	}

	now := time.Now()
	updated, err := s.orgRepo.UpdateApproval(organizationID, domain.ApprovalApproved, "", &now)
	if err != nil {
		s.logger.Error("failed to approve organization",
			slog.String("organization_id", organizationID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to approve organization")
	}

	s.browseCache.Invalidate(browseCachePrefix)
	metrics.ObserveApproval("approved")
	s.audit.LogApproval(ctx, adminID, organizationID, "approved", "")
	s.logger.Info("organization approved",
		slog.String("organization_id", organizationID),
		slog.String("admin_id", adminID),
	)

	return updated, nil
}

// Reject marks an organization rejected. A non-empty reason is mandatory; it
// is what the organization sees on its dashboard.
func (s *ApprovalService) Reject(ctx context.Context, adminID, organizationID, reason string) (*domain.OrganizationProfile, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.ErrReasonRequired
	}

	if _, err := s.orgRepo.GetByID(organizationID); err != nil {
		return nil, err
	}

	updated, err := s.orgRepo.UpdateApproval(organizationID, domain.ApprovalRejected, reason, nil)
	if err != nil {
		s.logger.Error("failed to reject organization",
			slog.String("organization_id", organizationID),
			slog.String("error", err.Error()),
		)
		return nil, errors.New("failed to reject organization")
	}

	s.browseCache.Invalidate(browseCachePrefix)
	metrics.ObserveApproval("rejected")
	s.audit.LogApproval(ctx, adminID, organizationID, "rejected", reason)
	s.logger.Info("organization rejected",
		slog.String("organization_id", organizationID),
		slog.String("admin_id", adminID),
	)

	return updated, nil
}
