package security

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/internhub/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermBrowseInternships  Permission = "browse_internships"
	PermApply              Permission = "apply"
	PermWithdraw           Permission = "withdraw"
	PermManageListings     Permission = "manage_listings"
	PermReviewApplications Permission = "review_applications"
	PermApproveOrgs        Permission = "approve_organizations"
	PermManageUsers        Permission = "manage_users"
	PermMessage            Permission = "message"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermApproveOrgs,
		PermManageUsers,
		PermBrowseInternships,
		PermMessage,
	},
	domain.RoleOrganization: {
		PermManageListings,
		PermReviewApplications,
		PermMessage,
	},
	domain.RoleIntern: {
		PermBrowseInternships,
		PermApply,
		PermWithdraw,
		PermMessage,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role domain.Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("permission denied: %s role cannot %s: %w", role, permission, domain.ErrForbidden)
	}
	return nil
}

// ValidateOwnership checks that a user owns the resource it is mutating.
// Admins bypass ownership checks.
func (as *AuthorizationService) ValidateOwnership(userID string, role domain.Role, resourceType, resourceID, ownerID string) error {
	if role == domain.RoleAdmin {
		return nil
	}
	if ownerID != userID {
		as.logger.Warn("resource access denied",
			slog.String("user_id", userID),
			slog.String("resource_type", resourceType),
			slog.String("resource_id", resourceID),
			slog.String("owner_id", ownerID),
		)
		return fmt.Errorf("access denied: you do not own this %s: %w", resourceType, domain.ErrForbidden)
	}
	return nil
}
