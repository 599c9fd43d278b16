package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/security"
	"github.com/yourorg/internhub/internal/security/auth"
	"github.com/yourorg/internhub/internal/security/middleware"
)

// decideRequest builds a POST with the token claim and the guard-resolved role
// set independently, the way the middleware chain leaves them.
func decideRequest(claimRole, contextRole domain.Role, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/admin/organizations/org-1/approval", strings.NewReader(body))
	r.SetPathValue("id", "org-1")
	ctx := context.WithValue(r.Context(), middleware.ClaimsContextKey{}, &auth.Claims{UserID: "user-1", Role: claimRole})
	ctx = context.WithValue(ctx, middleware.RoleContextKey{}, contextRole)
	return r.WithContext(ctx)
}

func TestDecideUsesGuardResolvedRole(t *testing.T) {
	h := NewAdminHandler(nil, nil, security.NewAuthorizationService(nil), nil)

	// A token issued before role selection carries no role claim; the guard
	// resolved admin from storage. The decision check must be reached.
	rec := httptest.NewRecorder()
	h.Decide(rec, decideRequest("", domain.RoleAdmin, `{"decision":"defer"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected the unknown-decision 400 past authorization, got %d", rec.Code)
	}

	// A stale admin claim on an account the guard resolved as intern must not
	// grant access.
	rec = httptest.NewRecorder()
	h.Decide(rec, decideRequest(domain.RoleAdmin, domain.RoleIntern, `{"decision":"approve"}`))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a stale admin claim, got %d", rec.Code)
	}
}

func TestListUsersUsesGuardResolvedRole(t *testing.T) {
	h := NewAdminHandler(nil, nil, security.NewAuthorizationService(nil), nil)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	ctx := context.WithValue(r.Context(), middleware.RoleContextKey{}, domain.RoleOrganization)
	h.ListUsers(rec, r.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-admin role, got %d", rec.Code)
	}
}
