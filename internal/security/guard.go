package security

import "github.com/yourorg/internhub/internal/domain"

// AuthState is the session resolution state at the time a protected view is
// requested.
type AuthState int

const (
	AuthPending AuthState = iota // session lookup still in flight
	AuthAnonymous
	AuthResolved
)

// RoleState is the role-record resolution state. A failed role fetch is
// reported as RoleMissing by callers: unknown-role defaults to onboarding,
// never to access.
type RoleState int

const (
	RolePending RoleState = iota
	RoleMissing
	RoleResolved
)

// Decision is the guard's verdict for a protected view
type Decision int

const (
	DecisionLoading Decision = iota
	DecisionRedirectLogin
	DecisionRedirectRoleSelection
	DecisionRedirectDashboard
	DecisionAllow
)

// Verdict carries the decision plus the route the client should navigate to
// when the decision is a redirect.
type Verdict struct {
	Decision Decision
	Target   string
}

// Route constants exposed to the UI shell
const (
	RouteLogin                 = "/login"
	RouteRoleSelection         = "/onboarding/role"
	RouteOrganizationSetup     = "/onboarding/organization"
	RouteInternSetup           = "/onboarding/intern"
	RouteAdminDashboard        = "/admin/dashboard"
	RouteOrganizationDashboard = "/organization/dashboard"
	RouteApplicantDashboard    = "/applicant/dashboard"
)

// DashboardRoute returns the dashboard root for a role
func DashboardRoute(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return RouteAdminDashboard
	case domain.RoleOrganization:
		return RouteOrganizationDashboard
	default:
		return RouteApplicantDashboard
	}
}

// Evaluate decides whether a protected view renders or redirects. Rules are
// checked in order, first match wins:
//
//  1. auth or role resolution still pending -> loading placeholder
//  2. no authenticated user -> login
//  3. authenticated but no role record -> role selection
//  4. required role set and not equal to the user's role -> the user's own
//     dashboard root, never the other role's content
//  5. otherwise -> allow
//
// required == "" means any authenticated user with a role may pass.
func Evaluate(auth AuthState, role domain.Role, roleState RoleState, required domain.Role) Verdict {
	if auth == AuthPending || (auth == AuthResolved && roleState == RolePending) {
		return Verdict{Decision: DecisionLoading}
	}
	if auth == AuthAnonymous {
		return Verdict{Decision: DecisionRedirectLogin, Target: RouteLogin}
	}
	if roleState == RoleMissing {
		return Verdict{Decision: DecisionRedirectRoleSelection, Target: RouteRoleSelection}
	}
	if required != "" && required != role {
		return Verdict{Decision: DecisionRedirectDashboard, Target: DashboardRoute(role)}
	}
	return Verdict{Decision: DecisionAllow}
}
