package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/security"
	"github.com/yourorg/internhub/internal/security/audit"
	"github.com/yourorg/internhub/internal/security/auth"
	"github.com/yourorg/internhub/internal/security/ratelimit"
)

type ClaimsContextKey struct{}
type RoleContextKey struct{}

// publicPath reports whether a path is reachable without a session
func publicPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics" ||
		strings.HasPrefix(path, "/api/auth/") ||
		strings.HasPrefix(path, "/files/")
}

// JWTMiddleware parses the Authorization header when present and stores the
// claims in the request context. Requests without a token pass through
// anonymously; the per-route guard decides whether that is acceptable. A
// malformed or expired token is always rejected.
func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				// WebSocket clients cannot set headers; accept ?token=
				if t := r.URL.Query().Get("token"); t != "" && strings.HasPrefix(r.URL.Path, "/ws/") {
					authHeader = "Bearer " + t
				}
			}
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				writeGuardResponse(w, http.StatusUnauthorized, "invalid auth", security.RouteLogin)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token rejected", slog.String("error", err.Error()))
				writeGuardResponse(w, http.StatusUnauthorized, "invalid token", security.RouteLogin)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole builds the access-guard middleware for a protected route. The
// required role may be empty, meaning any authenticated user holding a role.
// The role record is fetched fresh per request; a fetch failure is treated
// exactly like a missing role so errors fail towards onboarding, not access.
func RequireRole(roles domain.RoleRepository, log *slog.Logger, required domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())

			authState := security.AuthAnonymous
			if claims != nil {
				authState = security.AuthResolved
			}

			roleState := security.RoleMissing
			var role domain.Role
			if claims != nil {
				record, err := roles.GetByUserID(claims.UserID)
				if err != nil {
					if !errors.Is(err, domain.ErrNotFound) {
						log.Warn("role fetch failed, failing closed",
							slog.String("user_id", claims.UserID),
							slog.String("error", err.Error()),
						)
					}
				} else {
					roleState = security.RoleResolved
					role = record.Role
				}
			}

			verdict := security.Evaluate(authState, role, roleState, required)
			switch verdict.Decision {
			case security.DecisionAllow:
				ctx := context.WithValue(r.Context(), RoleContextKey{}, role)
				next.ServeHTTP(w, r.WithContext(ctx))
			case security.DecisionRedirectLogin:
				writeGuardResponse(w, http.StatusUnauthorized, "authentication required", verdict.Target)
			case security.DecisionRedirectRoleSelection:
				writeGuardResponse(w, http.StatusForbidden, "role selection required", verdict.Target)
			case security.DecisionRedirectDashboard:
				writeGuardResponse(w, http.StatusForbidden, "wrong role for this view", verdict.Target)
			default:
				writeGuardResponse(w, http.StatusServiceUnavailable, "session not resolved", "")
			}
		})
	}
}

// RateLimitMiddleware limits requests per authenticated user. Anonymous
// requests on public paths are not limited here.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			userID := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				userID = claims.UserID
			}

			if !limiter.Allow(userID) {
				log.Warn("rate limit exceeded", slog.String("user_id", userID))
				writeGuardResponse(w, http.StatusTooManyRequests, "rate limit exceeded", "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records mutating marketplace actions
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				userID = claims.UserID
			}

			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/api/applications":
				auditLog.LogAction(r.Context(), userID, "apply", "application", "", "initiated", "")
			case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/status"):
				auditLog.LogAction(r.Context(), userID, "status_change", "application", r.PathValue("id"), "initiated", "")
			case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/approval"):
				auditLog.LogAction(r.Context(), userID, "approval", "organization", r.PathValue("id"), "initiated", "")
			case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/internships/"):
				auditLog.LogAction(r.Context(), userID, "delete", "internship", r.PathValue("id"), "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeGuardResponse(w http.ResponseWriter, status int, message, redirect string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": message}
	if redirect != "" {
		body["redirect"] = redirect
	}
	json.NewEncoder(w).Encode(body)
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

func GetRoleFromContext(ctx context.Context) domain.Role {
	if v := ctx.Value(RoleContextKey{}); v != nil {
		return v.(domain.Role)
	}
	return ""
}
