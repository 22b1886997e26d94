package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskhub/taskhub/internal/observability"
	"github.com/taskhub/taskhub/internal/platform/httpx"
)

const (
	msgUnauthenticated = "authentication required"
	msgForbidden       = "insufficient permissions"
)

// Middleware wires RBAC authorization guards for HTTP handlers.
type Middleware struct {
	Table   *Table
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// RequireAny lets the request through when any principal role holds any of perms.
// A missing principal is rejected as unauthenticated before any lookup.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	if len(required) == 0 {
		panic("rbac: RequireAny needs at least one permission")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.reject(w, r, http.StatusUnauthorized)
				return
			}
			if !m.Table.Allows(principal.Roles, required...) {
				m.reject(w, r, http.StatusForbidden)
				return
			}
			m.allow(r, principal)
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route group on literal membership of the admin role.
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.reject(w, r, http.StatusUnauthorized)
				return
			}
			if !principal.HasRole(RoleAdmin) {
				m.reject(w, r, http.StatusForbidden)
				return
			}
			m.allow(r, principal)
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) allow(r *http.Request, p *Principal) {
	m.Metrics.ObserveAuthz(observability.OutcomeAllowed)
	if m.Logger != nil {
		m.Logger.Debug("rbac allowed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int64("user_id", p.UserID),
		)
	}
}

func (m Middleware) reject(w http.ResponseWriter, r *http.Request, status int) {
	if status == http.StatusUnauthorized {
		m.Metrics.ObserveAuthz(observability.OutcomeUnauthenticated)
		if m.Logger != nil {
			m.Logger.Debug("rbac unauthenticated", slog.String("method", r.Method), slog.String("path", r.URL.Path))
		}
		httpx.Fail(w, status, httpx.KindUnauthenticated, msgUnauthenticated)
		return
	}
	m.Metrics.ObserveAuthz(observability.OutcomeForbidden)
	if m.Logger != nil {
		attrs := []any{slog.String("method", r.Method), slog.String("path", r.URL.Path)}
		if p, ok := PrincipalFromContext(r.Context()); ok {
			attrs = append(attrs, slog.Int64("user_id", p.UserID))
		}
		m.Logger.Info("rbac forbidden", attrs...)
	}
	httpx.Fail(w, status, httpx.KindForbidden, msgForbidden)
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := unique[p]; ok {
			continue
		}
		unique[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
