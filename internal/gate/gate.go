// Package gate decides client-side navigation for the single page frontend. Its decisions
// are advisory: every protected API still goes through the rbac guard.
package gate

import (
	"net/url"
	"strings"

	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/roles"
)

// Status is the resolution state of the client's authentication check.
type Status int

const (
	Loading Status = iota
	Unauthenticated
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// AuthState is what the client knows about its session at decision time.
type AuthState struct {
	Status Status
	Roles  []roles.Ref
}

// Outcome is the kind of navigation decision.
type Outcome string

const (
	Wait          Outcome = "wait"
	Allow         Outcome = "allow"
	RedirectLogin Outcome = "redirect_login"
	// RedirectLanding sends the principal to its role landing page, either from the root
	// path or away from a route its roles do not admit.
	RedirectLanding Outcome = "redirect_landing"
	// RedirectReturn resumes the destination preserved across login.
	RedirectReturn Outcome = "redirect_return"
)

// Decision is the gate's answer for one navigation.
type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Location string  `json:"location,omitempty"`
}

// Route restricts a path prefix to a set of roles. An empty Allow admits any
// authenticated principal.
type Route struct {
	Path  string
	Allow []string
}

const (
	RootPath     = "/"
	LoginPath    = "/login"
	FallbackPath = "/dashboard"
)

// landingOrder is the priority used when a principal holds several roles.
var landingOrder = []struct {
	role string
	path string
}{
	{rbac.RoleAdmin, "/admin/dashboard"},
	{rbac.RoleProjectManager, "/pm/dashboard"},
	{rbac.RoleDeveloper, "/developer/dashboard"},
	{rbac.RoleTester, "/tester/dashboard"},
	{rbac.RoleUser, "/user/dashboard"},
}

// DefaultRoutes is the frontend route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/admin", Allow: []string{rbac.RoleAdmin}},
		{Path: "/pm", Allow: []string{rbac.RoleAdmin, rbac.RoleProjectManager}},
		{Path: "/developer", Allow: []string{rbac.RoleDeveloper}},
		{Path: "/tester", Allow: []string{rbac.RoleTester}},
		{Path: "/user", Allow: []string{rbac.RoleUser}},
		{Path: "/projects"},
		{Path: "/tasks"},
		{Path: FallbackPath},
	}
}

// Gate evaluates navigations against a route table.
type Gate struct {
	routes []Route
}

// New builds a gate. Longer paths win when prefixes overlap.
func New(routes []Route) *Gate {
	sorted := make([]Route, len(routes))
	copy(sorted, routes)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && len(sorted[j].Path) > len(sorted[j-1].Path); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return &Gate{routes: sorted}
}

// Default builds a gate over DefaultRoutes.
func Default() *Gate {
	return New(DefaultRoutes())
}

// Decide evaluates a navigation to target. returnTo is the destination preserved across
// login and is only honoured on the root path, as RedirectReturn. The destination itself
// is decided on the next navigation.
func (g *Gate) Decide(state AuthState, target, returnTo string) Decision {
	switch state.Status {
	case Loading:
		return Decision{Outcome: Wait}
	case Authenticated:
	default:
		return Decision{Outcome: RedirectLogin, Location: LoginLocation(target)}
	}

	path := pathOf(target)
	if path == RootPath {
		if IsLocalPath(returnTo) && pathOf(returnTo) != RootPath {
			return Decision{Outcome: RedirectReturn, Location: returnTo}
		}
		return Decision{Outcome: RedirectLanding, Location: Landing(state.Roles)}
	}

	route, ok := g.match(path)
	if !ok || len(route.Allow) == 0 {
		return Decision{Outcome: Allow}
	}
	if !roles.HasAnyRole(state.Roles, route.Allow...) {
		return Decision{Outcome: RedirectLanding, Location: Landing(state.Roles)}
	}
	return Decision{Outcome: Allow}
}

func (g *Gate) match(path string) (Route, bool) {
	for _, r := range g.routes {
		if path == r.Path || strings.HasPrefix(path, strings.TrimSuffix(r.Path, "/")+"/") {
			return r, true
		}
	}
	return Route{}, false
}

// Landing returns the default destination for the highest priority role held.
func Landing(refs []roles.Ref) string {
	for _, l := range landingOrder {
		if roles.HasAnyRole(refs, l.role) {
			return l.path
		}
	}
	return FallbackPath
}

// LoginLocation is the login entry point preserving target for resumption.
func LoginLocation(target string) string {
	if !IsLocalPath(target) || pathOf(target) == LoginPath {
		return LoginPath
	}
	return LoginPath + "?returnTo=" + url.QueryEscape(target)
}

// IsLocalPath reports whether p is a same-origin absolute path.
func IsLocalPath(p string) bool {
	if p == "" || p[0] != '/' || strings.HasPrefix(p, "//") || strings.ContainsRune(p, '\\') {
		return false
	}
	u, err := url.Parse(p)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

func pathOf(target string) string {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return RootPath
	}
	return target
}
