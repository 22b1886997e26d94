package gate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/platform/httpx"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/roles"
)

// Handler answers navigation questions for clients that render their own pages.
type Handler struct {
	logger *slog.Logger
	gate   *Gate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, g *Gate) *Handler {
	if g == nil {
		g = Default()
	}
	return &Handler{logger: logger, gate: g}
}

// MountRoutes registers GET / on the given router. The route is public; a missing
// principal is reported as unauthenticated instead of being rejected.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.decide)
}

type navigationResponse struct {
	Path     string   `json:"path"`
	Decision Decision `json:"decision"`
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := q.Get("path")
	if target == "" {
		target = RootPath
	}
	if !IsLocalPath(target) {
		httpx.Fail(w, http.StatusBadRequest, httpx.KindValidation, "path must be a local path")
		return
	}

	state := AuthState{Status: Unauthenticated}
	if p, ok := rbac.PrincipalFromContext(r.Context()); ok {
		state = AuthState{Status: Authenticated, Roles: roles.Refs(p.Roles...)}
	}
	decision := h.gate.Decide(state, target, q.Get("returnTo"))
	if h.logger != nil {
		h.logger.Debug("navigation decided",
			slog.String("path", target),
			slog.String("status", state.Status.String()),
			slog.String("outcome", string(decision.Outcome)),
		)
	}
	httpx.OK(w, http.StatusOK, navigationResponse{Path: target, Decision: decision})
}
