package projects

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/platform/httpx"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/shared"
)

// Handler exposes project and membership endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers project routes under /api/projects.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermProjectRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.With(h.rbac.RequireAny(rbac.PermProjectCreate)).Post("/", h.create)
	r.With(h.rbac.RequireAny(rbac.PermProjectUpdate)).Patch("/{id}", h.update)
	r.With(h.rbac.RequireAny(rbac.PermProjectDelete)).Delete("/{id}", h.delete)

	r.With(h.rbac.RequireAny(rbac.PermMemberRead)).Get("/{id}/members", h.listMembers)
	r.With(h.rbac.RequireAny(rbac.PermMemberCreate)).Post("/{id}/members", h.addMember)
	r.With(h.rbac.RequireAny(rbac.PermMemberDelete)).Delete("/{id}/members/{userID}", h.removeMember)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), shared.PageFromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, "list projects", err)
		return
	}
	httpx.OK(w, http.StatusOK, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get project", err)
		return
	}
	httpx.OK(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	p, err := h.service.Create(r.Context(), principal, req)
	if err != nil {
		h.fail(w, "create project", err)
		return
	}
	h.logger.Info("project created", slog.Int64("project_id", p.ID), slog.Int64("owner_id", p.OwnerID))
	httpx.OK(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, "update project", err)
		return
	}
	httpx.OK(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	members, err := h.service.Members(r.Context(), id)
	if err != nil {
		h.fail(w, "list members", err)
		return
	}
	httpx.OK(w, http.StatusOK, members)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var req AddMemberRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.AddMember(r.Context(), id, req); err != nil {
		h.fail(w, "add member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := httpx.PathID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.service.RemoveMember(r.Context(), id, userID); err != nil {
		h.fail(w, "remove member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
