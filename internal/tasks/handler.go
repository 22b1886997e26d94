package tasks

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/platform/httpx"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/shared"
)

// Handler exposes task endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountProjectRoutes registers the task routes nested under /api/projects/{id}.
func (h *Handler) MountProjectRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermTaskRead, rbac.PermTaskReadOwn)).Get("/", h.list)
	r.With(h.rbac.RequireAny(rbac.PermTaskCreate)).Post("/", h.create)
}

// MountRoutes registers the routes under /api/tasks.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermTaskRead, rbac.PermTaskReadOwn)).Get("/{taskID}", h.get)
	r.With(h.rbac.RequireAny(rbac.PermTaskUpdate, rbac.PermTaskUpdateOwn)).Patch("/{taskID}", h.update)
	r.With(h.rbac.RequireAny(rbac.PermTaskDelete)).Delete("/{taskID}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	filter := ListFilter{ProjectID: projectID, Status: Status(r.URL.Query().Get("status"))}
	page, err := h.service.List(r.Context(), principal(r), filter, shared.PageFromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, "list tasks", err)
		return
	}
	httpx.OK(w, http.StatusOK, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "taskID")
	if !ok {
		return
	}
	t, err := h.service.Get(r.Context(), principal(r), id)
	if err != nil {
		h.fail(w, "get task", err)
		return
	}
	httpx.OK(w, http.StatusOK, t)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	t, err := h.service.Create(r.Context(), principal(r), projectID, req)
	if err != nil {
		h.fail(w, "create task", err)
		return
	}
	httpx.OK(w, http.StatusCreated, t)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "taskID")
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	t, err := h.service.Update(r.Context(), principal(r), id, req)
	if err != nil {
		h.fail(w, "update task", err)
		return
	}
	httpx.OK(w, http.StatusOK, t)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "taskID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), principal(r), id); err != nil {
		h.fail(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

// principal is set by the guard on every route this handler mounts.
func principal(r *http.Request) *rbac.Principal {
	p, _ := rbac.PrincipalFromContext(r.Context())
	return p
}
