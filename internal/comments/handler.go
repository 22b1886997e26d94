package comments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/platform/httpx"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/shared"
)

// Handler exposes comment endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountTaskRoutes registers the routes nested under /api/tasks/{taskID}.
func (h *Handler) MountTaskRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermCommentRead)).Get("/", h.list)
	r.With(h.rbac.RequireAny(rbac.PermCommentCreate)).Post("/", h.create)
}

// MountRoutes registers the routes under /api/comments.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermCommentUpdate, rbac.PermCommentUpdateOwn)).Patch("/{commentID}", h.update)
	r.With(h.rbac.RequireAny(rbac.PermCommentDelete, rbac.PermCommentDeleteOwn)).Delete("/{commentID}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	taskID, ok := httpx.PathID(w, r, "taskID")
	if !ok {
		return
	}
	page, err := h.service.List(r.Context(), principal(r), taskID, shared.PageFromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, "list comments", err)
		return
	}
	httpx.OK(w, http.StatusOK, page)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	taskID, ok := httpx.PathID(w, r, "taskID")
	if !ok {
		return
	}
	var req CommentRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.Create(r.Context(), principal(r), taskID, req)
	if err != nil {
		h.fail(w, "create comment", err)
		return
	}
	httpx.OK(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "commentID")
	if !ok {
		return
	}
	var req CommentRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.Update(r.Context(), principal(r), id, req)
	if err != nil {
		h.fail(w, "update comment", err)
		return
	}
	httpx.OK(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "commentID")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), principal(r), id); err != nil {
		h.fail(w, "delete comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

func principal(r *http.Request) *rbac.Principal {
	p, _ := rbac.PrincipalFromContext(r.Context())
	return p
}
