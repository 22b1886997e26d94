package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/platform/httpx"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/roles"
	"github.com/taskhub/taskhub/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers user routes. Callers mount it inside an admin-only group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Patch("/{id}", h.updateUser)
	r.Put("/{id}/roles", h.setRoles)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListUsers(r.Context(), shared.PageFromQuery(r.URL.Query()))
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, page)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.UpdateUser(r.Context(), actorID(r), id, req)
	if err != nil {
		h.logger.Warn("update user failed", slog.Int64("user_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, user)
}

func (h *Handler) setRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var req SetRolesRequest
	if err := httpx.Decode(r, &req); err != nil {
		if errors.Is(err, roles.ErrMalformedRef) {
			h.logger.Warn("malformed role reference", slog.Int64("user_id", id), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.SetRoles(r.Context(), actorID(r), id, req.Roles)
	if err != nil {
		h.logger.Warn("set roles failed", slog.Int64("user_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, user)
}

func actorID(r *http.Request) int64 {
	if p, ok := rbac.PrincipalFromContext(r.Context()); ok {
		return p.UserID
	}
	return 0
}
