package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/taskhub/taskhub/internal/gate"
	"github.com/taskhub/taskhub/internal/platform/httpx"
	"github.com/taskhub/taskhub/internal/rbac"
)

// Revoker records logged-out tokens.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	tokens      *TokenManager
	revocations Revoker
	gate        *gate.Gate
	profiles    singleflight.Group
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tokens *TokenManager, revocations Revoker, g *gate.Gate) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		tokens:      tokens,
		revocations: revocations,
		gate:        g,
	}
}

// MountRoutes registers the authenticated auth routes. Login is mounted separately so
// it can carry its own rate limit.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Post("/logout", h.logout)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	ReturnTo string `json:"returnTo" validate:"omitempty,max=2048"`
}

type loginResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	User       Profile   `json:"user"`
	RedirectTo string    `json:"redirectTo"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("login rejected", slog.String("email", req.Email), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	token, claims, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	profile := ProfileOf(user)
	decision := h.gate.Decide(gate.AuthState{Status: gate.Authenticated, Roles: profile.Roles}, gate.RootPath, req.ReturnTo)
	h.logger.Info("login", slog.Int64("user_id", user.ID), slog.Any("roles", claims.Roles))
	httpx.OK(w, http.StatusOK, loginResponse{
		Token:      token,
		ExpiresAt:  claims.ExpiresAt.Time,
		User:       profile,
		RedirectTo: decision.Location,
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, httpx.KindUnauthenticated, "authentication required")
		return
	}
	key := strconv.FormatInt(principal.UserID, 10)
	ctx := context.WithoutCancel(r.Context())
	v, err, _ := h.profiles.Do(key, func() (any, error) {
		user, err := h.service.Profile(ctx, principal.UserID)
		if err != nil {
			return nil, err
		}
		return ProfileOf(user), nil
	})
	if err != nil {
		h.logger.Warn("load profile", slog.Int64("user_id", principal.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, v)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, httpx.KindUnauthenticated, "authentication required")
		return
	}
	if err := h.revocations.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		h.logger.Error("revoke token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
