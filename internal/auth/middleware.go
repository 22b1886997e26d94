package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskhub/taskhub/internal/platform/httpx"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/shared"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified token claims of the request.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey{}).(*Claims)
	return c, ok && c != nil
}

// RevocationChecker reports revoked token IDs.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AccountLoader returns the current state of an active account. Service satisfies it.
type AccountLoader interface {
	Profile(ctx context.Context, userID int64) (*User, error)
}

// Middleware resolves bearer tokens into principals. With Accounts set, roles and the
// active flag come from the account store on every request and the token only proves
// identity; without it the roles carried in the token are trusted until expiry.
type Middleware struct {
	Tokens      *TokenManager
	Revocations RevocationChecker
	Accounts    AccountLoader
	Logger      *slog.Logger
}

// Authenticate attaches an rbac.Principal for requests carrying a valid bearer token.
// Requests without credentials pass through anonymously so the guard can answer 401.
// Presented but unusable credentials are rejected here.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		raw, ok := bearerToken(header)
		if !ok {
			httpx.Fail(w, http.StatusUnauthorized, httpx.KindUnauthenticated, "invalid authorization header")
			return
		}
		claims, err := m.Tokens.Verify(raw)
		if err != nil {
			m.debug("token rejected", slog.Any("error", err))
			httpx.Fail(w, http.StatusUnauthorized, httpx.KindUnauthenticated, "invalid or expired token")
			return
		}
		if m.Revocations != nil {
			revoked, err := m.Revocations.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("revocation lookup failed", slog.Any("error", err))
				}
				httpx.Fail(w, http.StatusServiceUnavailable, httpx.KindInternal, "authentication unavailable")
				return
			}
			if revoked {
				httpx.Fail(w, http.StatusUnauthorized, httpx.KindUnauthenticated, "token revoked")
				return
			}
		}
		userID, _ := claims.UserID()
		principal := &rbac.Principal{UserID: userID, Email: claims.Email, Roles: claims.Roles}
		if m.Accounts != nil {
			user, err := m.Accounts.Profile(r.Context(), userID)
			switch {
			case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrUnauthenticated):
				m.debug("account unusable", slog.Int64("user_id", userID), slog.Any("error", err))
				httpx.Fail(w, http.StatusUnauthorized, httpx.KindUnauthenticated, "account disabled")
				return
			case err != nil:
				if m.Logger != nil {
					m.Logger.Error("account lookup failed", slog.Int64("user_id", userID), slog.Any("error", err))
				}
				httpx.Fail(w, http.StatusServiceUnavailable, httpx.KindInternal, "authentication unavailable")
				return
			}
			principal.Email = user.Email
			principal.Roles = user.RoleNames()
		}
		ctx := rbac.WithPrincipal(r.Context(), principal)
		ctx = context.WithValue(ctx, claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) debug(msg string, args ...any) {
	if m.Logger != nil {
		m.Logger.Debug(msg, args...)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
