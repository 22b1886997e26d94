package gate_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/gate"
	"github.com/taskhub/taskhub/internal/rbac"
)

type navigation struct {
	Success bool `json:"success"`
	Data    struct {
		Path     string        `json:"path"`
		Decision gate.Decision `json:"decision"`
	} `json:"data"`
}

func navigate(t *testing.T, target string, p *rbac.Principal) (int, navigation) {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api/navigation", gate.NewHandler(nil, gate.Default()).MountRoutes)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if p != nil {
		req = req.WithContext(rbac.WithPrincipal(req.Context(), p))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	var out navigation
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr.Code, out
}

func TestNavigationWithoutPrincipalRedirectsToLogin(t *testing.T) {
	code, out := navigate(t, "/api/navigation?path=/pm/board", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, gate.RedirectLogin, out.Data.Decision.Outcome)
	assert.Equal(t, "/login?returnTo=%2Fpm%2Fboard", out.Data.Decision.Location)
}

func TestNavigationRootSendsToLanding(t *testing.T) {
	code, out := navigate(t, "/api/navigation", &rbac.Principal{UserID: 5, Roles: []string{"Developer"}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/", out.Data.Path)
	assert.Equal(t, gate.RedirectLanding, out.Data.Decision.Outcome)
	assert.Equal(t, "/developer/dashboard", out.Data.Decision.Location)
}

func TestNavigationRootResumesReturnTo(t *testing.T) {
	code, out := navigate(t, "/api/navigation?path=/&returnTo=%2Ftasks%2F9", &rbac.Principal{UserID: 5, Roles: []string{"developer"}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, gate.RedirectReturn, out.Data.Decision.Outcome)
	assert.Equal(t, "/tasks/9", out.Data.Decision.Location)
}

func TestNavigationRoleMismatch(t *testing.T) {
	code, out := navigate(t, "/api/navigation?path=/admin/users", &rbac.Principal{UserID: 5, Roles: []string{"tester"}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, gate.RedirectLanding, out.Data.Decision.Outcome)
	assert.Equal(t, "/tester/dashboard", out.Data.Decision.Location)

	_, out = navigate(t, "/api/navigation?path=/admin/users", &rbac.Principal{UserID: 1, Roles: []string{"admin"}})
	assert.Equal(t, gate.Allow, out.Data.Decision.Outcome)
}

func TestNavigationRejectsForeignPath(t *testing.T) {
	code, _ := navigate(t, "/api/navigation?path=https://evil.example/x", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
