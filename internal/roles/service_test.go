package roles

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/rbac"
)

type stubRepo struct {
	roles []Role
	err   error
}

func (s stubRepo) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roles, s.err
}

func TestListRolesAttachesTablePermissions(t *testing.T) {
	svc := NewService(stubRepo{roles: []Role{
		{ID: 1, Name: "Admin"},
		{ID: 2, Name: "developer"},
		{ID: 9, Name: "legacy"},
	}}, rbac.DefaultTable())

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 3)

	assert.Equal(t, "admin", roles[0].Name)
	assert.Equal(t, []string{rbac.Wildcard}, roles[0].Permissions)
	assert.Contains(t, roles[1].Permissions, rbac.PermTaskUpdateOwn)
	assert.Empty(t, roles[2].Permissions)
	assert.NotNil(t, roles[2].Permissions)
}

func TestHandlerMapsRepositoryFailure(t *testing.T) {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(stubRepo{err: errors.New("db down")}, rbac.DefaultTable()))

	rr := httptest.NewRecorder()
	h.listRoles(rr, httptest.NewRequest(http.MethodGet, "/api/admin/roles", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"internal error","error":"internal"}`, rr.Body.String())
}
