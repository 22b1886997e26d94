package projects

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/shared"
)

type memRepo struct {
	projects map[int64]*Project
	members  map[int64]map[int64]bool
	nextID   int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		projects: map[int64]*Project{1: {ID: 1, Name: "Apollo", OwnerID: 10, CreatedAt: time.Now()}},
		members:  map[int64]map[int64]bool{1: {10: true}},
		nextID:   2,
	}
}

func (m *memRepo) ListProjects(ctx context.Context, page shared.PageRequest) ([]Project, int, error) {
	var out []Project
	for id := int64(1); id < m.nextID; id++ {
		if p, ok := m.projects[id]; ok {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) GetProject(ctx context.Context, id int64) (*Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) CreateProject(ctx context.Context, p Project) (*Project, error) {
	for _, existing := range m.projects {
		if existing.Name == p.Name {
			return nil, shared.ErrConflict
		}
	}
	p.ID = m.nextID
	m.nextID++
	m.projects[p.ID] = &p
	m.members[p.ID] = map[int64]bool{p.OwnerID: true}
	return &p, nil
}

func (m *memRepo) UpdateProject(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) DeleteProject(ctx context.Context, id int64) error {
	if _, ok := m.projects[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *memRepo) ListMembers(ctx context.Context, projectID int64) ([]Member, error) {
	var out []Member
	for uid := range m.members[projectID] {
		out = append(out, Member{ProjectID: projectID, UserID: uid})
	}
	return out, nil
}

func (m *memRepo) AddMember(ctx context.Context, projectID, userID int64) error {
	if m.members[projectID][userID] {
		return shared.ErrConflict
	}
	m.members[projectID][userID] = true
	return nil
}

func (m *memRepo) RemoveMember(ctx context.Context, projectID, userID int64) error {
	if !m.members[projectID][userID] {
		return shared.ErrNotFound
	}
	delete(m.members[projectID], userID)
	return nil
}

func newTestRouter(repo Repository) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo), rbac.Middleware{Table: rbac.DefaultTable()})
	r := chi.NewRouter()
	r.Route("/api/projects", h.MountRoutes)
	return r
}

func call(t *testing.T, h http.Handler, method, path, body string, roles ...string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if roles != nil {
		req = req.WithContext(rbac.WithPrincipal(req.Context(), &rbac.Principal{UserID: 10, Roles: roles}))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr.Code, out
}

func TestCreateProjectIsGuarded(t *testing.T) {
	h := newTestRouter(newMemRepo())

	code, out := call(t, h, http.MethodPost, "/api/projects", `{"name":"Gemini"}`, "user")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", out["error"])

	code, _ = call(t, h, http.MethodPost, "/api/projects", `{"name":"Gemini"}`, "developer")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, h, http.MethodPost, "/api/projects", `{"name":"Gemini"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, out = call(t, h, http.MethodPost, "/api/projects", `{"name":"Gemini"}`, "project_manager")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Gemini", out["data"].(map[string]any)["name"])
	assert.Equal(t, float64(10), out["data"].(map[string]any)["ownerId"])
}

func TestCreateProjectConflict(t *testing.T) {
	code, out := call(t, newTestRouter(newMemRepo()), http.MethodPost, "/api/projects", `{"name":"Apollo"}`, "admin")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", out["error"])
}

func TestCreateProjectValidates(t *testing.T) {
	code, _ := call(t, newTestRouter(newMemRepo()), http.MethodPost, "/api/projects", `{"name":""}`, "admin")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEveryKnownRoleCanReadProjects(t *testing.T) {
	h := newTestRouter(newMemRepo())
	for _, role := range rbac.KnownRoles() {
		code, _ := call(t, h, http.MethodGet, "/api/projects/1", "", role)
		assert.Equal(t, http.StatusOK, code, role)
	}
	code, _ := call(t, h, http.MethodGet, "/api/projects/99", "", "user")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDeleteProjectRequiresManager(t *testing.T) {
	repo := newMemRepo()
	h := newTestRouter(repo)

	code, _ := call(t, h, http.MethodDelete, "/api/projects/1", "", "tester")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Contains(t, repo.projects, int64(1))

	code, _ = call(t, h, http.MethodDelete, "/api/projects/1", "", "Project_Manager")
	assert.Equal(t, http.StatusNoContent, code)
	assert.NotContains(t, repo.projects, int64(1))
}

func TestMembership(t *testing.T) {
	repo := newMemRepo()
	h := newTestRouter(repo)

	code, _ := call(t, h, http.MethodPost, "/api/projects/1/members", `{"userId":20}`, "developer")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, h, http.MethodPost, "/api/projects/1/members", `{"userId":20}`, "project_manager")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = call(t, h, http.MethodPost, "/api/projects/1/members", `{"userId":20}`, "project_manager")
	assert.Equal(t, http.StatusConflict, code)

	code, out := call(t, h, http.MethodGet, "/api/projects/1/members", "", "developer")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["data"], 2)

	code, _ = call(t, h, http.MethodDelete, "/api/projects/1/members/10", "", "project_manager")
	assert.Equal(t, http.StatusBadRequest, code, "owner stays")

	code, _ = call(t, h, http.MethodDelete, "/api/projects/1/members/20", "", "project_manager")
	assert.Equal(t, http.StatusNoContent, code)
}

func TestUpdateProject(t *testing.T) {
	h := newTestRouter(newMemRepo())
	code, out := call(t, h, http.MethodPatch, "/api/projects/1", `{"description":"moonshot"}`, "project_manager")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "moonshot", out["data"].(map[string]any)["description"])

	code, _ = call(t, h, http.MethodPatch, "/api/projects/1", `{"name":"   "}`, "project_manager")
	assert.Equal(t, http.StatusBadRequest, code)
}
