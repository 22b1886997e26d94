package comments

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/events"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/shared"
)

type mockRepository struct {
	tasks    map[int64]TaskRef
	comments map[int64]*Comment
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		tasks: map[int64]TaskRef{
			10: {ID: 10, ProjectID: 7, AssigneeID: 100},
			11: {ID: 11, ProjectID: 7},
		},
		comments: map[int64]*Comment{
			1: {ID: 1, TaskID: 10, ProjectID: 7, AuthorID: 100, Body: "first"},
			2: {ID: 2, TaskID: 10, ProjectID: 7, AuthorID: 200, Body: "second"},
		},
		nextID: 3,
	}
}

func (m *mockRepository) TaskRef(ctx context.Context, taskID int64) (TaskRef, error) {
	ref, ok := m.tasks[taskID]
	if !ok {
		return TaskRef{}, shared.ErrNotFound
	}
	return ref, nil
}

func (m *mockRepository) ListComments(ctx context.Context, taskID int64, page shared.PageRequest) ([]Comment, int, error) {
	var out []Comment
	for id := int64(1); id < m.nextID; id++ {
		if c, ok := m.comments[id]; ok && c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) GetComment(ctx context.Context, id int64) (*Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepository) CreateComment(ctx context.Context, c Comment) (*Comment, error) {
	c.ID = m.nextID
	c.ProjectID = m.tasks[c.TaskID].ProjectID
	m.nextID++
	m.comments[c.ID] = &c
	cp := c
	return &cp, nil
}

func (m *mockRepository) UpdateComment(ctx context.Context, id int64, body string) (*Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c.Body = body
	cp := *c
	return &cp, nil
}

func (m *mockRepository) DeleteComment(ctx context.Context, id int64) error {
	if _, ok := m.comments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

type recordingPublisher struct {
	notices []events.Notice
}

func (p *recordingPublisher) Publish(ctx context.Context, n events.Notice) error {
	p.notices = append(p.notices, n)
	return nil
}

func actor(id int64, roles ...string) *rbac.Principal {
	return &rbac.Principal{UserID: id, Roles: roles}
}

func newService(repo Repository, pub events.Publisher) *Service {
	return NewService(repo, rbac.DefaultTable(), pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateStampsAuthorAndNotifies(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(newMockRepository(), pub)

	c, err := svc.Create(context.Background(), actor(300, "tester"), 10, CommentRequest{Body: " looks good "})
	require.NoError(t, err)
	assert.Equal(t, int64(300), c.AuthorID)
	assert.Equal(t, "looks good", c.Body)

	require.Len(t, pub.notices, 1)
	n := pub.notices[0]
	assert.Equal(t, events.CommentCreated, n.Type)
	assert.Equal(t, int64(7), n.ProjectID)
	assert.Equal(t, int64(10), n.TaskID)
	assert.Equal(t, c.ID, n.CommentID)

	_, err = svc.Create(context.Background(), actor(300, "tester"), 99, CommentRequest{Body: "orphan"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Create(context.Background(), actor(300, "tester"), 10, CommentRequest{Body: "   "})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestListAndCreateFollowTaskVisibility(t *testing.T) {
	repo := newMockRepository()
	pub := &recordingPublisher{}
	svc := newService(repo, pub)
	ctx := context.Background()
	page := shared.PageRequest{Page: 1, PerPage: 20}

	got, err := svc.List(ctx, actor(100, "user"), 10, page)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	_, err = svc.List(ctx, actor(200, "user"), 10, page)
	assert.ErrorIs(t, err, shared.ErrForbidden, "user reads only assigned tasks")

	_, err = svc.List(ctx, actor(100, "user"), 11, page)
	assert.ErrorIs(t, err, shared.ErrForbidden, "unassigned task has no owner")

	_, err = svc.List(ctx, actor(0, "user"), 11, page)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.List(ctx, actor(200, "developer"), 11, page)
	require.NoError(t, err)

	_, err = svc.Create(ctx, actor(200, "user"), 10, CommentRequest{Body: "sneaky"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Len(t, repo.comments, 2)
	assert.Empty(t, pub.notices)

	c, err := svc.Create(ctx, actor(100, "user"), 10, CommentRequest{Body: "mine"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), c.AuthorID)
}

func TestUpdateAndDeleteScopedByAuthor(t *testing.T) {
	repo := newMockRepository()
	pub := &recordingPublisher{}
	svc := newService(repo, pub)
	ctx := context.Background()

	_, err := svc.Update(ctx, actor(100, "developer"), 1, CommentRequest{Body: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", repo.comments[1].Body)

	_, err = svc.Update(ctx, actor(100, "developer"), 2, CommentRequest{Body: "hijack"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, "second", repo.comments[2].Body)

	_, err = svc.Update(ctx, actor(900, "project_manager"), 2, CommentRequest{Body: "moderated"})
	require.NoError(t, err)

	err = svc.Delete(ctx, actor(100, "user"), 1)
	assert.ErrorIs(t, err, shared.ErrForbidden, "user role holds no delete grant")

	require.NoError(t, svc.Delete(ctx, actor(100, "tester"), 1))
	assert.NotContains(t, repo.comments, int64(1))

	assert.ErrorIs(t, svc.Delete(ctx, actor(1, "admin"), 1), shared.ErrNotFound)

	require.Len(t, pub.notices, 3)
	assert.Equal(t, events.CommentDeleted, pub.notices[2].Type)
	assert.Equal(t, int64(1), pub.notices[2].CommentID)
}

func TestHandlerGuards(t *testing.T) {
	repo := newMockRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, newService(repo, nil), rbac.Middleware{Table: rbac.DefaultTable()})
	r := chi.NewRouter()
	r.Route("/api/tasks/{taskID}/comments", h.MountTaskRoutes)
	r.Route("/api/comments", h.MountRoutes)

	do := func(method, path, body string, p *rbac.Principal) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if p != nil {
			req = req.WithContext(rbac.WithPrincipal(req.Context(), p))
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/tasks/10/comments", "", nil))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/tasks/10/comments", "", actor(100, "user")))
	assert.Equal(t, http.StatusForbidden, do(http.MethodGet, "/api/tasks/10/comments", "", actor(200, "user")))
	assert.Equal(t, http.StatusForbidden, do(http.MethodGet, "/api/tasks/10/comments", "", actor(100, "intern")))
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/tasks/99/comments", "", actor(100, "user")))
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/api/tasks/10/comments", `{"body":"hi"}`, actor(100, "user")))
	assert.Equal(t, http.StatusForbidden, do(http.MethodPost, "/api/tasks/10/comments", `{"body":"hi"}`, actor(200, "user")))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/tasks/10/comments", `{"body":""}`, actor(100, "user")))
	assert.Equal(t, http.StatusForbidden, do(http.MethodPatch, "/api/comments/2", `{"body":"x"}`, actor(100, "user")))
	assert.Equal(t, http.StatusOK, do(http.MethodPatch, "/api/comments/1", `{"body":"x"}`, actor(100, "user")))
	assert.Equal(t, http.StatusForbidden, do(http.MethodDelete, "/api/comments/1", "", actor(100, "user")))
	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/api/comments/2", "", actor(1, "Admin")))
}
