package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskhub/taskhub/internal/events"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/shared"
)

// Service applies task rules, including ":own" scoping, and emits change notices.
type Service struct {
	repo      Repository
	table     *rbac.Table
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService builds Service instance. A nil publisher drops notices.
func NewService(repo Repository, table *rbac.Table, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, table: table, publisher: publisher, logger: logger}
}

// List returns a project's tasks. Principals holding only task:read:own see their
// assigned tasks.
func (s *Service) List(ctx context.Context, actor *rbac.Principal, filter ListFilter, page shared.PageRequest) (shared.Page[Task], error) {
	switch s.table.Scope(actor.Roles, rbac.PermTaskRead, rbac.PermTaskReadOwn) {
	case rbac.ScopeNone:
		return shared.Page[Task]{}, fmt.Errorf("tasks: list: %w", shared.ErrForbidden)
	case rbac.ScopeOwn:
		uid := actor.UserID
		filter.AssigneeID = &uid
	}
	items, total, err := s.repo.ListTasks(ctx, filter, page)
	if err != nil {
		return shared.Page[Task]{}, err
	}
	return shared.NewPage(items, page, total), nil
}

// Get loads one task the actor may read.
func (s *Service) Get(ctx context.Context, actor *rbac.Principal, id int64) (*Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.table.Scope(actor.Roles, rbac.PermTaskRead, rbac.PermTaskReadOwn).Permits(actor.UserID, t.OwnerID()) {
		return nil, fmt.Errorf("tasks: get %d: %w", id, shared.ErrForbidden)
	}
	return t, nil
}

// Create stores a task reported by actor.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, projectID int64, req CreateTaskRequest) (*Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", shared.ErrValidation)
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	t, err := s.repo.CreateTask(ctx, Task{
		ProjectID:   projectID,
		Title:       title,
		Description: req.Description,
		Status:      StatusTodo,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
		ReporterID:  actor.UserID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, events.TaskCreated, t, actor)
	return t, nil
}

// Update patches a task. Principals holding only task:update:own may edit tasks assigned
// to them, and may not retitle or reassign them.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id int64, req UpdateTaskRequest) (*Task, error) {
	current, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	scope := s.table.Scope(actor.Roles, rbac.PermTaskUpdate, rbac.PermTaskUpdateOwn)
	if !scope.Permits(actor.UserID, current.OwnerID()) {
		return nil, fmt.Errorf("tasks: update %d: %w", id, shared.ErrForbidden)
	}
	if scope == rbac.ScopeOwn && !req.restrictedToOwn() {
		return nil, fmt.Errorf("tasks: update %d: reassigning or retitling needs task:update: %w", id, shared.ErrForbidden)
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be blank", shared.ErrValidation)
	}
	t, err := s.repo.UpdateTask(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, events.TaskUpdated, t, actor)
	return t, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, id int64) error {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, events.TaskDeleted, t, actor)
	return nil
}

func (s *Service) notify(ctx context.Context, typ string, t *Task, actor *rbac.Principal) {
	n := events.NewNotice(typ, t.ProjectID, actor.UserID)
	n.TaskID = t.ID
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.Warn("task notice dropped", slog.String("type", typ), slog.Int64("task_id", t.ID), slog.Any("error", err))
	}
}
