package comments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskhub/taskhub/internal/events"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/shared"
)

// Service applies comment rules. Edits and deletions honour the ":own" scope by author.
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

// List returns a task's comments, oldest first. Callers see the comments of tasks they
// may read.
func (s *Service) List(ctx context.Context, actor *rbac.Principal, taskID int64, page shared.PageRequest) (shared.Page[Comment], error) {
	if _, err := s.visibleTask(ctx, actor, taskID); err != nil {
		return shared.Page[Comment]{}, err
	}
	items, total, err := s.repo.ListComments(ctx, taskID, page)
	if err != nil {
		return shared.Page[Comment]{}, err
	}
	return shared.NewPage(items, page, total), nil
}

// Create adds a comment authored by actor on a task actor may read.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, taskID int64, req CommentRequest) (*Comment, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", shared.ErrValidation)
	}
	if _, err := s.visibleTask(ctx, actor, taskID); err != nil {
		return nil, err
	}
	c, err := s.repo.CreateComment(ctx, Comment{TaskID: taskID, AuthorID: actor.UserID, Body: body})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, events.CommentCreated, c, actor)
	return c, nil
}

// Update edits a comment body.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id int64, req CommentRequest) (*Comment, error) {
	current, err := s.authorize(ctx, actor, id, rbac.PermCommentUpdate, rbac.PermCommentUpdateOwn)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", shared.ErrValidation)
	}
	c, err := s.repo.UpdateComment(ctx, current.ID, body)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, events.CommentUpdated, c, actor)
	return c, nil
}

// Delete removes a comment.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, id int64) error {
	current, err := s.authorize(ctx, actor, id, rbac.PermCommentDelete, rbac.PermCommentDeleteOwn)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteComment(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, events.CommentDeleted, current, actor)
	return nil
}

func (s *Service) visibleTask(ctx context.Context, actor *rbac.Principal, taskID int64) (TaskRef, error) {
	ref, err := s.repo.TaskRef(ctx, taskID)
	if err != nil {
		return TaskRef{}, err
	}
	if !s.table.Scope(actor.Roles, rbac.PermTaskRead, rbac.PermTaskReadOwn).Permits(actor.UserID, ref.AssigneeID) {
		return TaskRef{}, fmt.Errorf("comments: task %d: %w", taskID, shared.ErrForbidden)
	}
	return ref, nil
}

func (s *Service) authorize(ctx context.Context, actor *rbac.Principal, id int64, full, own string) (*Comment, error) {
	c, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.table.Scope(actor.Roles, full, own).Permits(actor.UserID, c.AuthorID) {
		return nil, fmt.Errorf("comments: %s on %d: %w", full, id, shared.ErrForbidden)
	}
	return c, nil
}

func (s *Service) notify(ctx context.Context, typ string, c *Comment, actor *rbac.Principal) {
	n := events.NewNotice(typ, c.ProjectID, actor.UserID)
	n.TaskID = c.TaskID
	n.CommentID = c.ID
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.Warn("comment notice dropped", slog.String("type", typ), slog.Int64("comment_id", c.ID), slog.Any("error", err))
	}
}
