package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhub/taskhub/internal/shared"
)

// Repository defines task data access.
type Repository interface {
	ListTasks(ctx context.Context, filter ListFilter, page shared.PageRequest) ([]Task, int, error)
	GetTask(ctx context.Context, id int64) (*Task, error)
	CreateTask(ctx context.Context, t Task) (*Task, error)
	UpdateTask(ctx context.Context, id int64, req UpdateTaskRequest) (*Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const taskColumns = `id, project_id, title, description, status, priority, assignee_id, reporter_id, due_date, created_at, updated_at`

func (r *pgRepository) ListTasks(ctx context.Context, filter ListFilter, page shared.PageRequest) ([]Task, int, error) {
	conditions := []string{"project_id = $1"}
	args := []any{filter.ProjectID}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, shared.MapPgError("tasks: count", err)
	}
	args = append(args, page.Limit(), page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY id LIMIT $%d OFFSET $%d`, taskColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.MapPgError("tasks: list", err)
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, shared.MapPgError("tasks: list", err)
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) GetTask(ctx context.Context, id int64) (*Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, shared.MapPgError("tasks: get", err)
	}
	return t, nil
}

func (r *pgRepository) CreateTask(ctx context.Context, t Task) (*Task, error) {
	created, err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (project_id, title, description, status, priority, assignee_id, reporter_id, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns,
		t.ProjectID, t.Title, t.Description, string(t.Status), string(t.Priority), t.AssigneeID, t.ReporterID, t.DueDate,
	))
	if err != nil {
		return nil, shared.MapPgError("tasks: create", err)
	}
	return created, nil
}

func (r *pgRepository) UpdateTask(ctx context.Context, id int64, req UpdateTaskRequest) (*Task, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if req.Title != nil {
		set("title", strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Status != nil {
		set("status", string(*req.Status))
	}
	if req.Priority != nil {
		set("priority", string(*req.Priority))
	}
	if req.AssigneeID != nil {
		set("assignee_id", *req.AssigneeID)
	}
	if req.DueDate != nil {
		set("due_date", *req.DueDate)
	}
	t, err := scanTask(r.pool.QueryRow(ctx,
		`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+taskColumns,
		args...,
	))
	if err != nil {
		return nil, shared.MapPgError("tasks: update", err)
	}
	return t, nil
}

func (r *pgRepository) DeleteTask(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return shared.MapPgError("tasks: delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tasks: delete: %w", shared.ErrNotFound)
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var (
		t        Task
		status   string
		priority string
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &priority,
		&t.AssigneeID, &t.ReporterID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = Status(status)
	t.Priority = Priority(priority)
	return &t, nil
}
