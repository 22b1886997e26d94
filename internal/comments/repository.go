package comments

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhub/taskhub/internal/shared"
)

// Repository defines comment data access.
type Repository interface {
	// TaskRef returns the project and assignee of the task a comment hangs off.
	TaskRef(ctx context.Context, taskID int64) (TaskRef, error)
	ListComments(ctx context.Context, taskID int64, page shared.PageRequest) ([]Comment, int, error)
	GetComment(ctx context.Context, id int64) (*Comment, error)
	CreateComment(ctx context.Context, c Comment) (*Comment, error)
	UpdateComment(ctx context.Context, id int64, body string) (*Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const selectComment = `
SELECT c.id, c.task_id, t.project_id, c.author_id, c.body, c.created_at, c.updated_at
FROM comments c
JOIN tasks t ON t.id = c.task_id
`

func (r *pgRepository) TaskRef(ctx context.Context, taskID int64) (TaskRef, error) {
	ref := TaskRef{ID: taskID}
	err := r.pool.QueryRow(ctx,
		`SELECT project_id, COALESCE(assignee_id, 0) FROM tasks WHERE id = $1`, taskID,
	).Scan(&ref.ProjectID, &ref.AssigneeID)
	if err != nil {
		return TaskRef{}, shared.MapPgError("comments: task ref", err)
	}
	return ref, nil
}

func (r *pgRepository) ListComments(ctx context.Context, taskID int64, page shared.PageRequest) ([]Comment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE task_id = $1`, taskID).Scan(&total); err != nil {
		return nil, 0, shared.MapPgError("comments: count", err)
	}
	rows, err := r.pool.Query(ctx, selectComment+`WHERE c.task_id = $1 ORDER BY c.created_at, c.id LIMIT $2 OFFSET $3`,
		taskID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, shared.MapPgError("comments: list", err)
	}
	defer rows.Close()
	var out []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, shared.MapPgError("comments: list", err)
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) GetComment(ctx context.Context, id int64) (*Comment, error) {
	c, err := scanComment(r.pool.QueryRow(ctx, selectComment+`WHERE c.id = $1`, id))
	if err != nil {
		return nil, shared.MapPgError("comments: get", err)
	}
	return c, nil
}

func (r *pgRepository) CreateComment(ctx context.Context, c Comment) (*Comment, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO comments (task_id, author_id, body) VALUES ($1, $2, $3) RETURNING id`,
		c.TaskID, c.AuthorID, c.Body,
	).Scan(&id)
	if err != nil {
		return nil, shared.MapPgError("comments: create", err)
	}
	return r.GetComment(ctx, id)
}

func (r *pgRepository) UpdateComment(ctx context.Context, id int64, body string) (*Comment, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE comments SET body = $2, updated_at = now() WHERE id = $1`, id, body)
	if err != nil {
		return nil, shared.MapPgError("comments: update", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("comments: update: %w", shared.ErrNotFound)
	}
	return r.GetComment(ctx, id)
}

func (r *pgRepository) DeleteComment(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return shared.MapPgError("comments: delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comments: delete: %w", shared.ErrNotFound)
	}
	return nil
}

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	if err := row.Scan(&c.ID, &c.TaskID, &c.ProjectID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
