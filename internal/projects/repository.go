package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhub/taskhub/internal/shared"
)

// Repository defines project data access.
type Repository interface {
	ListProjects(ctx context.Context, page shared.PageRequest) ([]Project, int, error)
	GetProject(ctx context.Context, id int64) (*Project, error)
	// CreateProject stores p and enrols its owner as the first member.
	CreateProject(ctx context.Context, p Project) (*Project, error)
	UpdateProject(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error)
	DeleteProject(ctx context.Context, id int64) error
	ListMembers(ctx context.Context, projectID int64) ([]Member, error)
	AddMember(ctx context.Context, projectID, userID int64) error
	RemoveMember(ctx context.Context, projectID, userID int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const projectColumns = `id, name, description, owner_id, created_at, updated_at`

func (r *pgRepository) ListProjects(ctx context.Context, page shared.PageRequest) ([]Project, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, shared.MapPgError("projects: count", err)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY id LIMIT $1 OFFSET $2`,
		page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, shared.MapPgError("projects: list", err)
	}
	defer rows.Close()
	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, shared.MapPgError("projects: list", err)
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) GetProject(ctx context.Context, id int64) (*Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return nil, shared.MapPgError("projects: get", err)
	}
	return p, nil
}

func (r *pgRepository) CreateProject(ctx context.Context, p Project) (*Project, error) {
	created, err := scanProject(r.pool.QueryRow(ctx, `
		WITH p AS (
			INSERT INTO projects (name, description, owner_id) VALUES ($1, $2, $3)
			RETURNING `+projectColumns+`
		), m AS (
			INSERT INTO project_members (project_id, user_id) SELECT id, owner_id FROM p
		)
		SELECT `+projectColumns+` FROM p`,
		p.Name, p.Description, p.OwnerID,
	))
	if err != nil {
		return nil, shared.MapPgError("projects: create", err)
	}
	return created, nil
}

func (r *pgRepository) UpdateProject(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	if req.Name != nil {
		args = append(args, strings.TrimSpace(*req.Name))
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if req.Description != nil {
		args = append(args, *req.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	p, err := scanProject(r.pool.QueryRow(ctx,
		`UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+projectColumns,
		args...,
	))
	if err != nil {
		return nil, shared.MapPgError("projects: update", err)
	}
	return p, nil
}

func (r *pgRepository) DeleteProject(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return shared.MapPgError("projects: delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("projects: delete: %w", shared.ErrNotFound)
	}
	return nil
}

func (r *pgRepository) ListMembers(ctx context.Context, projectID int64) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pm.project_id, u.id, u.email, u.name, pm.added_at
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = $1
		ORDER BY u.name`, projectID)
	if err != nil {
		return nil, shared.MapPgError("projects: list members", err)
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Email, &m.Name, &m.AddedAt); err != nil {
			return nil, shared.MapPgError("projects: list members", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *pgRepository) AddMember(ctx context.Context, projectID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)`,
		projectID, userID,
	)
	return shared.MapPgError("projects: add member", err)
}

func (r *pgRepository) RemoveMember(ctx context.Context, projectID, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID,
	)
	if err != nil {
		return shared.MapPgError("projects: remove member", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("projects: remove member: %w", shared.ErrNotFound)
	}
	return nil
}

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
