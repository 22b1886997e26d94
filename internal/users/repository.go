package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhub/taskhub/internal/platform/db"
	"github.com/taskhub/taskhub/internal/roles"
	"github.com/taskhub/taskhub/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, RepositoryPort) error) error
	ListUsers(ctx context.Context, page shared.PageRequest) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	LockUser(ctx context.Context, id int64) error
	UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) error
	RoleIDs(ctx context.Context, names []string) (map[string]int64, error)
	ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// WithTx runs fn against a transaction scoped repository.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, RepositoryPort) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Repository{db: tx, pool: r.pool})
	})
}

const selectUsers = `
SELECT u.id, u.email, u.name, u.is_active, u.created_at, u.updated_at,
       COALESCE(array_agg(r.id ORDER BY r.id) FILTER (WHERE r.id IS NOT NULL), '{}'),
       COALESCE(array_agg(r.name ORDER BY r.id) FILTER (WHERE r.id IS NOT NULL), '{}')
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN roles r ON r.id = ur.role_id
`

// ListUsers returns one page of users with their roles.
func (r *Repository) ListUsers(ctx context.Context, page shared.PageRequest) ([]User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, shared.MapPgError("users: count", err)
	}
	rows, err := r.db.Query(ctx, selectUsers+`GROUP BY u.id ORDER BY u.id LIMIT $1 OFFSET $2`, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, shared.MapPgError("users: list", err)
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, shared.MapPgError("users: list", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// GetUser loads one user with roles.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, selectUsers+`WHERE u.id = $1 GROUP BY u.id`, id))
	if err != nil {
		return nil, shared.MapPgError("users: get", err)
	}
	return u, nil
}

// LockUser takes a row lock for the remainder of the transaction.
func (r *Repository) LockUser(ctx context.Context, id int64) error {
	var locked int64
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	return shared.MapPgError("users: lock", err)
}

// UpdateUser applies the non-nil fields of req.
func (r *Repository) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) error {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	if req.Name != nil {
		args = append(args, strings.TrimSpace(*req.Name))
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if req.IsActive != nil {
		args = append(args, *req.IsActive)
		sets = append(sets, fmt.Sprintf("is_active = $%d", len(args)))
	}
	tag, err := r.db.Exec(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return shared.MapPgError("users: update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("users: update: %w", shared.ErrNotFound)
	}
	return nil
}

// RoleIDs resolves stored role IDs by canonical name. Missing names are absent from the map.
func (r *Repository) RoleIDs(ctx context.Context, names []string) (map[string]int64, error) {
	out := make(map[string]int64, len(names))
	if len(names) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, lower(name) FROM roles WHERE lower(name) = ANY($1)`, names)
	if err != nil {
		return nil, shared.MapPgError("users: role ids", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

// ReplaceRoles sets the user's roles to exactly roleIDs.
func (r *Repository) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return shared.MapPgError("users: clear roles", err)
	}
	if len(roleIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) SELECT $1, unnest($2::bigint[])`,
		userID, roleIDs,
	)
	return shared.MapPgError("users: assign roles", err)
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u     User
		ids   []int64
		names []string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &ids, &names); err != nil {
		return nil, err
	}
	u.Roles = make([]roles.Ref, 0, len(names))
	for i, name := range names {
		u.Roles = append(u.Roles, roles.Ref{ID: ids[i], Name: name})
	}
	return &u, nil
}

var _ RepositoryPort = (*Repository)(nil)
