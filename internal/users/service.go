package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/roles"
	"github.com/taskhub/taskhub/internal/shared"
)

// Service handles user business logic.
type Service struct {
	repo   RepositoryPort
	table  *rbac.Table
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, table *rbac.Table, logger *slog.Logger) *Service {
	return &Service{repo: repo, table: table, logger: logger}
}

// ListUsers returns one page of users.
func (s *Service) ListUsers(ctx context.Context, page shared.PageRequest) (shared.Page[User], error) {
	users, total, err := s.repo.ListUsers(ctx, page)
	if err != nil {
		return shared.Page[User]{}, err
	}
	return shared.NewPage(users, page, total), nil
}

// UpdateUser patches name and active flag. Admins cannot deactivate themselves.
func (s *Service) UpdateUser(ctx context.Context, actorID, userID int64, req UpdateUserRequest) (*User, error) {
	if req.IsActive != nil && !*req.IsActive && actorID == userID {
		return nil, fmt.Errorf("%w: cannot deactivate your own account", shared.ErrValidation)
	}
	if req.Name == nil && req.IsActive == nil {
		return s.repo.GetUser(ctx, userID)
	}
	if err := s.repo.UpdateUser(ctx, userID, req); err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, userID)
}

// SetRoles replaces the user's role set. Every reference must name a role known to the
// permission table and present in storage. The read of role IDs and the replacement run
// in one transaction.
func (s *Service) SetRoles(ctx context.Context, actorID, userID int64, refs []roles.Ref) (*User, error) {
	names := roles.Names(refs)
	for _, name := range names {
		if !s.table.Known(name) {
			return nil, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, name)
		}
	}
	if actorID == userID && !roles.HasAnyRole(roles.Refs(names...), rbac.RoleAdmin) {
		return nil, fmt.Errorf("%w: cannot remove your own admin role", shared.ErrValidation)
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo RepositoryPort) error {
		if err := repo.LockUser(ctx, userID); err != nil {
			return err
		}
		ids, err := repo.RoleIDs(ctx, names)
		if err != nil {
			return err
		}
		roleIDs := make([]int64, 0, len(names))
		for _, name := range names {
			id, ok := ids[name]
			if !ok {
				return fmt.Errorf("%w: role %q is not provisioned", shared.ErrValidation, name)
			}
			roleIDs = append(roleIDs, id)
		}
		return repo.ReplaceRoles(ctx, userID, roleIDs)
	})
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("user roles replaced",
			slog.Int64("actor_id", actorID),
			slog.Int64("user_id", userID),
			slog.Any("roles", names),
		)
	}
	return s.repo.GetUser(ctx, userID)
}
