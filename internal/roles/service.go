package roles

import (
	"context"

	"github.com/taskhub/taskhub/internal/rbac"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
}

// Service handles role business logic.
type Service struct {
	repo  RepositoryPort
	table *rbac.Table
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, table *rbac.Table) *Service {
	return &Service{repo: repo, table: table}
}

// ListRoles returns stored roles with the permissions granted by the table. Stored roles
// without a table entry are reported with no permissions.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		roles[i].Name = rbac.CanonicalRole(roles[i].Name)
		roles[i].Permissions = s.table.Permissions(roles[i].Name)
		if roles[i].Permissions == nil {
			roles[i].Permissions = []string{}
		}
	}
	return roles, nil
}
