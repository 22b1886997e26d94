package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/shared"
)

// Service handles project business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of projects.
func (s *Service) List(ctx context.Context, page shared.PageRequest) (shared.Page[Project], error) {
	items, total, err := s.repo.ListProjects(ctx, page)
	if err != nil {
		return shared.Page[Project]{}, err
	}
	return shared.NewPage(items, page, total), nil
}

// Get loads one project.
func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

// Create stores a project owned by actor. The owner becomes its first member.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, req CreateProjectRequest) (*Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	return s.repo.CreateProject(ctx, Project{Name: name, Description: req.Description, OwnerID: actor.UserID})
}

// Update patches a project.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error) {
	if req.Name == nil && req.Description == nil {
		return s.repo.GetProject(ctx, id)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be blank", shared.ErrValidation)
	}
	return s.repo.UpdateProject(ctx, id, req)
}

// Delete removes a project and, through foreign keys, its tasks and comments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteProject(ctx, id)
}

// Members lists the members of a project.
func (s *Service) Members(ctx context.Context, projectID int64) ([]Member, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []Member{}
	}
	return members, nil
}

// AddMember attaches a user to a project.
func (s *Service) AddMember(ctx context.Context, projectID int64, req AddMemberRequest) error {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return err
	}
	return s.repo.AddMember(ctx, projectID, req.UserID)
}

// RemoveMember detaches a user. The owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, projectID, userID int64) error {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID == userID {
		return fmt.Errorf("%w: the project owner cannot be removed", shared.ErrValidation)
	}
	return s.repo.RemoveMember(ctx, projectID, userID)
}
