package projects

import "time"

// Project groups tasks and the people working on them.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Member is a user attached to a project.
type Member struct {
	ProjectID int64     `json:"projectId"`
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AddedAt   time.Time `json:"addedAt"`
}

// CreateProjectRequest is the payload for POST /api/projects.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// UpdateProjectRequest patches a project. Nil fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

// AddMemberRequest attaches a user to a project.
type AddMemberRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}
